package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	shortLinksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madlib_short_links_created_total",
			Help: "Total number of short links created, by mode.",
		},
		[]string{"mode"},
	)

	shortCodeCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "madlib_short_code_collisions_total",
		Help: "Total number of generated short codes that were already taken.",
	})

	shortCodeExhaustionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "madlib_short_code_exhaustions_total",
		Help: "Total number of create requests that ran out of generation attempts.",
	})

	shortLinkExpansionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madlib_short_link_expansions_total",
			Help: "Total number of short link lookups by result.",
		},
		[]string{"result"},
	)
)
