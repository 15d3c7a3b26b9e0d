package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var shortenRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "madlib_shorten_rejected_total",
		Help: "Total number of rejected shorten requests by reason.",
	},
	[]string{"reason"},
)
