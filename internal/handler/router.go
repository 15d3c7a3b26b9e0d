package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"madlib-maker/shared/middleware"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsHeaders = []string{"Content-Type"}
)

// RouterOptions adds middleware supplied by the binary.
type RouterOptions struct {
	// Middleware runs for every route, after logging and recovery.
	Middleware []gin.HandlerFunc
	// ShortenMiddleware runs for POST /shorten only.
	ShortenMiddleware []gin.HandlerFunc
	// AllowOrigins restricts CORS. Empty or "*" allows every origin.
	AllowOrigins []string
}

// NewRouter builds the gin engine serving the short link API.
func NewRouter(h *ShortLinkHandler, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.GinZapLogger(logger))
	router.Use(gin.CustomRecovery(recoverPanic))
	router.Use(opts.Middleware...)
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	router.GET("/health", healthCheck)
	router.HEAD("/health", healthCheck)

	h.RegisterRoutes(router, opts.ShortenMiddleware...)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: corsMethods,
		AllowHeaders: corsHeaders,
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// setCORSHeaders sets the permissive CORS headers on responses the cors
// middleware does not handle (requests without an Origin header).
func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}
