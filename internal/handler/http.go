package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"madlib-maker/internal/service"
	"madlib-maker/shared/models"
)

// DefaultMaxBodyBytes limits the size of a shorten request body.
const DefaultMaxBodyBytes int64 = 256 << 10

// ShortLinkHandler serves the short link HTTP API.
type ShortLinkHandler struct {
	service       service.ShortLinkService
	logger        *zap.Logger
	publicBaseURL string
	maxBodyBytes  int64
}

// NewShortLinkHandler creates a ShortLinkHandler. publicBaseURL is used to
// build the url of a created link; when empty the request origin is used.
func NewShortLinkHandler(s service.ShortLinkService, publicBaseURL string, maxBodyBytes int64, logger *zap.Logger) *ShortLinkHandler {
	registerValidators()
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ShortLinkHandler{
		service:       s,
		logger:        logger.Named("ShortLinkHandler"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBodyBytes:  maxBodyBytes,
	}
}

var registerValidatorsOnce sync.Once

// registerValidators adds the placeholderid tag to gin's validator engine.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("placeholderid", func(fl validator.FieldLevel) bool {
			return models.ValidPlaceholderID(fl.Field().String())
		})
	})
}

// RegisterRoutes registers the API routes. shortenMiddleware runs before the
// shorten handler only (rate limiting).
func (h *ShortLinkHandler) RegisterRoutes(router *gin.Engine, shortenMiddleware ...gin.HandlerFunc) {
	router.GET("/", h.apiInfo)
	router.POST("/shorten", append(shortenMiddleware, h.shorten)...)
	router.GET("/:code", h.expand)
	router.OPTIONS("/*path", h.preflight)
}

func (h *ShortLinkHandler) apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Madlib Maker URL Shortener",
		"endpoints": gin.H{
			"POST /shorten":   `Create shortened URL (body: {mode: "play"|"edit"|"story", data: {...}})`,
			"GET /:shortCode": "Expand shortened URL",
		},
	})
}

func (h *ShortLinkHandler) preflight(c *gin.Context) {
	setCORSHeaders(c)
	c.Status(http.StatusNoContent)
}

func (h *ShortLinkHandler) shorten(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req models.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shortenRejectedTotal.WithLabelValues("too_large").Inc()
			h.logger.Warn("Shorten request body too large", zap.Int64("limit", tooLarge.Limit))
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: errRequestTooLarge})
			return
		}
		shortenRejectedTotal.WithLabelValues("invalid").Inc()
		h.logger.Warn("Invalid shorten request", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: errInvalidShortenRequest})
		return
	}

	if err := validateStateRecord(*req.Data); err != nil {
		shortenRejectedTotal.WithLabelValues("invalid_data").Inc()
		h.logger.Warn("Invalid madlib data in shorten request", zap.Error(err))
		handleServiceError(c, err, errProcessRequest)
		return
	}

	code, err := h.service.Create(c.Request.Context(), models.Mode(req.Mode), *req.Data)
	if err != nil {
		handleServiceError(c, err, errProcessRequest)
		return
	}

	c.JSON(http.StatusOK, models.ShortenResponse{
		ShortCode: code,
		URL:       h.shortURL(c, code),
	})
}

func (h *ShortLinkHandler) expand(c *gin.Context) {
	code := c.Param("code")

	rec, err := h.service.Expand(c.Request.Context(), code)
	if err != nil {
		handleServiceError(c, err, errExpandShortCode)
		return
	}

	c.JSON(http.StatusOK, models.ExpandResponse{Mode: rec.Mode, Data: rec.Data})
}

// shortURL builds <origin>/<code>.
func (h *ShortLinkHandler) shortURL(c *gin.Context, code string) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL + "/" + code
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Request.Host, code)
}

// validateStateRecord checks placeholder ids: each must look like wordNN and
// be unique within the record.
func validateStateRecord(rec models.StateRecord) error {
	for i, p := range rec.Placeholders.Value {
		if err := binding.Validator.ValidateStruct(p); err != nil {
			return fmt.Errorf("%w: placeholder %d has invalid id %q", models.ErrInvalidInput, i, p.ID)
		}
	}
	if dups := models.DuplicatePlaceholderIDs(rec.Placeholders.Value); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate placeholder ids %s", models.ErrInvalidInput, strings.Join(dups, ", "))
	}
	return nil
}
