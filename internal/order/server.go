package order

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lambriz/catalogbot/internal/config"
	"github.com/lambriz/catalogbot/internal/mail"
)

const (
	serviceName  = "lambriz-order-api"
	maxBodyBytes = 1 << 20
)

// Handler serves the order API.
type Handler struct {
	sender   mail.Sender
	renderer *Renderer
	log      zerolog.Logger
}

func NewHandler(sender mail.Sender, renderer *Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		sender:   sender,
		renderer: renderer,
		log:      log,
	}
}

// Health reports that the service is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": serviceName})
}

// Order renders the posted order or feedback into an email and sends it.
func (h *Handler) Order(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.fail(c, err)
		return
	}

	payload, err := DecodePayload(body)
	if err != nil {
		h.fail(c, err)
		return
	}

	email, err := h.renderer.Render(payload)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.sender.Send(c.Request.Context(), email); err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info().
		Str("subject", email.Subject).
		Bool("feedback", payload.IsFeedback()).
		Msg("order request delivered")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("order api error")
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
}

// RateLimit rejects requests above perMinute with 429. Zero disables it.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many requests"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs every request with its status and latency.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

// CORS allows the Mini App origin to call the API.
func CORS(origin string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodPost, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{"Content-Type"},
	}
	if origin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
	}
	return cors.New(cfg)
}

// NewRouter builds the gin engine with all routes.
func NewRouter(cfg *config.OrderAPI, h *Handler, log zerolog.Logger) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false

	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(log))
	engine.Use(CORS(cfg.AllowedOrigin))

	engine.GET("/health", h.Health)
	engine.GET("/health/", h.Health)

	limit := RateLimit(cfg.RatePerMinute)
	engine.POST("/api/order", limit, h.Order)
	engine.POST("/api/order/", limit, h.Order)

	return engine
}
