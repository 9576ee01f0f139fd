package bot

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"giveaway-bot/internal/platform/telegram"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// RequestID tags every request with a correlation id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Logger writes one structured access log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Msg("Request processed")
	}
}

// NewRouter wires the webhook endpoint and the health probe. When a
// secret token is configured, deliveries missing the matching header
// are rejected; Telegram echoes the token on every webhook call.
func NewRouter(b *Bot, secretToken string, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/webhook", func(c *gin.Context) {
		if secretToken != "" && c.GetHeader(secretTokenHeader) != secretToken {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		var update telegram.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			// malformed payloads are acknowledged, not retried
			c.Status(http.StatusOK)
			return
		}

		b.HandleUpdate(c.Request.Context(), &update)
		c.Status(http.StatusOK)
	})

	return router
}
