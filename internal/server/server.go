// Package server is the HTTP glue over the analysis pipeline. It carries no
// domain logic: it binds requests, attaches posted lines from the odds
// provider, runs the pipeline, and maps error classes to status codes.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"playcall/internal/annotate"
	"playcall/internal/odds"
	"playcall/internal/pipeline"
	"playcall/internal/types"
)

// New builds the gin engine with all routes attached.
func New(pl *pipeline.Pipeline, provider odds.Provider, logger *zap.Logger) *gin.Engine {
	g := gin.New()
	g.Use(requestLogger(logger), gin.Recovery())
	attachRoutes(g, pl, provider, logger)
	return g
}

func attachRoutes(g *gin.Engine, pl *pipeline.Pipeline, provider odds.Provider, logger *zap.Logger) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g.POST("/analyze", func(c *gin.Context) {
		var mc types.MatchupContext
		if err := c.ShouldBindJSON(&mc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid matchup context: " + err.Error()})
			return
		}

		if len(mc.Lines) == 0 && provider != nil {
			lines, err := provider.Lines(c.Request.Context(), mc.HomeTeam, mc.AwayTeam)
			if err != nil {
				// Lines are an enrichment; the pipeline runs without them.
				logger.Warn("odds provider unavailable", zap.Error(err))
			} else {
				mc.Lines = lines
			}
		}

		resp, err := pl.Analyze(c.Request.Context(), &mc)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// statusFor maps pipeline error classes onto HTTP statuses: guardrail aborts
// are the client's request being too large, parse failures are the upstream
// collaborator misbehaving, everything else is internal.
func statusFor(err error) int {
	var gerr *annotate.GuardrailError
	if errors.As(err, &gerr) {
		return http.StatusUnprocessableEntity
	}
	var perr *annotate.ParseError
	if errors.As(err, &perr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// requestLogger logs each request with latency through zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
