package webserver

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/truthlens/factwave/src/config"
	"github.com/truthlens/factwave/src/verify/types"
)

// Verifier is the orchestration surface the API depends on. Exactly one
// orchestrator instance backs both methods.
type Verifier interface {
	VerifyClaim(ctx context.Context, claim types.Claim, opts types.VerificationOptions) types.VerificationRecord
	VerifyClaimBatch(ctx context.Context, claims []types.Claim, opts types.VerificationOptions) []types.VerificationRecord
}

func New(cfg config.Config, verifier Verifier) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), requestID())
	g.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))
	attachRoutes(g, cfg, verifier)
	return g
}

func attachRoutes(g *gin.Engine, cfg config.Config, verifier Verifier) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := NewAuth([]byte(cfg.JWTSecret))
	g.POST("/v1/auth", auth.Token)

	h := newVerifyHandler(verifier, cfg.DefaultLanguage)
	v1 := g.Group("/v1", auth.Middleware())
	v1.POST("/verify", h.verify)
	v1.POST("/verify/batch", h.verifyBatch)
}

// requestID tags every request so provider logs can be correlated.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("requestID", id)
		c.Next()
	}
}
