package webserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/truthlens/factwave/src/data"
)

const tokenTTL = time.Hour

// Auth issues and validates API bearer tokens. Client API keys live in the
// settings table under api_client_keys (comma-separated). An empty JWT
// secret disables auth entirely, for local development.
type Auth struct {
	jwtSecret []byte
}

func NewAuth(secret []byte) Auth {
	return Auth{jwtSecret: secret}
}

// Token exchanges a client API key for a bearer token, the same shape the
// token-based verification providers use.
func (a Auth) Token(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if len(a.jwtSecret) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "auth not configured"})
		return
	}
	if !validAPIKey(req.APIKey) {
		log.Printf("auth: rejected API key from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid API key"})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(a.jwtSecret)
	if err != nil {
		log.Printf("auth: sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed, "expiresIn": int(tokenTTL.Seconds())})
}

// Middleware validates the bearer token on protected routes.
func (a Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(a.jwtSecret) == 0 {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "missing bearer token"})
			return
		}

		_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.jwtSecret, nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid token"})
			return
		}
		c.Next()
	}
}

func validAPIKey(key string) bool {
	for _, k := range strings.Split(data.GetSetting("api_client_keys"), ",") {
		if k != "" && strings.TrimSpace(k) == key {
			return true
		}
	}
	return false
}
