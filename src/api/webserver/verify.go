package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/truthlens/factwave/src/verify/types"
)

// maxBatchClaims caps one batch request; larger jobs should be split by the
// caller.
const maxBatchClaims = 20

type verifyHandler struct {
	verifier        Verifier
	defaultLanguage string
	sanitizer       *bluemonday.Policy
}

func newVerifyHandler(verifier Verifier, defaultLanguage string) *verifyHandler {
	return &verifyHandler{
		verifier:        verifier,
		defaultLanguage: defaultLanguage,
		// Claims arrive from page scrapers and may carry markup.
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type verifyRequest struct {
	Claim      string   `json:"claim" binding:"required"`
	Language   string   `json:"language"`
	APIs       []string `json:"apis"`
	MaxAgeDays int      `json:"maxAgeDays"`
	MaxResults int      `json:"maxResults"`
}

type batchRequest struct {
	Claims     []string `json:"claims" binding:"required"`
	Language   string   `json:"language"`
	APIs       []string `json:"apis"`
	MaxAgeDays int      `json:"maxAgeDays"`
	MaxResults int      `json:"maxResults"`
}

func (h *verifyHandler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	text := h.cleanClaim(req.Claim)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "claim text required"})
		return
	}

	record := h.verifier.VerifyClaim(c.Request.Context(), types.Claim{Text: text}, h.options(req.Language, req.APIs, req.MaxAgeDays, req.MaxResults))
	c.JSON(http.StatusOK, record)
}

func (h *verifyHandler) verifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if len(req.Claims) > maxBatchClaims {
		c.JSON(http.StatusBadRequest, gin.H{"err": "too many claims in one batch"})
		return
	}

	claims := make([]types.Claim, 0, len(req.Claims))
	for _, raw := range req.Claims {
		text := h.cleanClaim(raw)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"err": "claim text required"})
			return
		}
		claims = append(claims, types.Claim{Text: text})
	}

	records := h.verifier.VerifyClaimBatch(c.Request.Context(), claims, h.options(req.Language, req.APIs, req.MaxAgeDays, req.MaxResults))
	c.JSON(http.StatusOK, records)
}

func (h *verifyHandler) cleanClaim(raw string) string {
	return strings.TrimSpace(h.sanitizer.Sanitize(raw))
}

func (h *verifyHandler) options(language string, apis []string, maxAgeDays, maxResults int) types.VerificationOptions {
	if language == "" {
		language = h.defaultLanguage
	}
	return types.VerificationOptions{
		LanguageCode: language,
		MaxAgeDays:   maxAgeDays,
		MaxResults:   maxResults,
		APIs:         apis,
	}.Normalize()
}
