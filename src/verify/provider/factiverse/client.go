package factiverse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/truthlens/factwave/src/verify/provider"
	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"
)

const defaultBaseURL = "https://api.factiverse.ai/v1"

func init() {
	provider.Register(types.SourceFactiverse, New)
}

type client struct {
	apiKey  string
	baseURL string
	web     *webclient.Client
	session provider.AuthSession
}

// New constructs the Factiverse adapter. Token-based auth: the API key is
// exchanged for a bearer token on first use.
func New(cfg provider.FactoryConfig) (provider.Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("factiverse: API key not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		web:     cfg.Web,
	}, nil
}

func (c *client) ID() string { return types.SourceFactiverse }

func (c *client) Authenticate(ctx context.Context) error {
	_, err := c.session.Token(ctx, c.exchangeToken)
	return err
}

func (c *client) exchangeToken(ctx context.Context) (string, time.Time, error) {
	body, _ := json.Marshal(map[string]string{"apiKey": c.apiKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("factiverse: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.web.Do(req)
	if err != nil {
		return "", time.Time{}, webclient.WrapTransport(types.SourceFactiverse, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, webclient.WrapTransport(types.SourceFactiverse, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &webclient.AuthError{
			Provider: types.SourceFactiverse,
			Err:      fmt.Errorf("auth status %d", resp.StatusCode),
		}
	}

	var payload struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil || payload.Token == "" {
		return "", time.Time{}, &webclient.AuthError{
			Provider: types.SourceFactiverse,
			Err:      errors.New("malformed auth response"),
		}
	}
	return payload.Token, time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second), nil
}

func (c *client) Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error) {
	return c.query(ctx, claim, opts, 0)
}

// query carries an explicit reauth counter: a 401 invalidates the session and
// retries exactly once, never recursing further.
func (c *client) query(ctx context.Context, claim types.Claim, opts types.VerificationOptions, reauths int) ([]types.RawResult, error) {
	token, err := c.session.Token(ctx, c.exchangeToken)
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]string{
		"claim":    claim.Text,
		"language": opts.LanguageCode,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("factiverse: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.web.Do(req)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceFactiverse, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceFactiverse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && reauths == 0 {
		c.session.Invalidate()
		return c.query(ctx, claim, opts, reauths+1)
	}
	if err := webclient.ClassifyStatus(types.SourceFactiverse, resp.StatusCode, resp.Header); err != nil {
		return nil, err
	}

	var payload checkResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		log.Printf("factiverse: malformed response: %v", err)
		return nil, nil
	}

	return mapResults(claim, opts, payload), nil
}

func mapResults(claim types.Claim, opts types.VerificationOptions, payload checkResponse) []types.RawResult {
	var results []types.RawResult
	for _, item := range payload.Results {
		similarity := provider.Similarity(claim.Text, item.ClaimText)
		if similarity < provider.MinSimilarity {
			continue
		}
		score, status := provider.MapNumericScore(item.TruthScore)
		results = append(results, types.RawResult{
			Source:      types.SourceFactiverse,
			ClaimText:   item.ClaimText,
			Similarity:  similarity,
			TrustScore:  score,
			Status:      status,
			Explanation: item.Explanation,
			Publisher:   item.FactChecker,
			PublishDate: parseDate(item.PublishDate),
			URL:         item.SourceURL,
		})
		if len(results) >= opts.MaxResults {
			break
		}
	}
	return results
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

type checkResponse struct {
	Results []struct {
		ClaimText   string  `json:"claimText"`
		TruthScore  float64 `json:"truthScore"`
		Explanation string  `json:"explanation"`
		FactChecker string  `json:"factChecker"`
		PublishDate string  `json:"publishDate"`
		SourceURL   string  `json:"sourceUrl"`
	} `json:"results"`
}
