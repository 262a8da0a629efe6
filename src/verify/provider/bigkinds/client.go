package bigkinds

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

const defaultBaseURL = "https://tools.kinds.or.kr/v1"

func init() {
	provider.Register(types.SourceBigKinds, New)
}

type client struct {
	apiKey  string
	baseURL string
	web     *webclient.Client
	session provider.AuthSession
	now     func() time.Time
}

// New constructs the BigKinds news-search adapter. BigKinds has no rating of
// its own; the verdict is derived from coverage text via the shared keyword
// mapping.
func New(cfg provider.FactoryConfig) (provider.Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("bigkinds: API key not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		web:     cfg.Web,
		now:     time.Now,
	}, nil
}

func (c *client) ID() string { return types.SourceBigKinds }

func (c *client) Authenticate(ctx context.Context) error {
	_, err := c.session.Token(ctx, c.exchangeToken)
	return err
}

func (c *client) exchangeToken(ctx context.Context) (string, time.Time, error) {
	body, _ := json.Marshal(map[string]string{"apiKey": c.apiKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bigkinds: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.web.Do(req)
	if err != nil {
		return "", time.Time{}, webclient.WrapTransport(types.SourceBigKinds, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, webclient.WrapTransport(types.SourceBigKinds, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &webclient.AuthError{
			Provider: types.SourceBigKinds,
			Err:      fmt.Errorf("auth status %d", resp.StatusCode),
		}
	}

	var payload struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil || payload.Token == "" {
		return "", time.Time{}, &webclient.AuthError{
			Provider: types.SourceBigKinds,
			Err:      errors.New("malformed auth response"),
		}
	}
	return payload.Token, time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second), nil
}

func (c *client) Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error) {
	return c.query(ctx, claim, opts, 0)
}

func (c *client) query(ctx context.Context, claim types.Claim, opts types.VerificationOptions, reauths int) ([]types.RawResult, error) {
	token, err := c.session.Token(ctx, c.exchangeToken)
	if err != nil {
		return nil, err
	}

	end := c.now()
	start := end.AddDate(0, 0, -opts.MaxAgeDays)
	body, _ := json.Marshal(map[string]interface{}{
		"query":     claim.Text,
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
		"size":      opts.MaxResults,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bigkinds: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.web.Do(req)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceBigKinds, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceBigKinds, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && reauths == 0 {
		c.session.Invalidate()
		return c.query(ctx, claim, opts, reauths+1)
	}
	if err := webclient.ClassifyStatus(types.SourceBigKinds, resp.StatusCode, resp.Header); err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		log.Printf("bigkinds: malformed response: %v", err)
		return nil, nil
	}

	return mapResults(claim, opts, payload), nil
}

func mapResults(claim types.Claim, opts types.VerificationOptions, payload searchResponse) []types.RawResult {
	var results []types.RawResult
	for _, doc := range payload.Documents {
		similarity := provider.Similarity(claim.Text, doc.Title)
		if similarity < provider.MinSimilarity {
			continue
		}
		score, status := provider.MapRating(doc.Title + " " + doc.Content)
		results = append(results, types.RawResult{
			Source:      types.SourceBigKinds,
			ClaimText:   doc.Title,
			Similarity:  similarity,
			TrustScore:  score,
			Status:      status,
			Explanation: snippet(doc.Content),
			Publisher:   doc.Provider,
			PublishDate: parseDate(doc.Date),
			URL:         doc.URL,
		})
		if len(results) >= opts.MaxResults {
			break
		}
	}
	return results
}

// snippet keeps explanations readable; BigKinds article bodies run long.
func snippet(content string) string {
	const max = 280
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

type searchResponse struct {
	Documents []struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Provider string `json:"provider"`
		Date     string `json:"date"`
		URL      string `json:"url"`
	} `json:"documents"`
}
