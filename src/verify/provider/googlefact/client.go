package googlefact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/truthlens/factwave/src/verify/provider"
	"github.com/truthlens/factwave/src/verify/types"
	"github.com/truthlens/factwave/src/webclient"
)

const defaultBaseURL = "https://factchecktools.googleapis.com/v1alpha1"

func init() {
	provider.Register(types.SourceGoogle, New, "googlefact")
}

type client struct {
	apiKey  string
	baseURL string
	web     *webclient.Client
}

// New constructs the Google Fact Check Tools adapter. Key-based auth: the
// key rides on every request, so Authenticate is a no-op.
func New(cfg provider.FactoryConfig) (provider.Adapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("googlefact: API key not configured")
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

func (c *client) ID() string { return types.SourceGoogle }

func (c *client) Authenticate(ctx context.Context) error { return nil }

func (c *client) Query(ctx context.Context, claim types.Claim, opts types.VerificationOptions) ([]types.RawResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", claim.Text)
	params.Set("languageCode", opts.LanguageCode)
	params.Set("maxAgeDays", strconv.Itoa(opts.MaxAgeDays))
	params.Set("pageSize", strconv.Itoa(opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/claims:search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("googlefact: %w", err)
	}

	resp, err := c.web.Do(req)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceGoogle, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, webclient.WrapTransport(types.SourceGoogle, err)
	}
	if err := webclient.ClassifyStatus(types.SourceGoogle, resp.StatusCode, resp.Header); err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("googlefact: malformed response: %v", err)
		return nil, nil
	}

	return c.mapResults(claim, opts, payload), nil
}

func (c *client) mapResults(claim types.Claim, opts types.VerificationOptions, payload searchResponse) []types.RawResult {
	var results []types.RawResult
	for _, item := range payload.Claims {
		similarity := provider.Similarity(claim.Text, item.Text)
		if similarity < provider.MinSimilarity {
			continue
		}
		for _, review := range item.ClaimReview {
			score, status := provider.MapRating(review.TextualRating)
			results = append(results, types.RawResult{
				Source:      types.SourceGoogle,
				ClaimText:   item.Text,
				Similarity:  similarity,
				TrustScore:  score,
				Status:      status,
				Explanation: review.TextualRating,
				Publisher:   review.Publisher.Name,
				PublishDate: parseReviewDate(review.ReviewDate),
				URL:         review.URL,
			})
			if len(results) >= opts.MaxResults {
				return results
			}
		}
	}
	return results
}

func parseReviewDate(s string) *time.Time {
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

type searchResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		ClaimReview []struct {
			TextualRating string `json:"textualRating"`
			URL           string `json:"url"`
			Publisher     struct {
				Name string `json:"name"`
			} `json:"publisher"`
			ReviewDate string `json:"reviewDate"`
		} `json:"claimReview"`
	} `json:"claims"`
}
