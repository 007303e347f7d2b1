package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/retailops/smartchain/decision/contract"
)

const maxOrganicResults = 5

// Config configures the Serper search client.
type Config struct {
	URL     string        `split_words:"true" default:"https://google.serper.dev/search"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Client queries the search service for competitor pricing signals.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ contractx.MarketLookup = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("serper url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("serper api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Snippet string `json:"snippet"`
}

// SearchPrices issues one search request and extracts price-like tokens from
// the first organic result snippets. No results or no parseable tokens is an
// empty slice, not an error.
func (c *Client) SearchPrices(ctx context.Context, query string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query: %v", contractx.ErrMarketLookup, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrMarketLookup, err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrMarketLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: search returned status %d", contractx.ErrMarketLookup, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", contractx.ErrMarketLookup, err)
	}

	organic := parsed.Organic
	if len(organic) > maxOrganicResults {
		organic = organic[:maxOrganicResults]
	}

	prices := []float64{}
	for _, result := range organic {
		prices = append(prices, ExtractPrices(result.Snippet)...)
	}
	return prices, nil
}

// ExtractPrices pulls currency amounts out of free text: any whitespace
// delimited token starting with "$" is stripped of the marker and parsed as
// a decimal. Tokens that fail to parse are discarded; free-text noise makes
// partial extraction the expected outcome.
func ExtractPrices(text string) []float64 {
	var prices []float64
	for _, token := range strings.Fields(text) {
		if !strings.HasPrefix(token, "$") {
			continue
		}
		amount, err := strconv.ParseFloat(strings.Trim(token, "$"), 64)
		if err != nil {
			continue
		}
		prices = append(prices, amount)
	}
	return prices
}
