// Package tavily is a thin client for the Tavily web search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mesterwork/mesterwork/internal/config"
	"github.com/mesterwork/mesterwork/internal/marketprice/domain"
)

const searchURL = "https://api.tavily.com/search"

// searchDomains limits results to Hungarian building material retailers.
var searchDomains = []string{
	"obi.hu",
	"praktiker.hu",
	"bauhaus.hu",
	"leroymerlin.hu",
	"epitkereso.hu",
	"baumax.hu",
}

const maxResults = 10

type Client struct {
	apiKey     string
	httpClient *http.Client
}

func New(cfg config.Config) domain.Searcher {
	return &Client{
		apiKey: cfg.TavilyAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeDomains []string `json:"include_domains"`
	MaxResults     int      `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    "basic",
		IncludeDomains: searchDomains,
		MaxResults:     maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: tavily status %d: %s", domain.ErrSearchFailed, resp.StatusCode, payload)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}
