// Package openai asks a chat completion model to pick the cheapest
// concrete offer out of raw search results.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mesterwork/mesterwork/internal/config"
	"github.com/mesterwork/mesterwork/internal/marketprice/domain"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

const systemPrompt = "You extract the single cheapest concrete product offer " +
	"from web search results about Hungarian building materials. Respond with " +
	"JSON only, no prose, using the shape " +
	`{"supplier":"","productName":"","price":0,"url":""}. ` +
	"Prices are in HUF. If no search result contains a concrete priced " +
	"offer for the requested product, respond with the JSON value null."

type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func New(cfg config.Config) domain.Selector {
	return &Client{
		apiKey: cfg.OpenAIAPIKey,
		model:  cfg.OpenAIModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) SelectBestOffer(ctx context.Context, productName string, results []domain.SearchResult) (*domain.Offer, error) {
	if len(results) == 0 {
		return nil, nil
	}

	resultsBlob, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Product: %s\nSearch results:\n%s", productName, resultsBlob)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionsURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, payload)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", domain.ErrBadSelectorResponse)
	}

	content := stripCodeFences(parsed.Choices[0].Message.Content)
	if content == "" || content == "null" {
		return nil, nil
	}

	var offer domain.Offer
	if err := json.Unmarshal([]byte(content), &offer); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBadSelectorResponse, content)
	}
	if offer.Price <= 0 {
		return nil, nil
	}
	return &offer, nil
}

// stripCodeFences unwraps ```json ... ``` blocks models like to emit even
// when told not to.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
