package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultEndpoint = "https://www.googleapis.com/customsearch/v1"

// GoogleProvider queries the Google Custom Search JSON API.
type GoogleProvider struct {
	APIKey   string
	EngineID string
	Endpoint string
	Client   *http.Client
}

var _ Provider = &GoogleProvider{}

func NewGoogleProvider(apiKey, engineID string) *GoogleProvider {
	return &GoogleProvider{
		APIKey:   apiKey,
		EngineID: engineID,
		Endpoint: defaultEndpoint,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 || limit > 10 {
		limit = 3
	}

	params := url.Values{}
	params.Set("key", g.APIKey)
	params.Set("cx", g.EngineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, "GET", g.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var searchResp googleSearchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if searchResp.Error != nil {
		return nil, fmt.Errorf("search error: status %d, %s", searchResp.Error.Code, searchResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	results := make([]Result, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return results, nil
}
