package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/careloop/healthbuddy/config"
	"github.com/careloop/healthbuddy/tools/web_search/models"
)

// Search calls the Tavily search API.
// https://docs.tavily.com/docs/rest-api/api-reference
type Search struct {
	apiKey     string
	baseURL    string
	depth      string
	httpClient *http.Client
}

func New(cfg config.SearchConfig) Search {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Search{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		depth:      cfg.SearchDepth,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s Search) RawSearch(ctx context.Context, q string, k int) ([]models.Result, error) {
	body := map[string]interface{}{
		"api_key":             s.apiKey,
		"query":               q,
		"max_results":         k,
		"search_depth":        s.depth,
		"include_answer":      false,
		"include_raw_content": true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/search", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status: %d", resp.StatusCode)
	}

	var raw struct {
		Results []struct {
			Title      string `json:"title"`
			URL        string `json:"url"`
			Content    string `json:"content"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, r := range raw.Results {
		if i >= k {
			break
		}
		out = append(out, models.Result{Title: r.Title, URL: r.URL, Content: r.Content, RawContent: r.RawContent})
	}
	return out, nil
}
