package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GIF is one search result from the external GIF provider.
type GIF struct {
	ID         string `json:"id"`
	PreviewRef string `json:"previewRef"`
	FullRef    string `json:"fullRef"`
}

// GIFClient talks to the third-party GIF search API. The provider is
// rate-limited; a 429 comes back as a *RequestError like any other
// non-success status.
type GIFClient struct {
	baseURL string
	key     string
	client  *http.Client
}

func NewGIFClient(baseURL, key string) *GIFClient {
	return &GIFClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Search returns GIFs matching query.
func (g *GIFClient) Search(ctx context.Context, query string) ([]GIF, error) {
	u := fmt.Sprintf("%s/v1/search?q=%s&key=%s",
		g.baseURL, url.QueryEscape(query), url.QueryEscape(g.key))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gif search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out struct {
		Results []GIF `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode gif search response: %w", err)
	}
	return out.Results, nil
}
