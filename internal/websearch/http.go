package websearch

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Options configures a single adapter.
type Options struct {
	BaseURL    string
	Credential string
	MaxResults int
	Timeout    time.Duration
	UserAgent  string

	// Tavily only.
	SearchDepth   string
	IncludeAnswer bool
}

func (o Options) withDefaults(baseURL, credential string) Options {
	if strings.TrimSpace(o.BaseURL) == "" {
		o.BaseURL = baseURL
	}
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if strings.TrimSpace(o.Credential) == "" {
		o.Credential = credential
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if strings.TrimSpace(o.UserAgent) == "" {
		o.UserAgent = "steve/0.1"
	}
	return o
}

// doJSON sends req and decodes a 2xx JSON body into out.
func doJSON(client *http.Client, provider string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &ProviderError{Provider: provider, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return providerErr(provider, "decode response: %w", err)
	}
	return nil
}
