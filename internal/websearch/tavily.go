package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

const (
	defaultTavilyURL        = "https://api.tavily.com/search"
	defaultTavilyCredential = "TAVILY_API_KEY"
)

// TavilyAdapter queries the Tavily Search API, which can return a
// synthesized answer alongside its results.
type TavilyAdapter struct {
	opts   Options
	creds  Credentials
	client *http.Client
}

// NewTavilyAdapter creates a Tavily adapter. The credential is looked up on
// every Query call.
func NewTavilyAdapter(opts Options, creds Credentials) *TavilyAdapter {
	opts = opts.withDefaults(defaultTavilyURL, defaultTavilyCredential)
	if opts.SearchDepth == "" {
		opts.SearchDepth = "advanced"
	}
	return &TavilyAdapter{
		opts:   opts,
		creds:  creds,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (a *TavilyAdapter) Name() string {
	return "tavily"
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  *string `json:"answer"`
	Results []struct {
		Title *string `json:"title"`
		URL   *string `json:"url"`
	} `json:"results"`
}

func (a *TavilyAdapter) Query(ctx context.Context, text string) (Result, error) {
	apiKey, err := requireCredential(a.creds, a.Name(), a.opts.Credential)
	if err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:            apiKey,
		Query:             text,
		SearchDepth:       a.opts.SearchDepth,
		MaxResults:        a.opts.MaxResults,
		IncludeAnswer:     a.opts.IncludeAnswer,
		IncludeRawContent: false,
	})
	if err != nil {
		return Result{}, providerErr(a.Name(), "marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, providerErr(a.Name(), "create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var decoded tavilyResponse
	if err := doJSON(a.client, a.Name(), req, &decoded); err != nil {
		return Result{}, err
	}

	sources := make([]SourceRef, 0, len(decoded.Results))
	for _, item := range decoded.Results {
		sources = append(sources, newSource(deref(item.Title), deref(item.URL)))
	}

	return newResult(a.Name(), deref(decoded.Answer), sources), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
