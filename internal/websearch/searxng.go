package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultSearXNGURL        = "http://localhost:8080"
	defaultSearXNGCredential = "SEARXNG_API_KEY"
)

// SearXNGAdapter queries a SearXNG instance. The credential is optional;
// private instances that require one get it as the apikey parameter.
type SearXNGAdapter struct {
	opts   Options
	creds  Credentials
	client *http.Client
}

func NewSearXNGAdapter(opts Options, creds Credentials) *SearXNGAdapter {
	opts = opts.withDefaults(defaultSearXNGURL, defaultSearXNGCredential)
	return &SearXNGAdapter{
		opts:   opts,
		creds:  creds,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (a *SearXNGAdapter) Name() string {
	return "searxng"
}

type searxngResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searxngResponse struct {
	Answers []json.RawMessage `json:"answers"`
	Results []searxngResult   `json:"results"`
}

func (a *SearXNGAdapter) Query(ctx context.Context, text string) (Result, error) {
	endpoint, err := url.Parse(a.opts.BaseURL)
	if err != nil {
		return Result{}, providerErr(a.Name(), "parse url: %w", err)
	}
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/search"

	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "json")
	params.Set("categories", "general")
	params.Set("language", "auto")
	params.Set("safesearch", "1")
	params.Set("count", strconv.Itoa(a.opts.MaxResults))
	if a.creds != nil {
		if key := strings.TrimSpace(a.creds.Lookup(a.opts.Credential)); key != "" {
			params.Set("apikey", key)
		}
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, providerErr(a.Name(), "create request: %w", err)
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)

	var payload searxngResponse
	if err := doJSON(a.client, a.Name(), req, &payload); err != nil {
		return Result{}, err
	}

	sources := make([]SourceRef, 0, a.opts.MaxResults)
	for _, res := range payload.Results {
		if len(sources) >= a.opts.MaxResults {
			break
		}
		sources = append(sources, newSource(res.Title, res.URL))
	}

	return newResult(a.Name(), firstSearXNGAnswer(payload.Answers), sources), nil
}

// firstSearXNGAnswer handles both answer encodings: older instances return
// plain strings, newer ones objects with an "answer" field.
func firstSearXNGAnswer(answers []json.RawMessage) string {
	for _, raw := range answers {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		var obj struct {
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && strings.TrimSpace(obj.Answer) != "" {
			return obj.Answer
		}
	}
	return ""
}
