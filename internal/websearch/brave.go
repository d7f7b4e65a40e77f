package websearch

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultBraveURL        = "https://api.search.brave.com/res/v1/web/search"
	defaultBraveCredential = "BRAVE_API_KEY"
)

// BraveAdapter queries the Brave Search API. Brave has no synthesized
// answer, so results always carry FallbackAnswer.
type BraveAdapter struct {
	opts   Options
	creds  Credentials
	client *http.Client
}

// NewBraveAdapter creates a Brave adapter.
func NewBraveAdapter(opts Options, creds Credentials) *BraveAdapter {
	opts = opts.withDefaults(defaultBraveURL, defaultBraveCredential)
	return &BraveAdapter{
		opts:   opts,
		creds:  creds,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (a *BraveAdapter) Name() string {
	return "brave"
}

type braveResponse struct {
	Web *struct {
		Results []struct {
			Title *string `json:"title"`
			URL   *string `json:"url"`
		} `json:"results"`
	} `json:"web"`
}

func (a *BraveAdapter) Query(ctx context.Context, text string) (Result, error) {
	apiKey, err := requireCredential(a.creds, a.Name(), a.opts.Credential)
	if err != nil {
		return Result{}, err
	}

	endpoint, err := url.Parse(a.opts.BaseURL)
	if err != nil {
		return Result{}, providerErr(a.Name(), "parse url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", text)
	q.Set("count", strconv.Itoa(a.opts.MaxResults))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, providerErr(a.Name(), "create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", apiKey)

	var decoded braveResponse
	if err := doJSON(a.client, a.Name(), req, &decoded); err != nil {
		return Result{}, err
	}

	sources := []SourceRef{}
	if decoded.Web != nil {
		for _, item := range decoded.Web.Results {
			sources = append(sources, newSource(deref(item.Title), deref(item.URL)))
		}
	}

	return newResult(a.Name(), FallbackAnswer, sources), nil
}
