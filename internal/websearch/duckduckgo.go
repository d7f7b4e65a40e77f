package websearch

import (
	"context"
	"net/http"
	"net/url"
)

const defaultDuckDuckGoURL = "https://api.duckduckgo.com"

// DuckDuckGoAdapter queries the DuckDuckGo Instant Answer API. It needs no
// credential; Answer or AbstractText become the synthesized answer.
type DuckDuckGoAdapter struct {
	opts   Options
	client *http.Client
}

func NewDuckDuckGoAdapter(opts Options) *DuckDuckGoAdapter {
	opts = opts.withDefaults(defaultDuckDuckGoURL, "")
	return &DuckDuckGoAdapter{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

func (a *DuckDuckGoAdapter) Name() string {
	return "duckduckgo"
}

type ddgResult struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Topics   []ddgTopic `json:"Topics"`
}

type ddgResponse struct {
	Answer        string      `json:"Answer"`
	Heading       string      `json:"Heading"`
	AbstractText  string      `json:"AbstractText"`
	AbstractURL   string      `json:"AbstractURL"`
	Results       []ddgResult `json:"Results"`
	RelatedTopics []ddgTopic  `json:"RelatedTopics"`
}

func (a *DuckDuckGoAdapter) Query(ctx context.Context, text string) (Result, error) {
	endpoint, err := url.Parse(a.opts.BaseURL)
	if err != nil {
		return Result{}, providerErr(a.Name(), "parse url: %w", err)
	}
	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Result{}, providerErr(a.Name(), "create request: %w", err)
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)

	var payload ddgResponse
	if err := doJSON(a.client, a.Name(), req, &payload); err != nil {
		return Result{}, err
	}

	limit := a.opts.MaxResults
	sources := make([]SourceRef, 0, limit)
	seen := make(map[string]bool)
	add := func(title, link string) {
		if len(sources) >= limit {
			return
		}
		src := newSource(title, link)
		if src.URL == "" || seen[src.URL] {
			return
		}
		seen[src.URL] = true
		sources = append(sources, src)
	}

	if payload.AbstractText != "" {
		title := payload.Heading
		if title == "" {
			title = payload.AbstractText
		}
		add(title, payload.AbstractURL)
	}
	for _, res := range payload.Results {
		add(res.Text, res.FirstURL)
	}

	var walk func(topics []ddgTopic)
	walk = func(topics []ddgTopic) {
		for _, topic := range topics {
			if len(sources) >= limit {
				return
			}
			if len(topic.Topics) > 0 {
				walk(topic.Topics)
				continue
			}
			add(topic.Text, topic.FirstURL)
		}
	}
	walk(payload.RelatedTopics)

	answer := payload.Answer
	if answer == "" {
		answer = payload.AbstractText
	}
	return newResult(a.Name(), answer, sources), nil
}
