package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func staticCreds(values map[string]string) Credentials {
	return CredentialsFunc(func(name string) string {
		return values[name]
	})
}

func checkHandler(t *testing.T, errCh chan error) {
	t.Helper()
	select {
	case err := <-errCh:
		t.Fatalf("handler error: %v", err)
	default:
	}
}

func TestTavilyQuery(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			errCh <- fmt.Errorf("expected POST, got %s", r.Method)
			return
		}
		var req tavilyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errCh <- fmt.Errorf("decode request: %w", err)
			return
		}
		if req.APIKey != "tv-key" {
			errCh <- fmt.Errorf("expected api_key tv-key, got %q", req.APIKey)
			return
		}
		if req.Query != "capital of France" {
			errCh <- fmt.Errorf("unexpected query %q", req.Query)
			return
		}
		if req.SearchDepth != "advanced" || req.MaxResults != 5 || !req.IncludeAnswer || req.IncludeRawContent {
			errCh <- fmt.Errorf("unexpected request options %+v", req)
			return
		}
		fmt.Fprint(w, `{
			"answer": "  Paris  ",
			"results": [
				{"title": " Paris - Wikipedia ", "url": "https://en.wikipedia.org/wiki/Paris "},
				{"title": null, "url": "https://example.com"},
				{"url": null}
			]
		}`)
	}))
	defer server.Close()

	adapter := NewTavilyAdapter(Options{BaseURL: server.URL, IncludeAnswer: true}, staticCreds(map[string]string{"TAVILY_API_KEY": "tv-key"}))
	res, err := adapter.Query(context.Background(), "capital of France")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	checkHandler(t, errCh)

	if res.Provider != "tavily" {
		t.Errorf("expected provider tavily, got %q", res.Provider)
	}
	if res.Answer != "Paris" {
		t.Errorf("expected trimmed answer Paris, got %q", res.Answer)
	}
	want := []SourceRef{
		{Title: "Paris - Wikipedia", URL: "https://en.wikipedia.org/wiki/Paris"},
		{Title: "", URL: "https://example.com"},
		{Title: "", URL: ""},
	}
	if len(res.Sources) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(res.Sources))
	}
	for i := range want {
		if res.Sources[i] != want[i] {
			t.Errorf("source %d = %+v, want %+v", i, res.Sources[i], want[i])
		}
	}
}

func TestTavilyQuery_NoAnswer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"answer": "   ", "results": []}`)
	}))
	defer server.Close()

	adapter := NewTavilyAdapter(Options{BaseURL: server.URL}, staticCreds(map[string]string{"TAVILY_API_KEY": "k"}))
	res, err := adapter.Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Answer != FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", res.Answer)
	}
	if res.Sources == nil || len(res.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %#v", res.Sources)
	}
	if res.HasAnswer() {
		t.Error("fallback answer should not count as an answer")
	}
}

func TestTavilyQuery_MissingCredential(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	adapter := NewTavilyAdapter(Options{BaseURL: server.URL}, staticCreds(nil))
	_, err := adapter.Query(context.Background(), "q")

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Credential != "TAVILY_API_KEY" {
		t.Errorf("unexpected credential name %q", cfgErr.Credential)
	}
	if err.Error() != "Missing TAVILY_API_KEY" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("no request should be sent without a credential")
	}
}

func TestBraveQuery(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "brave-key" {
			errCh <- fmt.Errorf("missing brave api key")
			return
		}
		if r.Header.Get("Accept") != "application/json" {
			errCh <- fmt.Errorf("unexpected accept header %q", r.Header.Get("Accept"))
			return
		}
		if got := r.URL.Query().Get("q"); got != "vocal range" {
			errCh <- fmt.Errorf("expected query 'vocal range', got %q", got)
			return
		}
		if got := r.URL.Query().Get("count"); got != "3" {
			errCh <- fmt.Errorf("expected count 3, got %q", got)
			return
		}
		fmt.Fprint(w, `{"web": {"results": [
			{"title": "First ", "url": " https://a.example"},
			{"title": "Second", "url": null}
		]}}`)
	}))
	defer server.Close()

	adapter := NewBraveAdapter(Options{BaseURL: server.URL, MaxResults: 3}, staticCreds(map[string]string{"BRAVE_API_KEY": "brave-key"}))
	res, err := adapter.Query(context.Background(), "vocal range")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	checkHandler(t, errCh)

	if res.Answer != FallbackAnswer {
		t.Errorf("brave should always report the fallback answer, got %q", res.Answer)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(res.Sources))
	}
	if res.Sources[0] != (SourceRef{Title: "First", URL: "https://a.example"}) {
		t.Errorf("unexpected first source %+v", res.Sources[0])
	}
	if res.Sources[1] != (SourceRef{Title: "Second", URL: ""}) {
		t.Errorf("unexpected second source %+v", res.Sources[1])
	}
}

func TestBraveQuery_NoWebSection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"web": null}`)
	}))
	defer server.Close()

	adapter := NewBraveAdapter(Options{BaseURL: server.URL}, staticCreds(map[string]string{"BRAVE_API_KEY": "k"}))
	res, err := adapter.Query(context.Background(), "q")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.Sources == nil || len(res.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %#v", res.Sources)
	}
}

func TestAdapters_ProviderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results": [`)
			},
		},
	}

	creds := staticCreds(map[string]string{"TAVILY_API_KEY": "k", "BRAVE_API_KEY": "k"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			adapters := []Adapter{
				NewTavilyAdapter(Options{BaseURL: server.URL}, creds),
				NewBraveAdapter(Options{BaseURL: server.URL}, creds),
				NewDuckDuckGoAdapter(Options{BaseURL: server.URL}),
				NewSearXNGAdapter(Options{BaseURL: server.URL}, creds),
			}
			for _, adapter := range adapters {
				_, err := adapter.Query(context.Background(), "q")
				var provErr *ProviderError
				if !errors.As(err, &provErr) {
					t.Fatalf("%s: expected ProviderError, got %v", adapter.Name(), err)
				}
				if provErr.Provider != adapter.Name() {
					t.Errorf("%s: error provider %q", adapter.Name(), provErr.Provider)
				}
				if provErr.StatusCode != tt.wantStatus {
					t.Errorf("%s: status %d, want %d", adapter.Name(), provErr.StatusCode, tt.wantStatus)
				}
			}
		})
	}
}

func TestBraveQuery_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	adapter := NewBraveAdapter(Options{BaseURL: url, Timeout: time.Second}, staticCreds(map[string]string{"BRAVE_API_KEY": "k"}))
	_, err := adapter.Query(context.Background(), "q")
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Unwrap() == nil {
		t.Error("transport failure should wrap its cause")
	}
}

func TestDuckDuckGoQuery(t *testing.T) {
	t.Parallel()

	errCh := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			errCh <- fmt.Errorf("expected format json, got %q", got)
			return
		}
		if r.Header.Get("User-Agent") != "steve-test" {
			errCh <- fmt.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
			return
		}
		fmt.Fprint(w, `{
			"Heading": "Phillipa Soo",
			"AbstractText": "Phillipa Soo is an American actress and singer.",
			"AbstractURL": "https://en.wikipedia.org/wiki/Phillipa_Soo",
			"Results": [{"Text": "Official site", "FirstURL": "https://phillipasoo.com"}],
			"RelatedTopics": [
				{"Text": "Hamilton", "FirstURL": "https://en.wikipedia.org/wiki/Phillipa_Soo"},
				{"Topics": [
					{"Text": "Amelie", "FirstURL": "https://example.com/amelie"},
					{"Text": "Camelot", "FirstURL": "https://example.com/camelot"}
				]}
			]
		}`)
	}))
	defer server.Close()

	adapter := NewDuckDuckGoAdapter(Options{BaseURL: server.URL, MaxResults: 3, UserAgent: "steve-test"})
	res, err := adapter.Query(context.Background(), "Phillipa Soo")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	checkHandler(t, errCh)

	if res.Answer != "Phillipa Soo is an American actress and singer." {
		t.Errorf("unexpected answer %q", res.Answer)
	}
	if len(res.Sources) != 3 {
		t.Fatalf("expected 3 sources (deduped, capped), got %d: %+v", len(res.Sources), res.Sources)
	}
	if res.Sources[0].Title != "Phillipa Soo" || res.Sources[2].URL != "https://example.com/amelie" {
		t.Errorf("unexpected sources %+v", res.Sources)
	}
}

func TestSearXNGQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		answers    string
		wantAnswer string
	}{
		{"string answers", `["42"]`, "42"},
		{"object answers", `[{"answer": " forty-two "}]`, "forty-two"},
		{"no answers", `[]`, FallbackAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errCh := make(chan error, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					errCh <- fmt.Errorf("unexpected path %q", r.URL.Path)
					return
				}
				if got := r.URL.Query().Get("apikey"); got != "sx" {
					errCh <- fmt.Errorf("expected apikey sx, got %q", got)
					return
				}
				fmt.Fprintf(w, `{"answers": %s, "results": [
					{"title": "a", "url": "https://a"},
					{"title": "b", "url": "https://b"}
				]}`, tt.answers)
			}))
			defer server.Close()

			adapter := NewSearXNGAdapter(Options{BaseURL: server.URL, MaxResults: 1}, staticCreds(map[string]string{"SEARXNG_API_KEY": "sx"}))
			res, err := adapter.Query(context.Background(), "meaning of life")
			if err != nil {
				t.Fatalf("query: %v", err)
			}
			checkHandler(t, errCh)

			if res.Answer != tt.wantAnswer {
				t.Errorf("answer = %q, want %q", res.Answer, tt.wantAnswer)
			}
			if len(res.Sources) != 1 {
				t.Errorf("expected sources capped at 1, got %d", len(res.Sources))
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"tavily", "brave", "duckduckgo", "ddg", "searxng"} {
		adapter, err := New(name, Options{}, nil)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if adapter == nil {
			t.Fatalf("New(%q) returned nil adapter", name)
		}
	}

	if _, err := New("bing", Options{}, nil); err == nil {
		t.Error("unknown provider should return error")
	}
}

func TestResultHasAnswer(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"real answer", Result{Answer: "Paris"}, true},
		{"fallback", Result{Answer: FallbackAnswer}, false},
		{"fallback embedded", Result{Answer: "note: " + FallbackAnswer}, false},
		{"failed", Result{Answer: "[ERROR from x] boom", Error: "boom"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.HasAnswer(); got != tt.want {
				t.Errorf("HasAnswer() = %v, want %v", got, tt.want)
			}
		})
	}
}
