package websearch

import (
	"context"
	"strings"
)

// FallbackAnswer is the answer every adapter reports when its provider gives
// no synthesized answer. Scoring recognizes it by substring, so it must stay
// byte-identical across adapters.
const FallbackAnswer = "No direct answer returned. Use the sources below."

// DefaultMaxResults is the per-provider result cap used when none is configured.
const DefaultMaxResults = 5

// SourceRef is a single source backing an answer.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Result is the normalized shape every adapter produces.
type Result struct {
	Provider string      `json:"provider"`
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources"`

	// Error is set when the adapter failed; Answer then describes the failure.
	Error string `json:"error,omitempty"`
}

// HasAnswer reports whether the result carries a real answer: not the
// fallback sentinel and not a failure description.
func (r Result) HasAnswer() bool {
	if r.Error != "" {
		return false
	}
	return !strings.Contains(r.Answer, FallbackAnswer)
}

// Adapter queries one external search provider.
type Adapter interface {
	Name() string
	Query(ctx context.Context, text string) (Result, error)
}

// Credentials supplies provider credentials by name.
type Credentials interface {
	Lookup(name string) string
}

// CredentialsFunc adapts a plain function to Credentials.
type CredentialsFunc func(name string) string

func (f CredentialsFunc) Lookup(name string) string {
	return f(name)
}

func newResult(provider, answer string, sources []SourceRef) Result {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = FallbackAnswer
	}
	if sources == nil {
		sources = []SourceRef{}
	}
	return Result{
		Provider: provider,
		Answer:   answer,
		Sources:  sources,
	}
}

func newSource(title, url string) SourceRef {
	return SourceRef{
		Title: strings.TrimSpace(title),
		URL:   strings.TrimSpace(url),
	}
}

// requireCredential returns the named credential or a ConfigurationError.
func requireCredential(creds Credentials, provider, name string) (string, error) {
	if creds == nil || strings.TrimSpace(name) == "" {
		return "", &ConfigurationError{Provider: provider, Credential: name}
	}
	value := strings.TrimSpace(creds.Lookup(name))
	if value == "" {
		return "", &ConfigurationError{Provider: provider, Credential: name}
	}
	return value, nil
}
