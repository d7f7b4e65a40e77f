package websearch

import (
	"fmt"
	"strings"
)

// New creates the adapter for a provider name.
func New(name string, opts Options, creds Credentials) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tavily":
		return NewTavilyAdapter(opts, creds), nil
	case "brave":
		return NewBraveAdapter(opts, creds), nil
	case "duckduckgo", "ddg":
		return NewDuckDuckGoAdapter(opts), nil
	case "searxng":
		return NewSearXNGAdapter(opts, creds), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", name)
	}
}
