package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hession/steve/internal/config"
	"github.com/hession/steve/internal/websearch"
)

// Report is the outcome of one query: the chosen result plus every
// provider's result for diagnostics.
type Report struct {
	Query   string             `json:"query"`
	Best    websearch.Result   `json:"best"`
	Results []websearch.Result `json:"results"`
}

// WriteText renders a report in the plain-text layout.
func WriteText(w io.Writer, r Report, diagnostics bool) error {
	ew := &errWriter{w: w}

	ew.printf("\n=== BEST ANSWER ===\n")
	ew.printf("%s\n", r.Best.Answer)

	ew.printf("\n=== BEST SOURCES ===\n")
	for i, s := range r.Best.Sources {
		ew.printf("%d. %s - %s\n", i+1, s.Title, s.URL)
	}

	if diagnostics {
		ew.printf("\n=== DEBUG: WHAT EACH API RETURNED ===\n")
		for _, res := range r.Results {
			ew.printf("- %s: %d sources\n", res.Provider, len(res.Sources))
		}
	}
	return ew.err
}

// WriteJSON renders a report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", payload)
	return err
}

// WriteProviders lists adapters in registration order with the status of
// the credential each one reads.
func WriteProviders(w io.Writer, adapters []websearch.Adapter, cfg *config.Config, creds *config.Secrets) {
	for i, adapter := range adapters {
		pc, _ := cfg.Provider(adapter.Name())
		status := "no credential needed"
		if pc.Credential != "" {
			if creds.Has(pc.Credential) {
				status = pc.Credential + " configured"
			} else {
				status = pc.Credential + " missing"
			}
		}
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, adapter.Name(), status)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
