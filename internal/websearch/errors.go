package websearch

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when selection is asked to choose from nothing.
var ErrEmptyInput = errors.New("no results to select from")

// ConfigurationError reports a missing provider credential.
type ConfigurationError struct {
	Provider   string
	Credential string
}

func (e *ConfigurationError) Error() string {
	if e.Credential == "" {
		return fmt.Sprintf("%s: no credential configured", e.Provider)
	}
	return fmt.Sprintf("Missing %s", e.Credential)
}

// ProviderError reports a failed provider request: transport failure,
// non-success status or an unparseable body.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerErr(provider string, format string, args ...any) error {
	return &ProviderError{Provider: provider, Err: fmt.Errorf(format, args...)}
}
