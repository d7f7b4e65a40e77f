package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hession/steve/internal/config"
	"github.com/hession/steve/internal/logger"
	"github.com/hession/steve/internal/orchestrator"
	"github.com/hession/steve/internal/websearch"
)

// BuildAdapters creates adapters for cfg.Search.Providers, in that order.
func BuildAdapters(cfg *config.Config, creds websearch.Credentials) ([]websearch.Adapter, error) {
	adapters := make([]websearch.Adapter, 0, len(cfg.Search.Providers))
	for _, name := range cfg.Search.Providers {
		pc, ok := cfg.Provider(name)
		if !ok {
			return nil, fmt.Errorf("unknown provider %q", name)
		}
		adapter, err := websearch.New(name, websearch.Options{
			BaseURL:       pc.BaseURL,
			Credential:    pc.Credential,
			MaxResults:    pc.MaxResults,
			Timeout:       time.Duration(pc.TimeoutSeconds) * time.Second,
			UserAgent:     pc.UserAgent,
			SearchDepth:   pc.SearchDepth,
			IncludeAnswer: pc.IncludeAnswer,
		}, creds)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// Runner answers queries with a fixed orchestrator.
type Runner struct {
	orch *orchestrator.Orchestrator
}

// NewRunner wires the configured adapters into an orchestrator.
func NewRunner(cfg *config.Config, creds websearch.Credentials) (*Runner, error) {
	adapters, err := BuildAdapters(cfg, creds)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no search providers configured")
	}
	return &Runner{
		orch: orchestrator.New(adapters,
			orchestrator.WithConcurrency(cfg.Search.Concurrent),
			orchestrator.WithLogger(logger.Entry()),
		),
	}, nil
}

// NewRunnerWith wraps an existing orchestrator.
func NewRunnerWith(orch *orchestrator.Orchestrator) *Runner {
	return &Runner{orch: orch}
}

// Adapters returns the runner's adapters in registration order.
func (r *Runner) Adapters() []websearch.Adapter {
	return r.orch.Adapters()
}

// Ask runs one query through every adapter and selects the best result.
func (r *Runner) Ask(ctx context.Context, query string) (Report, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Report{}, fmt.Errorf("query cannot be empty")
	}

	results := r.orch.RunAll(ctx, query)
	best, err := orchestrator.PickBest(results)
	if err != nil {
		return Report{}, fmt.Errorf("failed to select best answer: %w", err)
	}

	logger.WithFields(logger.Fields{
		"provider": best.Provider,
		"score":    orchestrator.Score(best),
	}).Info("selected best answer")

	return Report{
		Query:   query,
		Best:    best,
		Results: results,
	}, nil
}
