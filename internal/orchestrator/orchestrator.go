// Package orchestrator fans one query out to every registered search adapter
// and selects the best normalized result.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hession/steve/internal/websearch"
)

// answerWeight makes a real answer outweigh any realistic number of sources.
const answerWeight = 100

// Orchestrator holds a fixed, ordered set of adapters.
type Orchestrator struct {
	adapters   []websearch.Adapter
	concurrent bool
	log        logrus.FieldLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency runs adapters in parallel. Result order is unchanged.
func WithConcurrency(enabled bool) Option {
	return func(o *Orchestrator) {
		o.concurrent = enabled
	}
}

// WithLogger sets the logger for per-adapter diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an Orchestrator. Adapters are run and reported in the order
// given here.
func New(adapters []websearch.Adapter, opts ...Option) *Orchestrator {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	o := &Orchestrator{
		adapters: append([]websearch.Adapter(nil), adapters...),
		log:      quiet,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Adapters returns the registered adapters in registration order.
func (o *Orchestrator) Adapters() []websearch.Adapter {
	return append([]websearch.Adapter(nil), o.adapters...)
}

// RunAll queries every adapter. It never fails: an adapter error becomes a
// result carrying the error text and no sources. The i-th result always
// belongs to the i-th adapter.
func (o *Orchestrator) RunAll(ctx context.Context, query string) []websearch.Result {
	log := o.log.WithField("run_id", uuid.NewString())
	log.WithField("adapters", len(o.adapters)).Infof("running query %q", query)

	results := make([]websearch.Result, len(o.adapters))

	if !o.concurrent {
		for i, adapter := range o.adapters {
			results[i] = o.runOne(ctx, log, adapter, query)
		}
		return results
	}

	// Each goroutine owns one slot and always returns nil, so no adapter
	// can cancel another.
	var g errgroup.Group
	for i, adapter := range o.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			results[i] = o.runOne(ctx, log, adapter, query)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *Orchestrator) runOne(ctx context.Context, log logrus.FieldLogger, adapter websearch.Adapter, query string) websearch.Result {
	name := adapter.Name()
	log = log.WithField("provider", name)
	start := time.Now()

	res, err := adapter.Query(ctx, query)
	log = log.WithField("duration", time.Since(start).Round(time.Millisecond))
	if err != nil {
		logAdapterError(log, err)
		return FailureResult(name, err)
	}

	res.Provider = name
	if res.Sources == nil {
		res.Sources = []websearch.SourceRef{}
	}
	log.WithField("sources", len(res.Sources)).Debug("adapter finished")
	return res
}

func logAdapterError(log logrus.FieldLogger, err error) {
	var cfgErr *websearch.ConfigurationError
	var provErr *websearch.ProviderError
	switch {
	case errors.As(err, &cfgErr):
		log.WithField("credential", cfgErr.Credential).Warn("adapter not configured")
	case errors.As(err, &provErr):
		log.WithError(err).WithField("status", provErr.StatusCode).Warn("provider request failed")
	default:
		log.WithError(err).Error("adapter failed with unclassified error")
	}
}

// FailureResult is the result reported for an adapter that failed.
func FailureResult(provider string, err error) websearch.Result {
	return websearch.Result{
		Provider: provider,
		Answer:   fmt.Sprintf("[ERROR from %s] %v", provider, err),
		Sources:  []websearch.SourceRef{},
		Error:    err.Error(),
	}
}

// Score rates a result: a real answer is worth 100, each source 1. Failed
// results have no sources and no answer, so they score 0.
func Score(r websearch.Result) int {
	score := len(r.Sources)
	if r.HasAnswer() {
		score += answerWeight
	}
	return score
}

// BestIndex returns the index of the first result with the highest Score.
// Ties go to the earlier result.
func BestIndex(results []websearch.Result) (int, error) {
	if len(results) == 0 {
		return -1, websearch.ErrEmptyInput
	}
	best := 0
	bestScore := Score(results[0])
	for i := 1; i < len(results); i++ {
		if s := Score(results[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, nil
}

// PickBest returns the best result, unmodified.
func PickBest(results []websearch.Result) (websearch.Result, error) {
	i, err := BestIndex(results)
	if err != nil {
		return websearch.Result{}, err
	}
	return results[i], nil
}
