// internal/words/source.go
package words

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownCategory = errors.New("words: no pairs for category")
	ErrEmptyResponse   = errors.New("words: generator returned empty content")
	ErrMalformedPair   = errors.New("words: generator returned a malformed pair")
	ErrRateLimited     = errors.New("words: generator rate limited")
	ErrNoCachedPair    = errors.New("words: no cached pair for category")
)

// Source supplies a word pair for a category. Implementations may fail.
type Source interface {
	Pair(ctx context.Context, category string) (models.WordPair, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, category string) (models.WordPair, error)

func (f SourceFunc) Pair(ctx context.Context, category string) (models.WordPair, error) {
	return f(ctx, category)
}

// Stage is a named step of a fallback chain.
type Stage struct {
	Name   string
	Source Source
}

// Fallback tries each stage in order and returns the first pair that resolves.
// Failed stages are logged at warn level; if all fail the last error is returned.
func Fallback(logger *logrus.Logger, stages ...Stage) Source {
	return SourceFunc(func(ctx context.Context, category string) (models.WordPair, error) {
		var lastErr error = ErrUnknownCategory
		for _, st := range stages {
			pair, err := st.Source.Pair(ctx, category)
			if err == nil {
				return pair, nil
			}
			logger.WithFields(logrus.Fields{
				"stage":    st.Name,
				"category": category,
			}).WithError(err).Warn("word pair stage failed, falling back")
			lastErr = fmt.Errorf("%s: %w", st.Name, err)
		}
		return models.WordPair{}, lastErr
	})
}

// Resolver is the total word-pair lookup used when a round starts.
type Resolver struct {
	curated   *Curated
	generator Source
	cache     *Cache
	logger    *logrus.Logger
}

// ResolverOption configures optional stages of a Resolver.
type ResolverOption func(*Resolver)

// WithGenerator enables generated pairs for explicit categories.
func WithGenerator(src Source) ResolverOption {
	return func(r *Resolver) { r.generator = src }
}

// WithCache remembers generated pairs and serves them when the generator fails.
func WithCache(c *Cache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

func NewResolver(curated *Curated, logger *logrus.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{curated: curated, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Categories exposes the curated category list.
func (r *Resolver) Categories() []string {
	return r.curated.Categories()
}

// Resolve returns a pair for category and never fails. An empty category picks from the
// curated table directly. Otherwise the chain is generator, cache, curated category,
// and finally the whole curated table.
func (r *Resolver) Resolve(ctx context.Context, category string) models.WordPair {
	category = strings.TrimSpace(category)
	if category == "" {
		return r.curated.Random()
	}

	var stages []Stage
	if r.generator != nil {
		gen := r.generator
		if r.cache != nil {
			gen = r.cache.Remembering(gen, r.logger)
		}
		stages = append(stages, Stage{Name: "generator", Source: gen})
	}
	if r.cache != nil {
		stages = append(stages, Stage{Name: "cache", Source: r.cache})
	}
	stages = append(stages, Stage{Name: "curated", Source: r.curated})

	pair, err := Fallback(r.logger, stages...).Pair(ctx, category)
	if err != nil {
		return r.curated.Random()
	}
	return pair
}
