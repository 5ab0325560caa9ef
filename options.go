package gridsync

import (
	"github.com/pitwall/gridsync/pkg/errors"
	"github.com/pitwall/gridsync/pkg/match"
	"github.com/pitwall/gridsync/pkg/sources"
)

// config holds the engine configuration assembled from options.
type config struct {
	threshold float64
	scorer    match.Scorer
	priority  sources.PriorityFunc
	tracking  bool
}

func defaultConfig() *config {
	return &config{
		threshold: match.DefaultThreshold,
		scorer:    match.SequenceScorer{},
		priority:  sources.Priority,
	}
}

// Option is a function that configures a Client.
type Option func(*config) error

// WithThreshold sets the minimum name similarity accepted as a driver
// identity match. Must be in [0, 1].
func WithThreshold(threshold float64) Option {
	return func(c *config) error {
		if threshold < 0 || threshold > 1 {
			return &errors.ValidationError{
				Field:   "threshold",
				Value:   threshold,
				Message: "must be in [0, 1]",
			}
		}
		c.threshold = threshold
		return nil
	}
}

// WithScorer sets the name similarity scorer used for fuzzy matching.
func WithScorer(scorer match.Scorer) Option {
	return func(c *config) error {
		if scorer == nil {
			return &errors.ValidationError{
				Field:   "scorer",
				Message: "cannot be nil",
			}
		}
		c.scorer = scorer
		return nil
	}
}

// WithPriorityFunc overrides the fixed source authority table.
func WithPriorityFunc(priority sources.PriorityFunc) Option {
	return func(c *config) error {
		if priority == nil {
			return &errors.ValidationError{
				Field:   "priority",
				Message: "cannot be nil",
			}
		}
		c.priority = priority
		return nil
	}
}

// WithProvenance enables field-level tracking of which source won each
// resolved field.
func WithProvenance(enabled bool) Option {
	return func(c *config) error {
		c.tracking = enabled
		return nil
	}
}
