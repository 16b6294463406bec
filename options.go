package placemap

import (
	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/store"
	"github.com/agentstation/placemap/pkg/trust"
)

// options configures a client.
type options struct {
	store       store.Store
	trust       *trust.Model
	threshold   int
	concurrency int
}

func defaultOptions() *options {
	return &options{
		threshold:   constants.DefaultSimilarityThreshold,
		concurrency: constants.DefaultConcurrency,
	}
}

// Option is a function that configures a Placemap client.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns client options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithStore sets the entity store. The client takes ownership and
// closes it on Close.
func WithStore(st store.Store) Option {
	return func(o *options) error {
		if st == nil {
			return &errors.ValidationError{
				Field:   "store",
				Message: "cannot be nil",
			}
		}
		o.store = st
		return nil
	}
}

// WithTrust sets the connector trust model.
func WithTrust(model *trust.Model) Option {
	return func(o *options) error {
		if model == nil {
			return &errors.ValidationError{
				Field:   "trust",
				Message: "cannot be nil",
			}
		}
		o.trust = model
		return nil
	}
}

// WithTrustFile loads the connector trust model from a YAML table.
func WithTrustFile(path string) Option {
	return func(o *options) error {
		model, err := trust.Load(path)
		if err != nil {
			return err
		}
		o.trust = model
		return nil
	}
}

// WithMatchThreshold sets the fuzzy name similarity threshold used
// during grouping, in [0,100].
func WithMatchThreshold(threshold int) Option {
	return func(o *options) error {
		if threshold < 0 || threshold > 100 {
			return &errors.ValidationError{
				Field:   "threshold",
				Value:   threshold,
				Message: "must be between 0 and 100",
			}
		}
		o.threshold = threshold
		return nil
	}
}

// WithConcurrency bounds how many groups finalize in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: "must be at least 1",
			}
		}
		o.concurrency = n
		return nil
	}
}
