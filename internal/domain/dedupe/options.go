package dedupe

import "github.com/okian/autoleague/pkg/logger"

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger; the global "dedupe" logger is used otherwise.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}
