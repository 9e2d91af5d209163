package service

import (
	"github.com/okian/autoleague/internal/adapters/repository"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/types"
	"github.com/okian/autoleague/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExecutor replaces the configured match executor.
func WithExecutor(e match.Executor) Option {
	return func(s *Service) {
		if e != nil {
			s.executor = e
		}
	}
}

// WithResultStore replaces the configured result backend. The service
// closes it on Stop.
func WithResultStore(rs repository.ResultStore) Option {
	return func(s *Service) {
		if rs != nil {
			s.results = rs
		}
	}
}

// WithLadderStore replaces the ladder file store.
func WithLadderStore(ls repository.LadderStore) Option {
	return func(s *Service) {
		if ls != nil {
			s.ladders = ls
		}
	}
}

// WithObserver adds a live-state observer next to the overlay writer.
func WithObserver(o types.Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}
