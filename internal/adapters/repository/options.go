package repository

import (
	"context"
	"fmt"
)

// Result backends.
const (
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Backend selects and configures a ResultStore.
type Backend struct {
	Kind          string
	ResultsDir    string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// Option adjusts a Backend.
type Option func(*Backend)

// WithResultsDir sets the file backend directory.
func WithResultsDir(dir string) Option {
	return func(b *Backend) { b.ResultsDir = dir }
}

// WithMongo sets the Mongo connection.
func WithMongo(uri, database string) Option {
	return func(b *Backend) {
		b.MongoURI = uri
		b.MongoDatabase = database
	}
}

// WithPostgres sets the Postgres connection string.
func WithPostgres(dsn string) Option {
	return func(b *Backend) { b.PostgresDSN = dsn }
}

// OpenResultStore builds the ResultStore named by kind.
func OpenResultStore(ctx context.Context, kind string, opts ...Option) (ResultStore, error) {
	b := Backend{Kind: kind}
	for _, opt := range opts {
		opt(&b)
	}
	switch b.Kind {
	case BackendFile, "":
		return NewFileResultStore(b.ResultsDir), nil
	case BackendMongo:
		s, err := NewMongoResultStore(ctx, b.MongoURI, b.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendPostgres:
		s, err := NewPostgresResultStore(ctx, b.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryResultStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, b.Kind)
	}
}
