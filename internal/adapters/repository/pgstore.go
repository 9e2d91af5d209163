package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/internal/domain/types"
)

//go:embed schema.sql
var schema embed.FS

// PostgresResultStore keeps results as JSONB rows.
type PostgresResultStore struct {
	pool *pgxpool.Pool
}

// NewPostgresResultStore connects to dsn and applies the schema.
func NewPostgresResultStore(ctx context.Context, dsn string) (*PostgresResultStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s := &PostgresResultStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresResultStore) migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Get selects the payload for key.
func (s *PostgresResultStore) Get(ctx context.Context, key types.PairKey) (model.MatchResult, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM match_results WHERE key = $1`, key.String()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchResult{}, false, nil
	}
	if err != nil {
		return model.MatchResult{}, false, fmt.Errorf("select %s: %w", key, err)
	}
	r, err := decodeResult(payload, "postgres:match_results/"+key.String())
	if err != nil {
		return model.MatchResult{}, false, err
	}
	return r, true, nil
}

// Put inserts the result row; an existing row is left untouched.
func (s *PostgresResultStore) Put(ctx context.Context, key types.PairKey, result model.MatchResult) error {
	payload, err := encodeResult(result)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
        INSERT INTO match_results(key, scope, bot_a, bot_b, payload)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (key) DO NOTHING
    `, key.String(), key.Scope, key.A, key.B, payload)
	if err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrResultExists, key)
	}
	return nil
}

// List returns every result of scope.
func (s *PostgresResultStore) List(ctx context.Context, scope string) (map[types.PairKey]model.MatchResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, bot_a, bot_b, payload FROM match_results WHERE scope = $1`, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	defer rows.Close()

	out := make(map[types.PairKey]model.MatchResult)
	for rows.Next() {
		var id, a, b string
		var payload []byte
		if err := rows.Scan(&id, &a, &b, &payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", scope, err)
		}
		r, err := decodeResult(payload, "postgres:match_results/"+id)
		if err != nil {
			return nil, err
		}
		out[types.NewPairKey(scope, a, b)] = r
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresResultStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}
