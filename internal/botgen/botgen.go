// Package botgen writes throwaway bot configurations for trying a league
// locally. Each bot lives in its own directory so the scanner gives it a
// distinct version hash.
package botgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/okian/autoleague/internal/adapters/repository"
	"github.com/okian/autoleague/pkg/logger"
)

// ErrInvalidCount is returned when fewer than one bot is requested.
var ErrInvalidCount = errors.New("bot count must be positive")

const maxNameAttempts = 50

// Generator creates fake bot directories.
type Generator struct {
	faker *gofakeit.Faker
	seed  uint64
	log   logger.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes names reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a Generator. Without a seed the clock is used.
func New(opts ...Option) *Generator {
	g := &Generator{seed: uint64(time.Now().UnixNano())} //nolint:gosec // clock seed
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Get().Named("botgen")
	}
	g.faker = gofakeit.New(g.seed)
	return g
}

// Name returns a lower-case identifier such as "brave_otter".
func (g *Generator) Name() string {
	adj := sanitize(g.faker.Adjective())
	animal := sanitize(g.faker.Animal())
	return adj + "_" + animal
}

// Generate writes count bots under dir, skipping names that already have
// a directory there, and returns the new names in creation order.
func (g *Generator) Generate(ctx context.Context, dir string, count int) ([]string, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	names := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(names) < count {
		if err := ctx.Err(); err != nil {
			return names, err
		}
		name, err := g.freshName(dir, seen)
		if err != nil {
			return names, err
		}
		if err := write(dir, name, g.faker.Sentence(6)); err != nil {
			return names, err
		}
		seen[name] = true
		names = append(names, name)
	}
	g.log.Info(ctx, "generated bots", logger.String("dir", dir), logger.Strings("bots", names))
	return names, nil
}

func (g *Generator) freshName(dir string, seen map[string]bool) (string, error) {
	for range maxNameAttempts {
		name := g.Name()
		if seen[name] {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			continue
		}
		return name, nil
	}
	return "", fmt.Errorf("no unused bot name after %d attempts", maxNameAttempts)
}

func write(dir, name, motto string) error {
	botDir := filepath.Join(dir, name)
	if err := os.MkdirAll(botDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", botDir, err)
	}
	cfg := fmt.Sprintf("[Locations]\nname = %s\npython_file = %s.py\n\n[Details]\ndescription = %s\n", name, name, motto)
	if err := repository.WriteFileAtomic(filepath.Join(botDir, name+".cfg"), []byte(cfg)); err != nil {
		return err
	}
	src := fmt.Sprintf("# %s\nclass Agent:\n    def get_output(self, packet):\n        return None\n", motto)
	return repository.WriteFileAtomic(filepath.Join(botDir, name+".py"), []byte(src))
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "bot"
	}
	return b.String()
}
