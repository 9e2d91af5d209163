// Package competitors discovers the bots available for scheduling.
package competitors

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/pkg/logger"
)

const versionLength = 12

// Scanner builds a competitor pool from a bots directory and the
// configured built-in bots.
type Scanner struct {
	dir      string
	builtins map[string]float64
	log      logger.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBuiltins sets the bundled bots and their skill levels.
func WithBuiltins(skills map[string]float64) Option {
	return func(s *Scanner) {
		s.builtins = skills
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScanner creates a Scanner for dir.
func NewScanner(dir string, opts ...Option) *Scanner {
	s := &Scanner{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("competitors")
	}
	return s
}

// Scan walks the bots directory for *.cfg files. A missing directory
// yields only the built-ins. When two configs claim the same name the one
// found first in lexical path order wins.
func (s *Scanner) Scan(ctx context.Context) (*model.Pool, error) {
	pool := model.NewPool()
	for name, skill := range s.builtins {
		pool.Add(model.Competitor{Name: name, Version: model.BuiltinVersion, Skill: skill, Builtin: true})
	}

	var configs []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".cfg") {
			configs = append(configs, path)
		}
		return ctx.Err()
	})
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Warn(ctx, "bots directory does not exist", logger.String("dir", s.dir))
		return pool, nil
	case err != nil:
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}
	slices.Sort(configs)

	found := make(map[string]string)
	for _, path := range configs {
		c, err := load(path, filepath.Dir(path) == filepath.Clean(s.dir))
		if err != nil {
			return nil, err
		}
		if prev, dup := found[c.Name]; dup {
			s.log.Warn(ctx, "duplicate bot name, ignoring config",
				logger.String("bot", c.Name),
				logger.String("kept", prev),
				logger.String("ignored", path),
			)
			continue
		}
		if pool.Has(c.Name) {
			s.log.Warn(ctx, "bot config shadows a built-in bot", logger.String("bot", c.Name))
		}
		found[c.Name] = path
		pool.Add(c)
	}
	s.log.Info(ctx, "competitors loaded",
		logger.Int("configs", len(found)),
		logger.Int("builtins", len(s.builtins)),
	)
	return pool, nil
}

// Load reads one bot config. The name comes from the "name" key of the
// [Locations] section, or of any section when that one is absent, and
// falls back to the file stem. The version is a hash of the bot's source
// files next to the config, so rebuilding a bot invalidates its old
// results while caches and logs it writes at run time do not.
func Load(path string) (model.Competitor, error) {
	return load(path, false)
}

// load versions a config that shares its directory with other bots by the
// config and the files it references only.
func load(path string, shared bool) (model.Competitor, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return model.Competitor{}, err
	}
	name := cfg.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	dir := filepath.Dir(path)
	var version string
	if shared {
		version, err = hashFiles(dir, append([]string{path}, cfg.referenced(dir)...))
	} else {
		version, err = hashDir(dir)
	}
	if err != nil {
		return model.Competitor{}, err
	}
	return model.Competitor{
		Name:       model.Normalize(name),
		Version:    version,
		ConfigPath: path,
		Skill:      1,
	}, nil
}

type botConfig struct {
	name   string
	values []string
}

// referenced returns the regular files inside dir that config values name.
func (c botConfig) referenced(dir string) []string {
	var out []string
	for _, v := range c.values {
		if v == "" || filepath.IsAbs(v) {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(v))
		rel, err := filepath.Rel(dir, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func readConfig(path string) (botConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return botConfig{}, fmt.Errorf("open bot config: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		cfg               botConfig
		section, fallback string
		located           bool
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if !strings.EqualFold(strings.TrimSpace(key), "name") {
			cfg.values = append(cfg.values, value)
			continue
		}
		switch {
		case section == "locations" && !located:
			cfg.name, located = value, true
		case fallback == "":
			fallback = value
		}
	}
	if err := sc.Err(); err != nil {
		return botConfig{}, fmt.Errorf("read bot config %s: %w", path, err)
	}
	if !located {
		cfg.name = fallback
	}
	return cfg, nil
}

// generated reports files and folders a bot produces while it runs, plus
// hidden entries. They never contribute to the version.
func generated(name string) bool {
	if strings.HasPrefix(name, ".") || name == "__pycache__" {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pyc", ".pyo", ".log":
		return true
	}
	return false
}

// hashDir hashes relative paths and contents of the source files under dir.
func hashDir(dir string) (string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && generated(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", dir, err)
	}
	return hashFiles(dir, files)
}

// hashFiles hashes the relative path and contents of each file, in path order.
func hashFiles(dir string, files []string) (string, error) {
	files = slices.Clone(files)
	slices.Sort(files)
	h := sha256.New()
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
		_, _ = io.WriteString(h, filepath.ToSlash(rel))
		_, _ = h.Write([]byte{0})
		if err := copyInto(h, path); err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil))[:versionLength], nil
}

func copyInto(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
