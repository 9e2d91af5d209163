// Package config defines the process configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named
// by AUTOLEAGUE_CONFIG, then AUTOLEAGUE_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Result cache backends.
const (
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Match executors.
const (
	ExecutorSimulated = "simulated"
	ExecutorCommand   = "command"
)

// Tie-break policies for equal combined scores.
const (
	TieBreakStable = "stable"
	TieBreakRandom = "random"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// WorkingDir is the base for relative paths below.
	WorkingDir string `koanf:"working_dir"`

	// LadderFile is slot 0 of the ladder; later slots sit next to it.
	LadderFile string `koanf:"ladder_file"`

	// ResultsDir holds one JSON file per resolved pairing for the file backend.
	ResultsDir string `koanf:"results_dir"`

	// BotsDir is scanned for *.cfg competitor definitions.
	BotsDir string `koanf:"bots_dir"`

	DivisionSize int `koanf:"division_size"`
	OverlapSize  int `koanf:"overlap_size"`
	TeamSize     int `koanf:"team_size"`

	MapPool []string `koanf:"map_pool"`

	// BuiltinBots maps bundled bot names to their skill in [0,1].
	BuiltinBots map[string]float64 `koanf:"builtin_bots"`

	TieBreak string `koanf:"tie_break"`

	// MaxBubblePasses caps bubble sort passes; 0 derives the cap from the ladder size.
	MaxBubblePasses int `koanf:"max_bubble_passes"`

	// MatchCooldownMS is the pause between two freshly played matches.
	MatchCooldownMS int `koanf:"match_cooldown_ms"`

	Executor     string   `koanf:"executor"`
	MatchCommand []string `koanf:"match_command"`

	// OverlayFile receives the live state; empty disables it.
	OverlayFile string `koanf:"overlay_file"`

	// StatusAddr is the listen address of the status server; empty disables it.
	StatusAddr string `koanf:"status_addr"`

	ResultBackend string `koanf:"result_backend"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
	PostgresDSN   string `koanf:"postgres_dsn"`

	SimulationSeed uint64 `koanf:"simulation_seed"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		WorkingDir:      ".",
		LadderFile:      "ladder.txt",
		ResultsDir:      "results",
		BotsDir:         "bots",
		DivisionSize:    4,
		OverlapSize:     1,
		TeamSize:        1,
		MapPool:         []string{"ChampionsField", "Farmstead", "DFHStadium", "Wasteland", "BeckwithPark"},
		BuiltinBots:     map[string]float64{"psyonix_allstar": 1.0, "psyonix_pro": 0.5, "psyonix_rookie": 0.0},
		TieBreak:        TieBreakStable,
		MatchCooldownMS: 8000,
		Executor:        ExecutorSimulated,
		OverlayFile:     "current_match.json",
		ResultBackend:   BackendFile,
		MongoDatabase:   "autoleague",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.LadderFile == "":
		return fmt.Errorf("%w: ladder_file must not be empty", ErrInvalidConfig)
	case c.DivisionSize <= 0:
		return fmt.Errorf("%w: division_size must be positive, got %d", ErrInvalidConfig, c.DivisionSize)
	case c.OverlapSize <= 0:
		return fmt.Errorf("%w: overlap_size must be positive, got %d", ErrInvalidConfig, c.OverlapSize)
	case c.TeamSize <= 0:
		return fmt.Errorf("%w: team_size must be positive, got %d", ErrInvalidConfig, c.TeamSize)
	case c.MaxBubblePasses < 0:
		return fmt.Errorf("%w: max_bubble_passes must not be negative", ErrInvalidConfig)
	case c.MatchCooldownMS < 0:
		return fmt.Errorf("%w: match_cooldown_ms must not be negative", ErrInvalidConfig)
	case !slices.Contains([]string{TieBreakStable, TieBreakRandom}, c.TieBreak):
		return fmt.Errorf("%w: unknown tie_break %q", ErrInvalidConfig, c.TieBreak)
	case !slices.Contains([]string{ExecutorSimulated, ExecutorCommand}, c.Executor):
		return fmt.Errorf("%w: unknown executor %q", ErrInvalidConfig, c.Executor)
	case c.Executor == ExecutorCommand && len(c.MatchCommand) == 0:
		return fmt.Errorf("%w: executor %q needs match_command", ErrInvalidConfig, c.Executor)
	}
	for name, skill := range c.BuiltinBots {
		if skill < 0 || skill > 1 {
			return fmt.Errorf("%w: builtin bot %q skill %v outside [0,1]", ErrInvalidConfig, name, skill)
		}
	}
	switch c.ResultBackend {
	case BackendFile:
		if c.ResultsDir == "" {
			return fmt.Errorf("%w: results_dir must not be empty", ErrInvalidConfig)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: mongo_uri must be set for the mongo backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn must be set for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown result_backend %q", ErrInvalidConfig, c.ResultBackend)
	}
	return nil
}

// Path resolves p against WorkingDir unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkingDir, p)
}

// CommandLine renders MatchCommand for logs.
func (c *Config) CommandLine() string {
	return strings.Join(c.MatchCommand, " ")
}
