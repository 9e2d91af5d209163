// Command autoleague runs bot league events and bubble-sort ladders.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/okian/autoleague/internal/adapters/seed"
	service "github.com/okian/autoleague/internal/app"
	"github.com/okian/autoleague/internal/botgen"
	"github.com/okian/autoleague/internal/config"
	"github.com/okian/autoleague/internal/domain/league"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/pkg/logger"
	"github.com/urfave/cli/v2"
)

// version is overridden at link time.
var version = "dev"

const logFilePermission = 0o600

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. A
// league too small to schedule is reported but is not a failure.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newApp(stdout, stderr).RunContext(ctx, args)
	var few *model.InsufficientCompetitorsError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &few):
		_, _ = fmt.Fprintln(stdout, err)
		return 0
	default:
		_, _ = fmt.Fprintln(stderr, "autoleague:", err)
		return 1
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	var logFile *os.File
	eventFlags := []cli.Flag{
		&cli.BoolFlag{Name: "list", Usage: "print the pairings instead of playing them"},
		&cli.BoolFlag{Name: "results", Usage: "with --list, include results already stored"},
	}
	return &cli.App{
		Name:           "autoleague",
		Usage:          "run bot league events and bubble-sort ladders",
		Version:        version,
		Writer:         stdout,
		ErrWriter:      stderr,
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{config.EnvConfigFile}},
			&cli.StringFlag{Name: "log-file", Usage: "also append logs to this file"},
			&cli.IntFlag{Name: "teamsize", Usage: "players per team, overrides team_size"},
		},
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			w := stderr
			if path := c.String("log-file"); path != "" {
				f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				logFile = f
				w = io.MultiWriter(stderr, f)
			}
			return logger.InitWithWriter(w)
		},
		After: func(*cli.Context) error {
			if logFile != nil {
				return logFile.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "odd",
				Usage:  "play the odd-parity divisions",
				Flags:  eventFlags,
				Action: eventAction(service.ParityOdd),
			},
			{
				Name:   "even",
				Usage:  "play the even-parity divisions",
				Flags:  eventFlags,
				Action: eventAction(service.ParityEven),
			},
			{
				Name:   "next",
				Usage:  "play the next event, parity derived from its number",
				Flags:  eventFlags,
				Action: eventAction(service.ParityNext),
			},
			{
				Name:   "bubble",
				Usage:  "bubble-sort the latest ladder in place",
				Action: bubbleAction,
			},
			{
				Name:   "list",
				Usage:  "print the latest ladder",
				Action: listAction,
			},
			{
				Name:  "seed",
				Usage: "write the initial ladder from a workbook or a shuffled pool",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "workbook", Usage: ".xlsx file; empty shuffles the competitor pool"},
					&cli.StringFlag{Name: "sheet", Usage: "sheet name, default first sheet"},
					&cli.StringFlag{Name: "column", Value: seed.DefaultRange.Column},
					&cli.IntFlag{Name: "start-row", Value: seed.DefaultRange.StartRow},
					&cli.IntFlag{Name: "length", Value: seed.DefaultRange.Length},
					&cli.IntFlag{Name: "week", Usage: "weekly column offset"},
				},
				Action: seedAction,
			},
			{
				Name:   "serve",
				Usage:  "run the status server until interrupted",
				Action: serveAction,
			},
			{
				Name:  "fakebots",
				Usage: "generate placeholder bot configs in the bots directory",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Value: 8},
					&cli.Uint64Flag{Name: "seed", Usage: "name seed, default clock"},
				},
				Action: fakebotsAction,
			},
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version)
					return err
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.Context, c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("teamsize") {
		cfg.TeamSize = c.Int("teamsize")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(c.Context, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// withService starts a Service for the duration of fn. When a status
// address is configured the server runs alongside fn.
func withService(c *cli.Context, fn func(ctx context.Context, svc *service.Service) error) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	svc := service.New(cfg, service.WithLogger(logger.Get().Named("service")))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := svc.Stop(context.WithoutCancel(ctx)); err == nil {
			err = stopErr
		}
	}()

	if cfg.StatusAddr != "" && c.Command.Name != "serve" {
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := svc.Serve(srvCtx); err != nil {
				logger.Get().Error(ctx, "status server failed", logger.Error(err))
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}
	return fn(ctx, svc)
}

func eventAction(p service.Parity) cli.ActionFunc {
	return func(c *cli.Context) error {
		return withService(c, func(ctx context.Context, svc *service.Service) error {
			if c.Bool("list") {
				sched, err := svc.Preview(ctx, p, c.Bool("results"))
				if err != nil {
					return err
				}
				printSchedule(c.App.Writer, sched)
				return nil
			}
			rep, err := svc.RunLeague(ctx, p)
			if err != nil {
				return err
			}
			printReport(c.App.Writer, rep)
			return nil
		})
	}
}

func bubbleAction(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *service.Service) error {
		state, err := svc.RunBubble(ctx)
		if err != nil {
			return err
		}
		w := c.App.Writer
		_, _ = fmt.Fprintf(w, "ladder slot %d sorted after %d passes\n", state.Slot, state.Passes)
		for i, bot := range state.Ladder {
			_, _ = fmt.Fprintf(w, "%3d. %s\n", i+1, bot)
		}
		return nil
	})
}

func listAction(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *service.Service) error {
		entries, err := svc.Standings(ctx)
		if err != nil {
			return err
		}
		w := c.App.Writer
		division := ""
		for _, e := range entries {
			if e.Division != division {
				division = e.Division
				_, _ = fmt.Fprintf(w, "[%s]\n", division)
			}
			_, _ = fmt.Fprintf(w, "%3d. %s\n", e.Rank, e.Bot)
		}
		return nil
	})
}

func seedAction(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *service.Service) error {
		bots, err := svc.Seed(ctx, service.SeedSource{
			Workbook: c.String("workbook"),
			Range: seed.Range{
				Sheet:    c.String("sheet"),
				Column:   c.String("column"),
				StartRow: c.Int("start-row"),
				Length:   c.Int("length"),
				Week:     c.Int("week"),
			},
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(c.App.Writer, "seeded %d competitors\n", len(bots))
		return err
	})
}

func serveAction(c *cli.Context) error {
	return withService(c, func(ctx context.Context, svc *service.Service) error {
		return svc.Serve(ctx)
	})
}

func fakebotsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	var opts []botgen.Option
	if c.IsSet("seed") {
		opts = append(opts, botgen.WithSeed(c.Uint64("seed")))
	}
	names, err := botgen.New(opts...).Generate(c.Context, cfg.Path(cfg.BotsDir), c.Int("count"))
	if err != nil {
		return err
	}
	for _, n := range names {
		_, _ = fmt.Fprintln(c.App.Writer, n)
	}
	return nil
}

func printReport(w io.Writer, rep league.Report) {
	_, _ = fmt.Fprintf(w, "event %d (run %s)\n", rep.Event, rep.RunID)
	if len(rep.Newcomers) > 0 {
		_, _ = fmt.Fprintf(w, "newcomers: %v\n", rep.Newcomers)
	}
	for _, d := range rep.Divisions {
		_, _ = fmt.Fprintf(w, "[%s] played %d, cached %d\n", d.Name, d.Played, d.Cached)
		for i, s := range d.Scores {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
}

func printSchedule(w io.Writer, sched []league.DivisionSchedule) {
	for _, d := range sched {
		_, _ = fmt.Fprintf(w, "[%s]\n", d.Name)
		for _, m := range d.Matches {
			line := fmt.Sprintf("  %s vs %s", m.Pair.A, m.Pair.B)
			if m.Result != nil {
				line += "  " + m.Result.String()
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
}
