// Package runner plays matches outside the process.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/okian/autoleague/internal/domain/grading"
	"github.com/okian/autoleague/internal/domain/match"
	"github.com/okian/autoleague/internal/domain/model"
	"github.com/okian/autoleague/pkg/logger"
)

// ExitNoRecording is the exit code of a match that finished without
// saving a replay. Its result is still valid.
const ExitNoRecording = 3

// ErrEmptyCommand is returned when no command is configured.
var ErrEmptyCommand = errors.New("match command is empty")

// CommandExecutor runs an external program per match. The program gets
// the pairing as flags and prints the MatchResult as JSON on stdout.
type CommandExecutor struct {
	argv []string
	log  logger.Logger
}

// NewCommandExecutor creates an executor running argv plus match flags.
func NewCommandExecutor(argv []string) (*CommandExecutor, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, ErrEmptyCommand
	}
	return &CommandExecutor{
		argv: append([]string(nil), argv...),
		log:  logger.Get().Named("runner"),
	}, nil
}

// Args returns the flags describing req.
func Args(req match.Request) []string {
	args := []string{
		"--blue", req.Blue.Name,
		"--orange", req.Orange.Name,
		"--map", req.Map,
		"--team-size", strconv.Itoa(req.TeamSize),
	}
	for _, side := range []struct {
		flag string
		c    model.Competitor
	}{{"blue", req.Blue}, {"orange", req.Orange}} {
		if side.c.Builtin {
			args = append(args, "--"+side.flag+"-skill", strconv.FormatFloat(side.c.Skill, 'f', -1, 64))
		} else {
			args = append(args, "--"+side.flag+"-config", side.c.ConfigPath)
		}
	}
	return args
}

// Execute implements match.Executor.
func (e *CommandExecutor) Execute(ctx context.Context, req match.Request) (grading.Outcome, error) {
	args := append(e.argv[1:len(e.argv):len(e.argv)], Args(req)...)
	cmd := exec.CommandContext(ctx, e.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	status := grading.Decided
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != ExitNoRecording {
			return grading.Outcome{}, fmt.Errorf("match command: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		status = grading.FailedNoRecording
	}

	var res model.MatchResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return grading.Outcome{}, fmt.Errorf("match command output: %w", err)
	}
	res = res.Normalized()
	e.log.Debug(ctx, "match command finished",
		logger.String("score", res.String()),
		logger.String("status", status.String()),
	)
	return grading.Outcome{Status: status, Result: res}, nil
}
