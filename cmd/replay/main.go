// Command replay rebuilds auction activity from a game log.
//
// Usage:
//
//	replay dump [-format json|yaml] <log>
//	replay auctions <log>
//	replay series [-auction NAME] <log>
//	replay serve [log...]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aelred/TheGreaterFool/internal/config"
	"github.com/aelred/TheGreaterFool/internal/replay"
	"github.com/aelred/TheGreaterFool/internal/telemetry"
)

const usage = `usage:
  replay dump [-format json|yaml] <log>
  replay auctions <log>
  replay series [-auction NAME] <log>
  replay serve [log...]
`

var errUsage = errors.New("invalid usage")

// env carries process-wide dependencies into each command.
type env struct {
	cfg    config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	// Logs go to stderr; stdout carries command output.
	slog.SetDefault(config.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat))

	if err := telemetry.Init(cfg.TracingEnabled, stderr); err != nil {
		slog.Error("tracing init failed", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracing shutdown failed", "err", err)
		}
	}()

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	e := &env{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
	var cmd func(context.Context, *env, []string) error
	switch args[0] {
	case "dump":
		cmd = runDump
	case "auctions":
		cmd = runAuctions
	case "series":
		cmd = runSeries
	case "serve":
		cmd = runServe
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}

	if err := cmd(ctx, e, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n%s", err, usage)
			return 2
		}
		fmt.Fprintf(stderr, "replay: %v\n", err)
		return 1
	}
	return 0
}

// load reads one log with the configured delimiter.
func (e *env) load(ctx context.Context, path string) (*replay.Result, error) {
	return replay.LoadFile(ctx, path, replay.Options{Delimiter: e.cfg.DelimiterRune()})
}

// singleLog returns the one positional argument of a command.
func singleLog(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: expected one log file, got %d arguments", errUsage, len(args))
	}
	return args[0], nil
}
