// Package execagent is the shared subscribe/invoke loop behind the purge
// and migration agents: both receive a path-bearing command message and
// run an external command against that path, differing only in the argv
// prefix and in what a dry run substitutes for it. Grounded on
// original_source's purge_agent_impl::run() and
// lfs_migrate_migration_agent_impl::run(), which are the same loop shape
// with a different argv builder.
package execagent

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/process"
	"github.com/olcf/polimor/internal/telemetry"
)

// ArgvBuilder returns the argv (excluding the final path argument) to run
// for one command message, given whether this invocation is a dry run.
type ArgvBuilder func(dryRun bool) []string

// PurgeArgv is the purge agent's ArgvBuilder: "rm -f" normally, "echo" for
// a dry run so the path is printed instead of removed.
func PurgeArgv(dryRun bool) []string {
	if dryRun {
		return []string{"/bin/echo"}
	}
	return []string{"/bin/rm", "-f"}
}

// MigrationArgv is the migration agent's ArgvBuilder: "<executable> migrate
// -p capacity" normally, "echo" for a dry run.
func MigrationArgv(executable string) ArgvBuilder {
	if executable == "" {
		executable = "/usr/bin/lfs"
	}
	return func(dryRun bool) []string {
		if dryRun {
			return []string{"/bin/echo"}
		}
		return []string{executable, "migrate", "-p", "capacity"}
	}
}

// Receiver is the minimal subset of messaging.Subscriber[M] the loop needs:
// anything with a path. Purge and migration messages both satisfy this via
// small adapter closures (see cmd/purge-agent and cmd/migration-agent).
type Receiver func(ctx context.Context) (path string, err error)

// Loop runs build(dryRun) + path through an external command for every
// message receive yields, until ctx is canceled. A receive error is logged
// and the loop continues (§7: DecodeError and transient subscribe
// conditions are non-fatal to the agent loop); a failure to launch the
// subprocess is likewise logged and the loop continues, matching
// ProcessError's non-fatal disposition.
func Loop(ctx context.Context, name string, receive Receiver, build ArgvBuilder, dryRun bool, log *zap.Logger) error {
	argv := build(dryRun)
	tracer := telemetry.Tracer(name)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		path, err := receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Warn("execagent: error receiving message", zap.Error(err))
			continue
		}

		invoke(ctx, tracer, argv, path, log)
	}
}

func invoke(ctx context.Context, tracer trace.Tracer, argv []string, path string, log *zap.Logger) {
	ctx, span := tracer.Start(ctx, "execagent.invoke")
	defer span.End()

	full := append(append([]string(nil), argv...), path)
	p := process.New(full...)

	out, err := p.Launch(ctx)
	if err != nil {
		log.Warn("execagent: failed to launch", zap.Strings("argv", full), zap.Error(err))
		return
	}

	if err := process.ScanLines(out, func(line string) {
		log.Info("execagent: output", zap.String("line", line))
	}); err != nil {
		log.Warn("execagent: error reading output", zap.Error(err))
	}

	if code, err := p.Wait(); err != nil {
		log.Warn("execagent: wait failed", zap.Error(err))
	} else if code != 0 {
		log.Warn("execagent: command exited non-zero", zap.Int("code", code), zap.String("path", path))
	}
}
