// Package scan runs the `lfs find` walk (or any stand-in executable that
// accepts the same `find <dir> --printf <format>` arguments) over a
// directory tree on a fixed interval, turning each reported
// file or directory into a ScanMessage and publishing it. Grounded on
// original_source's lfs_find_scan_agent_impl::run().
package scan

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/process"
	"github.com/olcf/polimor/internal/telemetry"
)

// lfsFindFormat is the --printf template handed to `lfs find`, rendering
// exactly the §6.1 ScanMessage JSON shape one line at a time.
const lfsFindFormat = `{ "type": "%y", "path": "%p", "atime": %A@, "mtime": %T@, ` +
	`"size": %s, "uid": %U, "gid": %G, "format": { "filesys": "lustre", ` +
	`"ost_pool": "%Lp", "stripe_count": %Lc, "fid": "%LF" } }`

// Agent walks Directory every Interval and publishes one ScanMessage per
// line `lfs find` prints.
type Agent struct {
	Executable string
	Directory  string
	Interval   time.Duration

	pub    *messaging.Publisher[codec.ScanMessage]
	log    *zap.Logger
	tracer trace.Tracer
}

// New builds a scan Agent. executable defaults to "/usr/bin/lfs" when
// empty, matching the original agent's default.
func New(executable, directory string, interval time.Duration,
	pub *messaging.Publisher[codec.ScanMessage], log *zap.Logger) *Agent {
	if executable == "" {
		executable = "/usr/bin/lfs"
	}
	return &Agent{
		Executable: executable, Directory: directory, Interval: interval,
		pub: pub, log: log, tracer: telemetry.Tracer("scan-agent"),
	}
}

// Run walks Directory, publishing a ScanMessage for every well-formed
// output line, then sleeps Interval and repeats until ctx is canceled. A
// malformed output line is logged and skipped; it does not stop the scan.
func (a *Agent) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := a.walkOnce(ctx); err != nil {
			return err
		}

		t := time.NewTimer(a.Interval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil
		}
	}
}

func (a *Agent) walkOnce(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "scan.walk")
	defer span.End()

	p := process.New(a.Executable, "find", a.Directory, "--printf", lfsFindFormat+"\n")
	out, err := p.Launch(ctx)
	if err != nil {
		a.log.Error("scan: failed to launch walk", zap.Error(err))
		return nil
	}

	var pubErr error
	scanErr := process.ScanLines(out, func(line string) {
		if pubErr != nil {
			return
		}
		msg, derr := codec.DecodeScan([]byte(line))
		if derr != nil {
			a.log.Warn("scan: discarding malformed walk output", zap.String("line", line), zap.Error(derr))
			return
		}
		if serr := a.pub.Send(ctx, msg); serr != nil {
			pubErr = serr
		}
	})
	if scanErr != nil {
		a.log.Warn("scan: error reading walk output", zap.Error(scanErr))
	}

	if _, err := p.Wait(); err != nil {
		a.log.Warn("scan: walk process error", zap.Error(err))
	}

	return pubErr
}
