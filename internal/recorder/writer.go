package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/telemetry"
)

// recordsSchema is the §6.2 catalog table, created on first use of a
// shard's database file.
const recordsSchema = `
CREATE TABLE IF NOT EXISTS Records (
	path TEXT PRIMARY KEY,
	type TEXT,
	atime INTEGER,
	mtime INTEGER,
	size INTEGER,
	uid INTEGER,
	gid INTEGER,
	filesys TEXT,
	ost_pool TEXT,
	stripe_count INTEGER,
	fid TEXT,
	timestamp INTEGER
)`

const upsert = `
INSERT OR REPLACE INTO Records
	(path, type, atime, mtime, size, uid, gid, filesys, ost_pool, stripe_count, fid, timestamp)
VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`

// Writer consumes one shard's recorder messages and idempotently upserts
// each into its SQLite catalog.
type Writer struct {
	db     *sql.DB
	sub    *messaging.Subscriber[codec.RecorderMessage]
	log    *zap.Logger
	tracer trace.Tracer
}

// OpenWriter opens (creating if necessary) the SQLite database at dsn and
// binds it to sub. dsn is a file path such as "/var/lib/polimor/db0.sqlite",
// mirroring the original agent's per-shard "/db0", "/db1", "/db2" naming.
func OpenWriter(dsn string, sub *messaging.Subscriber[codec.RecorderMessage], log *zap.Logger) (*Writer, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("recorder: open %s: %w", dsn, err)
	}
	if _, err := db.Exec(recordsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: create schema in %s: %w", dsn, err)
	}
	return &Writer{db: db, sub: sub, log: log, tracer: telemetry.Tracer("recorder-writer")}, nil
}

// Close closes the underlying database handle.
func (w *Writer) Close() error { return w.db.Close() }

// Run consumes recorder messages until ctx is canceled, writing each with
// INSERT OR REPLACE. A receive or write error is logged and the loop
// continues — the catalog self-heals on the next scan cycle's message for
// the same path.
func (w *Writer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msg, err := w.sub.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			w.log.Warn("recorder: error receiving message", zap.Error(err))
			continue
		}

		if err := w.write(ctx, msg); err != nil {
			w.log.Warn("recorder: write failed", zap.String("path", msg.Path), zap.Error(err))
		}
	}
}

func (w *Writer) write(ctx context.Context, msg *codec.RecorderMessage) error {
	ctx, span := w.tracer.Start(ctx, "recorder.write")
	defer span.End()

	_, err := w.db.ExecContext(ctx, upsert,
		msg.Path, msg.Type, msg.Atime, msg.Mtime, msg.Size, msg.UID, msg.GID,
		msg.Filesys, msg.OSTPool, msg.StripeCount, msg.FID)
	return err
}
