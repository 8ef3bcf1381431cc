package recorder

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
)

// FanOut subscribes to the recorder stream and republishes each message to
// one of len(shards) publishers, selected by Shard(msg.Path, len(shards)).
// Each shard publisher feeds one SQLite Writer (see writer.go) running as
// its own consumer, matching the original agent's db_queues array of
// per-shard publishers.
type FanOut struct {
	sub    *messaging.Subscriber[codec.RecorderMessage]
	shards []*messaging.Publisher[codec.RecorderMessage]
	log    *zap.Logger
}

// NewFanOut builds a FanOut across shards. len(shards) must be positive.
func NewFanOut(sub *messaging.Subscriber[codec.RecorderMessage],
	shards []*messaging.Publisher[codec.RecorderMessage], log *zap.Logger) (*FanOut, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("recorder: at least one shard publisher is required")
	}
	return &FanOut{sub: sub, shards: shards, log: log}, nil
}

// Run consumes recorder messages until ctx is canceled, forwarding each to
// its shard. A receive error is logged and the loop continues; a publish
// error is fatal and returned to the caller.
func (f *FanOut) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msg, err := f.sub.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			f.log.Warn("recorder: error receiving message", zap.Error(err))
			continue
		}

		shard := Shard(msg.Path, len(f.shards))
		if err := f.shards[shard].Send(ctx, msg); err != nil {
			return err
		}
	}
}
