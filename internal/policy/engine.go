package policy

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/telemetry"
)

// Engine is the policy agent's subscribe/decide/publish loop: one scan
// message in, at most one purge or migration message out.
type Engine struct {
	scanSub     *messaging.Subscriber[codec.ScanMessage]
	purgePub    *messaging.Publisher[codec.PurgeMessage]
	migratePub  *messaging.Publisher[codec.MigrationMessage]
	recorderPub *messaging.Publisher[codec.RecorderMessage] // reserved: see New's doc comment
	log         *zap.Logger
	now         func() time.Time
	tracer      trace.Tracer
}

// New builds a policy Engine. recorderPub may be nil: original_source's
// policy_engine_impl carries a recorder publisher handle that its run()
// loop never calls (the send is commented out there too), kept so a
// future policy version can start recording scan results without
// re-plumbing the constructor. When non-nil here, every scan message is
// still only evaluated for purge/migrate — recorderPub is not invoked by
// Run; it exists for that future extension point.
func New(scanSub *messaging.Subscriber[codec.ScanMessage],
	purgePub *messaging.Publisher[codec.PurgeMessage],
	migratePub *messaging.Publisher[codec.MigrationMessage],
	recorderPub *messaging.Publisher[codec.RecorderMessage],
	log *zap.Logger) *Engine {
	return &Engine{
		scanSub:     scanSub,
		purgePub:    purgePub,
		migratePub:  migratePub,
		recorderPub: recorderPub,
		log:         log,
		now:         time.Now,
		tracer:      telemetry.Tracer("policy-agent"),
	}
}

// Run consumes scan messages until ctx is canceled. A decode error on one
// message is logged and the loop continues; a publish error is fatal and
// is returned to the caller, which per the agents' error-handling contract
// means the process exits non-zero.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msg, err := e.scanSub.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			e.log.Warn("policy: error receiving scan message", zap.Error(err))
			continue
		}

		if err := e.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (e *Engine) handle(ctx context.Context, msg *codec.ScanMessage) error {
	ctx, span := e.tracer.Start(ctx, "policy.evaluate")
	defer span.End()

	switch Evaluate(msg, e.now()) {
	case DecisionPurge:
		e.log.Info("policy: decided to purge", zap.String("path", msg.Path))
		return e.purgePub.Send(ctx, &codec.PurgeMessage{Path: msg.Path})
	case DecisionMigrate:
		e.log.Info("policy: decided to migrate", zap.String("path", msg.Path))
		return e.migratePub.Send(ctx, &codec.MigrationMessage{Path: msg.Path})
	default:
		return nil
	}
}
