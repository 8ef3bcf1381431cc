package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Backend selects which broker implementation Open connects to.
type Backend int

const (
	// BackendLocal is the in-process stand-in described in the package doc.
	BackendLocal Backend = iota
	// BackendNATS is the durable NATS JetStream backend used in production.
	BackendNATS
)

func (b Backend) String() string {
	switch b {
	case BackendLocal:
		return "local"
	case BackendNATS:
		return "nats"
	default:
		return "unknown"
	}
}

// PublisherHandle is the backend-specific half of a Publisher: it knows how
// to put one already-encoded message on the wire and classify the result.
// Publisher[M] wraps a PublisherHandle with a codec and the dedup/retry
// contract described in the messaging-service spec.
type PublisherHandle interface {
	// PublishOnce attempts delivery exactly once. duplicate reports whether
	// the broker recognized dedupID as a message it already stored; when
	// duplicate is true the caller must treat this as success.
	PublishOnce(ctx context.Context, data []byte, dedupID string) (duplicate bool, err error)
	// Classify buckets a non-nil error from PublishOnce so the retry loop
	// knows how long to wait before trying again.
	Classify(err error) FailureClass
	Close() error
}

// SubscriberHandle is the backend-specific half of a Subscriber: it fetches
// one raw message, acking it before returning so redelivery never happens
// once the broker has handed it to the process.
type SubscriberHandle interface {
	// FetchOne blocks until a message is available, ctx is done, or the
	// broker reports an error worth surfacing to the caller. A broker
	// error that is likely transient (e.g. a pull timeout with nothing
	// waiting) is retried internally and never returned.
	FetchOne(ctx context.Context) ([]byte, error)
	Close() error
}

// Service is the entry point agents use to open publishers and subscribers
// bound to a named stream/subject pair. The stream must already exist;
// Service never provisions streams implicitly — that is an operator action
// performed once when a deployment is stood up.
type Service interface {
	CreatePublisher(ctx context.Context, stream, subject string) (PublisherHandle, error)
	CreateSubscriber(ctx context.Context, stream, consumer, subject string) (SubscriberHandle, error)
	Close() error
}

// Open connects to the selected backend. For BackendNATS it retries the
// initial connection on the 5s/30s/60s/120s schedule before giving up.
func Open(ctx context.Context, backend Backend, endpoint string, logger *zap.Logger) (Service, error) {
	switch backend {
	case BackendLocal:
		return openLocal(), nil
	case BackendNATS:
		return openNATS(ctx, endpoint, logger)
	default:
		return nil, fmt.Errorf("messaging: unknown backend %v", backend)
	}
}
