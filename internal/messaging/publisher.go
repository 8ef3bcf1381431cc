package messaging

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Encoder renders a decoded message back into the wire format for stream M.
type Encoder[M any] func(*M) []byte

// Publisher sends messages of one type onto one subject. It owns the dedup
// id sequence: each send gets "<clientID>-<n>", n monotonically increasing
// for the lifetime of the Publisher, so a retried send after a broker
// disconnect reuses the client's identity while a fresh send always gets a
// fresh id.
type Publisher[M any] struct {
	handle   PublisherHandle
	encode   Encoder[M]
	clientID string
	counter  atomic.Uint64
}

// NewPublisher builds a Publisher bound to handle, generating a random
// client id for the dedup-id sequence.
func NewPublisher[M any](handle PublisherHandle, encode Encoder[M]) *Publisher[M] {
	return &Publisher[M]{handle: handle, encode: encode, clientID: uuid.NewString()}
}

// Send encodes m, attaches the next dedup id, and publishes it. On a
// transient failure it retries according to the failure class the backend
// reports:
//
//   - transient store backpressure: wait 1s and retry
//   - timeout: retry immediately
//   - no responders (nothing listening on the stream): wait 5s and retry
//   - anything else: give up and return a *PublishError
//
// A broker report that the dedup id was already stored (duplicate == true)
// is treated as success: the message is already durably recorded.
func (p *Publisher[M]) Send(ctx context.Context, m *M) error {
	data := p.encode(m)
	dedupID := fmt.Sprintf("%s-%d", p.clientID, p.counter.Add(1)-1)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		dup, err := p.handle.PublishOnce(ctx, data, dedupID)
		if err == nil {
			_ = dup // a duplicate means the broker already stored this id; success either way
			return nil
		}

		switch p.handle.Classify(err) {
		case FailTransientStore:
			sleep(ctx, time.Second)
			continue
		case FailTimeout:
			continue
		case FailNoResponders:
			sleep(ctx, 5*time.Second)
			continue
		default:
			return &PublishError{Err: err}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
