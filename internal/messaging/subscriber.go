package messaging

import "context"

// Decoder parses and validates a raw wire message into M.
type Decoder[M any] func([]byte) (*M, error)

// Subscriber receives messages of one type from one subject. The underlying
// handle acks each message before Receive ever sees its bytes, so a decode
// failure does not cause redelivery — PoliMOR agents see each message
// at-most-once, trading the stronger at-least-once guarantee for a simpler
// failure model (a poison message is logged and dropped, not retried
// forever).
type Subscriber[M any] struct {
	handle SubscriberHandle
	decode Decoder[M]
}

// NewSubscriber builds a Subscriber bound to handle.
func NewSubscriber[M any](handle SubscriberHandle, decode Decoder[M]) *Subscriber[M] {
	return &Subscriber[M]{handle: handle, decode: decode}
}

// Receive blocks until a message arrives, ctx is canceled, or the broker
// reports a non-retryable error. A returned error from decode means the
// message was already acked and is gone; the caller is responsible for
// logging it.
func (s *Subscriber[M]) Receive(ctx context.Context) (*M, error) {
	data, err := s.handle.FetchOne(ctx)
	if err != nil {
		return nil, err
	}
	return s.decode(data)
}
