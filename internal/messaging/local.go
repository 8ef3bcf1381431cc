package messaging

import (
	"context"
	"fmt"
	"sync"
)

// localQueueDepth mirrors the POSIX message queue depth the original local
// backend used (see original_source messaging/details/posix_messaging_impl.cc):
// small, fixed, and meant for exercising agent logic in tests, not load.
const localQueueDepth = 10

// localService is an in-process stand-in for a broker. Queues are keyed by
// "stream/subject" and shared by every publisher/subscriber opened against
// the same service instance, which is exactly the single-host, transient
// scope the local backend is meant to cover.
type localService struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	closed bool
}

func openLocal() *localService {
	return &localService{queues: make(map[string]chan []byte)}
}

func (s *localService) queue(stream, subject string) chan []byte {
	key := stream + "/" + subject
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[key]
	if !ok {
		q = make(chan []byte, localQueueDepth)
		s.queues[key] = q
	}
	return q
}

func (s *localService) CreatePublisher(_ context.Context, stream, subject string) (PublisherHandle, error) {
	return &localPublisherHandle{queue: s.queue(stream, subject), seen: make(map[string]struct{})}, nil
}

func (s *localService) CreateSubscriber(_ context.Context, stream, _consumer, subject string) (SubscriberHandle, error) {
	return &localSubscriberHandle{queue: s.queue(stream, subject)}, nil
}

func (s *localService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type localPublisherHandle struct {
	mu    sync.Mutex
	queue chan []byte
	seen  map[string]struct{}
}

// PublishOnce never fails except when the caller's context is already
// canceled: the in-memory queue has no storage backpressure, timeout, or
// no-responders condition to simulate, so there is nothing to retry. It
// does honor the dedup contract so Publisher tests can exercise it.
func (h *localPublisherHandle) PublishOnce(ctx context.Context, data []byte, dedupID string) (bool, error) {
	h.mu.Lock()
	_, dup := h.seen[dedupID]
	if !dup {
		h.seen[dedupID] = struct{}{}
	}
	h.mu.Unlock()
	if dup {
		return true, nil
	}

	select {
	case h.queue <- data:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (h *localPublisherHandle) Classify(_ error) FailureClass { return FailOther }

func (h *localPublisherHandle) Close() error { return nil }

type localSubscriberHandle struct {
	queue chan []byte
}

func (h *localSubscriberHandle) FetchOne(ctx context.Context) ([]byte, error) {
	select {
	case data := <-h.queue:
		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("messaging: fetch canceled: %w", ctx.Err())
	}
}

func (h *localSubscriberHandle) Close() error { return nil }
