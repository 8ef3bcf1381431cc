package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// fetchTimeout bounds a single pull-subscribe fetch. A timed-out fetch with
// nothing waiting is not an error worth surfacing — FetchOne just tries
// again — so this only controls how often FetchOne re-polls while idle.
const fetchTimeout = 5 * time.Second

type natsService struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	log  *zap.Logger
}

// openNATS connects to endpoint, retrying on the 5s/30s/60s/120s schedule
// before giving up. Disconnect and reconnect events are logged, not acted
// on further: the nats.go client itself owns reconnection once connected.
func openNATS(ctx context.Context, endpoint string, logger *zap.Logger) (Service, error) {
	svc := &natsService{log: logger}

	operation := func() (*nats.Conn, error) {
		nc, err := nats.Connect(endpoint,
			nats.MaxReconnects(-1),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("messaging: disconnected from broker", zap.Error(err))
			}),
			nats.ReconnectHandler(func(c *nats.Conn) {
				logger.Info("messaging: reconnected to broker", zap.String("url", c.ConnectedUrl()))
			}),
		)
		if err != nil {
			logger.Warn("messaging: connect attempt failed, retrying", zap.String("endpoint", endpoint), zap.Error(err))
			return nil, err
		}
		return nc, nil
	}

	nc, err := backoff.Retry(ctx, operation, backoff.WithBackOff(connectSchedule()))
	if err != nil {
		return nil, &ConnectError{Endpoint: endpoint, Err: err}
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, &ConnectError{Endpoint: endpoint, Err: fmt.Errorf("jetstream context: %w", err)}
	}

	svc.conn = nc
	svc.js = js
	logger.Info("messaging: connected", zap.String("endpoint", endpoint))
	return svc, nil
}

// lookupStream retries StreamInfo on the same 5s/30s/60s/120s schedule as
// the initial connect when the lookup itself fails. A stream the broker
// reports as nonexistent is not retried: it fails at once with
// *StreamNotFoundError.
func (s *natsService) lookupStream(ctx context.Context, stream string) (*nats.StreamInfo, error) {
	operation := func() (*nats.StreamInfo, error) {
		info, err := s.js.StreamInfo(stream)
		if err != nil {
			if errors.Is(err, nats.ErrStreamNotFound) {
				return nil, backoff.Permanent(&StreamNotFoundError{Stream: stream})
			}
			s.log.Warn("messaging: stream lookup failed, retrying", zap.String("stream", stream), zap.Error(err))
			return nil, err
		}
		return info, nil
	}
	return backoff.Retry(ctx, operation, backoff.WithBackOff(connectSchedule()))
}

func (s *natsService) CreatePublisher(ctx context.Context, stream, subject string) (PublisherHandle, error) {
	if _, err := s.lookupStream(ctx, stream); err != nil {
		return nil, err
	}
	return &natsPublisherHandle{js: s.js, subject: subject}, nil
}

func (s *natsService) CreateSubscriber(ctx context.Context, stream, consumer, subject string) (SubscriberHandle, error) {
	if _, err := s.lookupStream(ctx, stream); err != nil {
		return nil, err
	}
	if err := s.lookupConsumer(stream, consumer); err != nil {
		return nil, err
	}
	sub, err := s.js.PullSubscribe(subject, consumer, nats.BindStream(stream))
	if err != nil {
		return nil, fmt.Errorf("messaging: pull-subscribe %s/%s: %w", stream, subject, err)
	}
	return &natsSubscriberHandle{sub: sub, log: s.log}, nil
}

// lookupConsumer checks that consumer already exists on stream. Unlike
// lookupStream this is single-shot, not retried: a missing consumer is a
// configuration error the operator must fix, not a broker that is still
// coming up, matching jetstream_messaging_impl.cc's immediate-failure
// js_GetConsumerInfo check before subscribing.
func (s *natsService) lookupConsumer(stream, consumer string) error {
	_, err := s.js.ConsumerInfo(stream, consumer)
	if err != nil {
		if errors.Is(err, nats.ErrConsumerNotFound) {
			return &ConsumerNotFoundError{Stream: stream, Consumer: consumer}
		}
		return fmt.Errorf("messaging: consumer lookup %s/%s: %w", stream, consumer, err)
	}
	return nil
}

func (s *natsService) Close() error {
	if s.conn != nil {
		if err := s.conn.Drain(); err != nil {
			s.conn.Close()
		}
	}
	return nil
}

type natsPublisherHandle struct {
	js      nats.JetStreamContext
	subject string
}

func (h *natsPublisherHandle) PublishOnce(ctx context.Context, data []byte, dedupID string) (bool, error) {
	ack, err := h.js.Publish(h.subject, data, nats.MsgId(dedupID), nats.Context(ctx))
	if err != nil {
		return false, err
	}
	return ack.Duplicate, nil
}

// Classify maps a JetStream publish error onto the retry contract. The
// broker-side store/timeout/no-responders taxonomy is not exposed as typed
// Go errors beyond ErrTimeout and ErrNoResponders, so anything else is
// recognized by the text the server puts in the API error description.
func (h *natsPublisherHandle) Classify(err error) FailureClass {
	switch {
	case errors.Is(err, nats.ErrTimeout):
		return FailTimeout
	case errors.Is(err, nats.ErrNoResponders):
		return FailNoResponders
	case strings.Contains(err.Error(), "insufficient resources"),
		strings.Contains(err.Error(), "overloaded"):
		return FailTransientStore
	default:
		return FailOther
	}
}

func (h *natsPublisherHandle) Close() error { return nil }

type natsSubscriberHandle struct {
	sub *nats.Subscription
	log *zap.Logger
}

func (h *natsSubscriberHandle) FetchOne(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgs, err := h.sub.Fetch(1, nats.MaxWait(fetchTimeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			h.log.Warn("messaging: fetch failed, retrying", zap.Error(err))
			continue
		}
		msg := msgs[0]
		if err := msg.Ack(); err != nil {
			h.log.Warn("messaging: ack failed", zap.Error(err))
		}
		return msg.Data, nil
	}
}

func (h *natsSubscriberHandle) Close() error { return nil }
