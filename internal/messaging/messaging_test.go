package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
)

func TestLocalBackend_PublishAndReceive(t *testing.T) {
	ctx := context.Background()
	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	pubHandle, err := svc.CreatePublisher(ctx, "SCAN", "scan.events")
	require.NoError(t, err)
	subHandle, err := svc.CreateSubscriber(ctx, "SCAN", "scan-consumer", "scan.events")
	require.NoError(t, err)

	pub := messaging.NewPublisher(pubHandle, codec.EncodeScan)
	sub := messaging.NewSubscriber(subHandle, codec.DecodeScan)

	in := &codec.ScanMessage{
		Type: "f", Path: "/a", Atime: 1, Mtime: 2, Size: 3, UID: 4, GID: 5,
		Filesys: "x", FID: "z",
	}
	require.NoError(t, pub.Send(ctx, in))

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	out, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLocalBackend_ReceiveTimesOutWhenEmpty(t *testing.T) {
	ctx := context.Background()
	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	subHandle, err := svc.CreateSubscriber(ctx, "SCAN", "scan-consumer", "scan.events")
	require.NoError(t, err)
	sub := messaging.NewSubscriber(subHandle, codec.DecodePurge)

	recvCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = sub.Receive(recvCtx)
	require.Error(t, err)
}

func TestPublisher_DuplicateDedupIDIsNotResent(t *testing.T) {
	ctx := context.Background()
	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	pubHandle, err := svc.CreatePublisher(ctx, "PURGE", "purge.cmds")
	require.NoError(t, err)

	first, err := pubHandle.PublishOnce(ctx, codec.EncodePurge(&codec.PurgeMessage{Path: "/a"}), "client-0")
	require.NoError(t, err)
	assert.False(t, first)

	dup, err := pubHandle.PublishOnce(ctx, codec.EncodePurge(&codec.PurgeMessage{Path: "/a"}), "client-0")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestSend_ContextCanceledReturnsError(t *testing.T) {
	ctx := context.Background()
	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	pubHandle, err := svc.CreatePublisher(ctx, "MIGR", "migr.cmds")
	require.NoError(t, err)
	pub := messaging.NewPublisher(pubHandle, codec.EncodeMigration)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = pub.Send(canceled, &codec.MigrationMessage{Path: "/a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
