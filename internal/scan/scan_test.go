package scan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/scan"
)

func TestAgent_Run_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	pubHandle, err := svc.CreatePublisher(ctx, "SCAN", "scan.events")
	require.NoError(t, err)
	pub := messaging.NewPublisher(pubHandle, codec.EncodeScan)

	// A nonexistent executable still exercises the retry-on-interval loop:
	// the walk fails to launch (no such executable), is logged, and the
	// agent waits out Interval before trying again. Canceling ctx during
	// that wait must stop Run promptly.
	agent := scan.New("/nonexistent/lfs-binary-for-tests", "/tmp", time.Hour, pub, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestScanMessage_PublishAndReceiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	pubHandle, err := svc.CreatePublisher(ctx, "SCAN", "scan.events")
	require.NoError(t, err)
	subHandle, err := svc.CreateSubscriber(ctx, "SCAN", "c", "scan.events")
	require.NoError(t, err)

	pub := messaging.NewPublisher(pubHandle, codec.EncodeScan)
	sub := messaging.NewSubscriber(subHandle, codec.DecodeScan)

	line := `{"type":"f","path":"/a","atime":1,"mtime":2,"size":3,"uid":4,"gid":5,"format":{"filesys":"x","ost_pool":"","stripe_count":0,"fid":"z"}}`
	msg, err := codec.DecodeScan([]byte(line))
	require.NoError(t, err)
	require.NoError(t, pub.Send(ctx, msg))

	recvCtx, recvCancel := context.WithTimeout(ctx, time.Second)
	defer recvCancel()
	out, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, "/a", out.Path)
}
