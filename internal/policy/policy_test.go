package policy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/codec"
	"github.com/olcf/polimor/internal/messaging"
	"github.com/olcf/polimor/internal/policy"
	"go.uber.org/zap"
)

func TestEvaluate_Scenario1_OldFilePurged(t *testing.T) {
	msg := &codec.ScanMessage{Type: "f", Path: "/a", Atime: 1, OSTPool: ""}
	now := time.Unix(1+31*86400, 0)
	assert.Equal(t, policy.DecisionPurge, policy.Evaluate(msg, now))
}

func TestEvaluate_Scenario2_PerformancePoolMigrated(t *testing.T) {
	msg := &codec.ScanMessage{Type: "f", Path: "/a", Atime: 1, OSTPool: "performance"}
	now := time.Unix(1+3*86400, 0)
	assert.Equal(t, policy.DecisionMigrate, policy.Evaluate(msg, now))
}

func TestEvaluate_DirectoriesAreNeverFiltered(t *testing.T) {
	msg := &codec.ScanMessage{Type: "d", Path: "/a", Atime: 1, OSTPool: "performance"}
	now := time.Unix(1+31*86400, 0)
	assert.Equal(t, policy.DecisionNone, policy.Evaluate(msg, now))
}

func TestEvaluate_RecentFileOnCapacityPoolIsKept(t *testing.T) {
	msg := &codec.ScanMessage{Type: "f", Path: "/a", Atime: 1000000000, OSTPool: "capacity"}
	now := time.Unix(1000000100, 0)
	assert.Equal(t, policy.DecisionNone, policy.Evaluate(msg, now))
}

func TestEngine_Run_EmitsPurgeMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := messaging.Open(ctx, messaging.BackendLocal, "", nil)
	require.NoError(t, err)
	defer svc.Close()

	scanPub, err := svc.CreatePublisher(ctx, "SCAN", "scan.events")
	require.NoError(t, err)
	scanSubH, err := svc.CreateSubscriber(ctx, "SCAN", "c", "scan.events")
	require.NoError(t, err)
	purgePubH, err := svc.CreatePublisher(ctx, "PURGE", "purge.cmds")
	require.NoError(t, err)
	purgeSubH, err := svc.CreateSubscriber(ctx, "PURGE", "c", "purge.cmds")
	require.NoError(t, err)
	migratePubH, err := svc.CreatePublisher(ctx, "MIGR", "migr.cmds")
	require.NoError(t, err)

	pub := messaging.NewPublisher(scanPub, codec.EncodeScan)
	sub := messaging.NewSubscriber(scanSubH, codec.DecodeScan)
	purgePub := messaging.NewPublisher(purgePubH, codec.EncodePurge)
	purgeSub := messaging.NewSubscriber(purgeSubH, codec.DecodePurge)
	migratePub := messaging.NewPublisher(migratePubH, codec.EncodeMigration)

	eng := policy.New(sub, purgePub, migratePub, nil, zap.NewNop())

	require.NoError(t, pub.Send(ctx, &codec.ScanMessage{
		Type: "f", Path: "/a", Atime: 1, Mtime: 1, Filesys: "x", FID: "z",
	}))

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	recvCtx, recvCancel := context.WithTimeout(ctx, time.Second)
	defer recvCancel()
	out, err := purgeSub.Receive(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, "/a", out.Path)

	cancel()
	<-runErr
}
