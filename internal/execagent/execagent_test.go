package execagent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olcf/polimor/internal/execagent"
)

func TestLoop_HandlesMessagesThenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	paths := []string{"/a", "/b"}
	i := 0
	receive := func(ctx context.Context) (string, error) {
		if i >= len(paths) {
			<-ctx.Done()
			return "", ctx.Err()
		}
		p := paths[i]
		i++
		return p, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- execagent.Loop(ctx, "purge-agent-test", receive, execagent.PurgeArgv, true, zap.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop after context cancellation")
	}
}

func TestPurgeArgv_DryRunUsesEcho(t *testing.T) {
	require.Equal(t, []string{"/bin/echo"}, execagent.PurgeArgv(true))
	require.Equal(t, []string{"/bin/rm", "-f"}, execagent.PurgeArgv(false))
}

func TestMigrationArgv_DryRunUsesEcho(t *testing.T) {
	build := execagent.MigrationArgv("/usr/bin/lfs")
	require.Equal(t, []string{"/bin/echo"}, build(true))
	require.Equal(t, []string{"/usr/bin/lfs", "migrate", "-p", "capacity"}, build(false))
}
