package process_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/process"
)

func TestLaunch_CapturesCombinedOutput(t *testing.T) {
	p := process.New("sh", "-c", "echo out; echo err 1>&2")
	r, err := p.Launch(context.Background())
	require.NoError(t, err)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "out")
	assert.Contains(t, string(data), "err")

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestWait_ReturnsNonZeroExitCode(t *testing.T) {
	p := process.New("sh", "-c", "exit 3")
	_, err := p.Launch(context.Background())
	require.NoError(t, err)

	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestLaunch_RelaunchCleansUpPrevious(t *testing.T) {
	p := process.New("sh", "-c", "sleep 5")
	_, err := p.Launch(context.Background())
	require.NoError(t, err)

	r, err := p.Launch(context.Background())
	require.NoError(t, err)
	p.Stop()

	_, _ = io.ReadAll(r)
}

func TestScanLines(t *testing.T) {
	p := process.New("sh", "-c", "printf 'a\\nb\\nc\\n'")
	r, err := p.Launch(context.Background())
	require.NoError(t, err)

	var lines []string
	require.NoError(t, process.ScanLines(r, func(line string) {
		lines = append(lines, line)
	}))
	assert.Equal(t, []string{"a", "b", "c"}, lines)

	_, _ = p.Wait()
}
