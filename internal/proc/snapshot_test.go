package proc

import (
	"context"
	"math"
	"os"
	"testing"

	"cdr.dev/slog/sloggers/slogtest"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotIncludesSelf(t *testing.T) {
	t.Parallel()

	table := NewSnapshotter(slogtest.Make(t, nil)).Snapshot(context.Background())

	self, ok := table[uint32(os.Getpid())]
	require.True(t, ok, "snapshot should contain the test process")
	assert.Equal(t, uint32(os.Getpid()), self.PID)
	assert.NotEmpty(t, self.Name)
}

func TestReadProcessVanished(t *testing.T) {
	t.Parallel()

	var misses int
	_, err := readProcess(context.Background(), &process.Process{Pid: math.MaxInt32 - 1}, func(error) { misses++ })
	require.Error(t, err)
	assert.Zero(t, misses)
}

func TestVanished(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.True(t, vanished(ctx, int32(os.Getpid()), process.ErrorProcessNotRunning))
	// a live process with an unreadable attribute is kept
	assert.False(t, vanished(ctx, int32(os.Getpid()), os.ErrPermission))
	assert.True(t, vanished(ctx, math.MaxInt32-1, os.ErrNotExist))
}

func TestIDAt(t *testing.T) {
	t.Parallel()

	ids := []uint32{1000, 0}
	require.NotNil(t, idAt(ids, 0))
	assert.Equal(t, uint32(1000), *idAt(ids, 0))
	assert.Equal(t, uint32(0), *idAt(ids, 1))
	assert.Nil(t, idAt(ids, 2))
	assert.Nil(t, idAt(nil, 0))
}
