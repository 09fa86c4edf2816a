package persist

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := Snapshot{Version: currentVersion, Spaces: []SpaceSnapshot{{Space: 1, ActiveIndex: 0}}}

	require.NoError(t, AtomicWriteJSON(path, snap))

	var got Snapshot
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, snap, got)
}

func TestAtomicWriteJSONLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, AtomicWriteJSON(path, Snapshot{Version: 1}))

	entries, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDebouncedWriterCoalescesRapidSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	calls := 0
	w := NewDebouncedWriter(path, func() Snapshot {
		calls++
		return Snapshot{Version: currentVersion}
	}, nil)
	w.debounce = 30 * time.Millisecond

	w.Schedule()
	w.Schedule()
	w.Schedule()

	require.Eventually(t, func() bool {
		var got Snapshot
		return ReadJSON(path, &got) == nil
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, calls)
}

func TestDebouncedWriterFlushIsImmediate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	w := NewDebouncedWriter(path, func() Snapshot { return Snapshot{Version: currentVersion} }, nil)
	w.debounce = time.Hour

	w.Schedule()
	w.Flush()

	var got Snapshot
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, currentVersion, got.Version)
}
