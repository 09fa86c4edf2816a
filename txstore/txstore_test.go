package txstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift/riftwm/model"
)

func TestNextTxidIncrementsPerWindow(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1

	assert.Equal(t, TransactionId(1), s.NextTxid(id))
	assert.Equal(t, TransactionId(2), s.NextTxid(id))
	assert.Equal(t, TransactionId(1), s.NextTxid(2), "a different window starts its own sequence")
}

func TestInsertAndClearTargetRoundTrip(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1
	target := model.Rect{X: 10, Y: 20, W: 300, H: 200}

	s.Insert(id, 1, target)
	rec := s.Get(id)
	require.True(t, rec.HasTarget)
	assert.Equal(t, target, rec.Target)
	assert.Equal(t, TransactionId(1), rec.Txid)

	s.ClearTarget(id)
	rec = s.Get(id)
	assert.False(t, rec.HasTarget)
	assert.Equal(t, model.Rect{}, rec.Target)
}

func TestIsSettlingTrueOnlyWithinCooldownAfterClear(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1

	assert.False(t, s.IsSettling(id), "a window with no history is never settling")

	s.Insert(id, 1, model.Rect{W: 100, H: 100})
	s.ClearTarget(id)
	assert.True(t, s.IsSettling(id))

	time.Sleep(settlingCooldown + 20*time.Millisecond)
	assert.False(t, s.IsSettling(id))
}

func TestIsSettlingFalseWhileTargetStillOutstanding(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1

	s.Insert(id, 1, model.Rect{W: 100, H: 100})
	assert.False(t, s.IsSettling(id), "an outstanding target isn't a settled one")
}

func TestRemoveDropsTheEntryEntirely(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1

	s.Insert(id, 5, model.Rect{W: 100, H: 100})
	s.Remove(id)

	assert.Equal(t, TransactionId(1), s.NextTxid(id), "removed window starts a fresh sequence")
}

func TestLastTxidReflectsMostRecentInsert(t *testing.T) {
	s := New()
	const id model.WindowServerId = 1

	s.Insert(id, 7, model.Rect{})
	assert.Equal(t, TransactionId(7), s.LastTxid(id))
}
