// Package txstore implements the per-window transaction table that lets the
// reactor tell its own window moves apart from user- or system-initiated
// ones (spec.md §4.4). It is the one piece of state actually shared between
// the reactor goroutine and the app actor goroutines, so every operation is
// either a single atomic or protected by a per-entry mutex; nothing here
// ever blocks on a system call.
package txstore

import (
	"sync"
	"time"

	"github.com/rift/riftwm/model"
)

// TransactionId is a per-window monotonic counter that wraps like a u32.
type TransactionId uint32

const settlingCooldown = 100 * time.Millisecond

type record struct {
	mu        sync.Mutex
	txid      TransactionId
	target    model.Rect
	hasTarget bool
	settledAt time.Time
}

// Store is a thread-safe table WindowServerId -> {txid, target}. Readers
// (app actors) and the single writer (reactor) both hold only a reference
// to the Store; there is no global lock.
type Store struct {
	mu      sync.RWMutex
	entries map[model.WindowServerId]*record
}

func New() *Store {
	return &Store{entries: make(map[model.WindowServerId]*record)}
}

func (s *Store) entry(id model.WindowServerId) *record {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e
	}
	e = &record{}
	s.entries[id] = e
	return e
}

// NextTxid atomically increments and returns the new transaction id for a
// window, wrapping at the u32 boundary.
func (s *Store) NextTxid(id model.WindowServerId) TransactionId {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.txid++
	return e.txid
}

// Insert records the txid of a reactor-initiated move along with its target
// rect, so a later echo can be checked for completion.
func (s *Store) Insert(id model.WindowServerId, txid TransactionId, target model.Rect) {
	e := s.entry(id)
	e.mu.Lock()
	e.txid = txid
	e.target = target
	e.hasTarget = true
	e.mu.Unlock()
}

// ClearTarget drops the outstanding target once the echo matching it has
// been observed, and starts the settling cooldown.
func (s *Store) ClearTarget(id model.WindowServerId) {
	e := s.entry(id)
	e.mu.Lock()
	e.hasTarget = false
	e.target = model.Rect{}
	e.settledAt = time.Now()
	e.mu.Unlock()
}

// Remove deletes the window entirely, used when the window is destroyed.
func (s *Store) Remove(id model.WindowServerId) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

type Record struct {
	Txid      TransactionId
	Target    model.Rect
	HasTarget bool
}

// Get returns a snapshot of the current record for id.
func (s *Store) Get(id model.WindowServerId) Record {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return Record{Txid: e.txid, Target: e.target, HasTarget: e.hasTarget}
}

func (s *Store) LastTxid(id model.WindowServerId) TransactionId {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txid
}

// IsSettling reports whether id is still within its post-clear cooldown,
// during which late OS notifications should not be misattributed to the
// user.
func (s *Store) IsSettling(id model.WindowServerId) bool {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasTarget || e.settledAt.IsZero() {
		return false
	}
	return time.Since(e.settledAt) < settlingCooldown
}
