package persist

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultWriteDebounce = 750 * time.Millisecond

// DebouncedWriter coalesces rapid-fire snapshot requests into one write per
// quiet period, mirroring cortile's Tracker.ScheduleWrite /
// flushScheduledWrite pair: many reactor events can mark the snapshot dirty
// within milliseconds of each other (a drag, a sequence of focus moves) and
// each shouldn't cost a disk write of its own.
type DebouncedWriter struct {
	debounce time.Duration
	build    func() Snapshot
	path     string
	log      *logrus.Entry

	mu      sync.Mutex
	due     bool
	dueAt   time.Time
	timer   *time.Timer
}

func NewDebouncedWriter(path string, build func() Snapshot, log *logrus.Logger) *DebouncedWriter {
	if log == nil {
		log = logrus.New()
	}
	return &DebouncedWriter{
		debounce: defaultWriteDebounce,
		build:    build,
		path:     path,
		log:      log.WithField("component", "persist"),
	}
}

// Schedule marks the snapshot dirty and arranges for a write to happen
// after the debounce window, unless one is already scheduled sooner.
func (d *DebouncedWriter) Schedule() {
	deadline := time.Now().Add(d.debounce)

	d.mu.Lock()
	if !d.due || deadline.Before(d.dueAt) {
		d.dueAt = deadline
	}
	d.due = true

	delay := time.Until(d.dueAt)
	if delay < 0 {
		delay = 0
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, d.flush)
	d.mu.Unlock()
}

func (d *DebouncedWriter) flush() {
	d.mu.Lock()
	if !d.due {
		d.mu.Unlock()
		return
	}
	d.due = false
	d.mu.Unlock()

	snap := d.build()
	if err := AtomicWriteJSON(d.path, snap); err != nil {
		d.log.WithError(err).Warn("snapshot write failed")
		return
	}
	d.log.WithField("path", d.path).Debug("snapshot written")
}

// Flush forces an immediate write, bypassing the debounce window, and
// reports whether it succeeded (used on clean shutdown so
// reactor-save-and-exit never loses the last change and can report exit
// code 3 on a failed save, per spec.md §6).
func (d *DebouncedWriter) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.due = false
	d.mu.Unlock()

	snap := d.build()
	if err := AtomicWriteJSON(d.path, snap); err != nil {
		d.log.WithError(err).Warn("snapshot flush failed")
		return err
	}
	return nil
}
