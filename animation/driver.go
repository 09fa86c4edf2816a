package animation

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rift/riftwm/model"
	"github.com/rift/riftwm/sys"
)

const (
	frameTimeWindow = 8
	minFPS          = 10.0

	degradeHardThreshold = 33 * time.Millisecond
	degradeSoftThreshold = 20 * time.Millisecond
	recoverHardThreshold = 12 * time.Millisecond
	recoverSoftThreshold = 16 * time.Millisecond

	degradeMultiplier     = 0.75
	softDegradeMultiplier = 0.9
	recoverMultiplier     = 1.1
	softRecoverMultiplier = 1.02
)

// windowAnim tracks one in-flight move/resize, adapting its own update rate
// to the frame times it actually observes (original_source/src/actor/
// reactor/animation.rs's WindowAnim).
type windowAnim struct {
	window model.WindowId

	from, to model.Rect
	easing   Easing
	start    time.Time
	duration time.Duration

	effectiveFPS   float64
	updateInterval time.Duration
	lastUpdate     time.Time
	frameTimes     []time.Duration
}

func newWindowAnim(w model.WindowId, from, to model.Rect, easing Easing, duration time.Duration, fps float64) *windowAnim {
	return &windowAnim{
		window:         w,
		from:           from,
		to:             to,
		easing:         easing,
		start:          time.Now(),
		duration:       duration,
		effectiveFPS:   fps,
		updateInterval: time.Duration(float64(time.Second) / fps),
	}
}

func (a *windowAnim) shouldUpdate(now time.Time) bool {
	return now.Sub(a.lastUpdate) >= a.updateInterval
}

func (a *windowAnim) progress(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

func (a *windowAnim) recordFrameTime(now time.Time) {
	if !a.lastUpdate.IsZero() {
		a.frameTimes = append(a.frameTimes, now.Sub(a.lastUpdate))
		if len(a.frameTimes) > frameTimeWindow {
			a.frameTimes = a.frameTimes[1:]
		}
	}
	a.lastUpdate = now
	a.updatePerformance()
}

// updatePerformance degrades effectiveFPS when recent frame times indicate
// the compositor can't keep up, and recovers it once frame times settle,
// with separate hard/soft thresholds on both sides for hysteresis.
func (a *windowAnim) updatePerformance() {
	if len(a.frameTimes) == 0 {
		return
	}
	var total time.Duration
	for _, d := range a.frameTimes {
		total += d
	}
	avg := total / time.Duration(len(a.frameTimes))

	switch {
	case avg > degradeHardThreshold:
		a.effectiveFPS *= degradeMultiplier
	case avg > degradeSoftThreshold:
		a.effectiveFPS *= softDegradeMultiplier
	case avg < recoverHardThreshold:
		a.effectiveFPS *= recoverMultiplier
	case avg < recoverSoftThreshold:
		a.effectiveFPS *= softRecoverMultiplier
	}

	if a.effectiveFPS < minFPS {
		a.effectiveFPS = minFPS
	}
	a.updateInterval = time.Duration(float64(time.Second) / a.effectiveFPS)
}

// interpolate splits position from size: position follows the eased
// progress across the whole duration, size follows three times the eased
// progress capped at 1, so it finishes once eased progress reaches one
// third and a growing window reaches its target size
// quickly while still sliding into place (spec.md §4.5 "adaptive
// interpolation").
func (a *windowAnim) interpolate(now time.Time) model.Rect {
	raw := a.progress(now)
	eased := a.easing.Apply(raw)
	sizeT := math.Min(1, eased*3)

	return model.Rect{
		X: lerp1(a.from.X, a.to.X, eased),
		Y: lerp1(a.from.Y, a.to.Y, eased),
		W: lerp1(a.from.W, a.to.W, sizeT),
		H: lerp1(a.from.H, a.to.H, sizeT),
	}
}

func lerp1(from, to, t float64) float64 { return from + (to-from)*t }

// HeavyAppDetector classifies an app as "heavy" (expensive to redraw every
// frame) by bundle-id prefix or the presence of a known-heavy framework in
// its executable path, grounded in animation.rs's heavy-app check.
type HeavyAppDetector struct {
	BundleIdPrefixes []string
	FrameworkMarkers []string
}

func DefaultHeavyAppDetector() HeavyAppDetector {
	return HeavyAppDetector{
		BundleIdPrefixes: []string{
			"com.adobe.", "com.microsoft.", "com.jetbrains.", "com.google.Chrome",
		},
		FrameworkMarkers: []string{
			"Electron Framework", "CEF Framework", "QtWebEngineCore",
		},
	}
}

func (d HeavyAppDetector) IsHeavy(bundleId, path string) bool {
	for _, p := range d.BundleIdPrefixes {
		if strings.HasPrefix(bundleId, p) {
			return true
		}
	}
	for _, m := range d.FrameworkMarkers {
		if strings.Contains(path, m) {
			return true
		}
	}
	return false
}

// Driver runs the animation tick loop off a sys.DisplayLink, bracketing
// each batch of frame updates with suspend/resume so the compositor
// commits them together (spec.md §4.5).
type Driver struct {
	mu      sync.Mutex
	link    sys.DisplayLink
	windows map[model.WindowId]*windowAnim
	heavy   HeavyAppDetector
	maxFPS  float64

	OnFrame    func(model.WindowId, model.Rect)
	OnComplete func(model.WindowId)

	// OnBatch, if set, is called once per tick with the number of windows
	// updated in that batch (used to feed the animation batch-size metric).
	OnBatch func(size int)
}

func NewDriver(link sys.DisplayLink, maxFPS float64) *Driver {
	return &Driver{
		link:    link,
		windows: make(map[model.WindowId]*windowAnim),
		heavy:   DefaultHeavyAppDetector(),
		maxFPS:  maxFPS,
	}
}

// fpsFor picks the starting frame rate for a window by its area and app
// weight: heavy apps always animate at 35fps; otherwise large windows are
// capped below the configured maximum, since interpolating a window that
// covers most of the screen every frame is the expensive case regardless
// of the app.
func (d *Driver) fpsFor(bundleId, path string, area float64) float64 {
	if d.heavy.IsHeavy(bundleId, path) {
		return 35
	}
	switch {
	case area > 1_000_000:
		return math.Min(45, d.maxFPS)
	case area > 500_000:
		return math.Min(50, d.maxFPS)
	default:
		return d.maxFPS
	}
}

func (d *Driver) AddWindow(w model.WindowId, from, to model.Rect, bundleId, path string, easing Easing, duration time.Duration) {
	fps := d.fpsFor(bundleId, path, to.Area())
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows[w] = newWindowAnim(w, from, to, easing, duration, fps)
}

// SkipToEnd finishes a window's animation immediately, e.g. when the
// reactor needs to commit a final frame without waiting for the
// interpolation to finish.
func (d *Driver) SkipToEnd(w model.WindowId) {
	d.mu.Lock()
	anim, ok := d.windows[w]
	if ok {
		delete(d.windows, w)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	if d.OnFrame != nil {
		d.OnFrame(w, anim.to)
	}
	if d.OnComplete != nil {
		d.OnComplete(w)
	}
}

func (d *Driver) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.windows)
}

// Run drives the tick loop until ctx is canceled or the link's channel
// closes.
func (d *Driver) Run(ctx context.Context) error {
	ticks, err := d.link.Start(ctx)
	if err != nil {
		return err
	}
	defer d.link.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now, ok := <-ticks:
			if !ok {
				return nil
			}
			d.tick(now)
		}
	}
}

func (d *Driver) tick(now time.Time) {
	d.mu.Lock()
	due := make([]*windowAnim, 0, len(d.windows))
	for _, anim := range d.windows {
		if anim.shouldUpdate(now) {
			due = append(due, anim)
		}
	}
	d.mu.Unlock()
	if len(due) == 0 {
		return
	}
	if d.OnBatch != nil {
		d.OnBatch(len(due))
	}

	_ = d.link.SuspendUpdates()
	var finished []model.WindowId
	for _, anim := range due {
		rect := anim.interpolate(now)
		anim.recordFrameTime(now)
		if d.OnFrame != nil {
			d.OnFrame(anim.window, rect)
		}
		if anim.progress(now) >= 1 {
			finished = append(finished, anim.window)
		}
	}
	_ = d.link.ResumeUpdates()

	if len(finished) > 0 {
		d.mu.Lock()
		for _, w := range finished {
			delete(d.windows, w)
		}
		d.mu.Unlock()
		for _, w := range finished {
			if d.OnComplete != nil {
				d.OnComplete(w)
			}
		}
	}
}
