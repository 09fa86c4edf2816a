package model

// ScreenInfo describes one physical display and the OS space currently
// shown on it. A nil Space means the screen is disabled: no windows on it
// are managed (spec.md §3 "Screen/Space map").
type ScreenInfo struct {
	Frame Rect
	Space *SpaceId
}

func (s ScreenInfo) Disabled() bool { return s.Space == nil }

// BestScreenForWindow implements spec.md §4.1 "Best-space-for-window": the
// window belongs to the screen whose rectangle maximally overlaps the
// window rectangle, ties broken by lowest screen index. Zero-overlap falls
// back to lastScreen if it's still valid, else the primary (index 0)
// screen. Returns -1 when screens is empty or every screen is disabled.
func BestScreenForWindow(frame Rect, screens []ScreenInfo, lastScreen int) int {
	if len(screens) == 0 {
		return -1
	}
	best := -1
	bestArea := 0.0
	for i, sc := range screens {
		if sc.Disabled() {
			continue
		}
		area := frame.Intersection(sc.Frame).Area()
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	if lastScreen >= 0 && lastScreen < len(screens) && !screens[lastScreen].Disabled() {
		return lastScreen
	}
	for i, sc := range screens {
		if !sc.Disabled() {
			return i
		}
	}
	return -1
}
