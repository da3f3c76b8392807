package station

import (
	"github.com/acesco/vigia/internal/api"
)

// minGestureDim is the minimum rectangle dimension in feed pixels. A
// release where either dimension is at or below this is treated as an
// accidental click and discarded without a request.
const minGestureDim = 10

// Rect is a rectangle in feed-local pixel space, normalized so that
// X1<=X2 and Y1<=Y2.
type Rect struct {
	X1, Y1, X2, Y2 int
}

// normalizeRect builds a Rect from two arbitrary corner points. It is
// idempotent: drawing the same gesture in either direction yields the
// same rectangle.
func normalizeRect(x1, y1, x2, y2 int) Rect {
	return Rect{
		X1: min(x1, x2),
		Y1: min(y1, y2),
		X2: max(x1, x2),
		Y2: max(y1, y2),
	}
}

// abs for gesture deltas.
func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// areaOverlay owns the persisted restricted-area rectangles of the
// active camera and the transient rectangle of an in-progress drawing
// gesture. The persisted set is a cache of server state: every accepted
// mutation ends with a refetch, and switching cameras discards it.
// Callers hold the controller lock.
type areaOverlay struct {
	persisted []api.Area

	drawing        bool
	startX, startY int
	transient      *Rect
}

// press starts a drawing gesture at the given feed-local point. A press
// while already drawing restarts the gesture.
func (o *areaOverlay) press(x, y int) {
	o.drawing = true
	o.startX, o.startY = x, y
	o.transient = nil
}

// move recomputes the transient rectangle toward the current point.
// Returns false when no gesture is in progress.
func (o *areaOverlay) move(x, y int) (Rect, bool) {
	if !o.drawing {
		return Rect{}, false
	}
	r := normalizeRect(o.startX, o.startY, x, y)
	o.transient = &r
	return r, true
}

// release ends the gesture. The returned bool reports whether the
// resulting rectangle is large enough to commit; undersized gestures are
// discarded and leave no transient rectangle behind.
func (o *areaOverlay) release(x, y int) (Rect, bool) {
	if !o.drawing {
		return Rect{}, false
	}
	o.drawing = false
	o.transient = nil

	if abs(x-o.startX) <= minGestureDim || abs(y-o.startY) <= minGestureDim {
		return Rect{}, false
	}
	return normalizeRect(o.startX, o.startY, x, y), true
}

// replace installs a freshly fetched authoritative area set.
func (o *areaOverlay) replace(areas []api.Area) {
	o.persisted = areas
}

// reset discards everything, persisted and transient.
func (o *areaOverlay) reset() {
	o.persisted = nil
	o.transient = nil
	o.drawing = false
}

// areas returns a copy of the persisted set.
func (o *areaOverlay) areas() []api.Area {
	out := make([]api.Area, len(o.persisted))
	copy(out, o.persisted)
	return out
}
