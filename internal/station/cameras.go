package station

import "slices"

const (
	// maxCameras is the camera slot limit of the station.
	maxCameras = 4
	// fallbackCamera always exists and is selected after a disarm or
	// after the selected camera is removed.
	fallbackCamera = 1
	// thermalCamera is the fixed physical slot the Temperature module is
	// bound to.
	thermalCamera = 2
)

// cameraRegistry tracks the live camera slots and the current selection.
// Callers hold the controller lock.
type cameraRegistry struct {
	ids     []int
	current int
}

// newCameraRegistry starts with the two built-in station cameras: the
// operations camera (1) and the thermal camera (2).
func newCameraRegistry() *cameraRegistry {
	return &cameraRegistry{
		ids:     []int{fallbackCamera, thermalCamera},
		current: fallbackCamera,
	}
}

func (r *cameraRegistry) count() int {
	return len(r.ids)
}

func (r *cameraRegistry) has(id int) bool {
	return slices.Contains(r.ids, id)
}

// nextID is assigned as current count + 1.
func (r *cameraRegistry) nextID() int {
	return len(r.ids) + 1
}

func (r *cameraRegistry) add(id int) {
	r.ids = append(r.ids, id)
}

// remove drops a camera slot and falls back to camera 1 if the removed
// camera was selected.
func (r *cameraRegistry) remove(id int) {
	r.ids = slices.DeleteFunc(r.ids, func(v int) bool { return v == id })
	if r.current == id {
		r.current = fallbackCamera
	}
}

// cameras returns a copy of the live slot ids.
func (r *cameraRegistry) cameras() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}
