package station

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Snapshot is the server's most recent inference result for one
// {camera, module} pair. It is a read-only reflection of server state,
// replaced wholesale on each detection tick.
type Snapshot struct {
	// Flags maps wire class names to presence, e.g. "Casco" -> true.
	Flags map[string]bool
	// AreaOccupied maps restricted-area slots to occupancy.
	AreaOccupied map[AreaSlot]bool
	// At is when the snapshot was taken.
	At time.Time
}

// SnapshotStore caches detection snapshots keyed by camera and module.
// Entries expire after one polling interval: a snapshot is never
// authoritative for longer than that, so a stale entry simply vanishes
// instead of being served.
type SnapshotStore struct {
	cache *gocache.Cache
}

// NewSnapshotStore creates a store whose entries live for one detection
// polling interval.
func NewSnapshotStore(pollInterval time.Duration) *SnapshotStore {
	return &SnapshotStore{
		cache: gocache.New(pollInterval, 2*pollInterval),
	}
}

func snapshotKey(camera int, module Module) string {
	return fmt.Sprintf("%d/%s", camera, module)
}

// Set stores the latest snapshot for a camera and module.
func (s *SnapshotStore) Set(camera int, module Module, snap Snapshot) {
	s.cache.SetDefault(snapshotKey(camera, module), snap)
}

// Get returns the current snapshot for a camera and module, if one is
// still live.
func (s *SnapshotStore) Get(camera int, module Module) (Snapshot, bool) {
	v, ok := s.cache.Get(snapshotKey(camera, module))
	if !ok {
		return Snapshot{}, false
	}
	return v.(Snapshot), true
}
