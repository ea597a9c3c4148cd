package playback

import "sync"

type occupant struct {
	backend Backend
	evicted func()
}

// MountTable tracks which backend occupies each mount point (the IPC socket path).
// At most one backend lives at a mount point; attaching a new one destroys the old.
type MountTable struct {
	mu        sync.Mutex
	occupants map[string]occupant
}

// NewMountTable returns an empty table.
func NewMountTable() *MountTable {
	return &MountTable{occupants: make(map[string]occupant)}
}

// DefaultMounts is shared by controllers that don't bring their own table.
var DefaultMounts = NewMountTable()

// Evict destroys whatever occupies point. Call it before creating a backend there.
func (t *MountTable) Evict(point string) {
	t.mu.Lock()
	prev, ok := t.occupants[point]
	delete(t.occupants, point)
	t.mu.Unlock()

	if ok {
		prev.destroy()
	}
}

// Attach records b at point, destroying any different previous occupant. evicted, if
// not nil, runs when b is later pushed out by Evict or another Attach, before b is
// destroyed. It is not called for Release.
func (t *MountTable) Attach(point string, b Backend, evicted func()) {
	t.mu.Lock()
	prev, ok := t.occupants[point]
	t.occupants[point] = occupant{backend: b, evicted: evicted}
	t.mu.Unlock()

	if ok && prev.backend != b {
		prev.destroy()
	}
}

// Release forgets b at point if it is still the occupant.
func (t *MountTable) Release(point string, b Backend) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.occupants[point].backend == b {
		delete(t.occupants, point)
	}
}

// Occupant returns the backend at point, or nil.
func (t *MountTable) Occupant(point string) Backend {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.occupants[point].backend
}

func (o occupant) destroy() {
	if o.evicted != nil {
		o.evicted()
	}
	_ = o.backend.Destroy()
}
