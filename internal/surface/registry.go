package surface

import (
	"sync"

	"github.com/ludolib/notica/internal/geometry"
)

// DefaultViewport is used until the host UI reports its real dimensions.
var DefaultViewport = geometry.Viewport{Width: 1920, Height: 1080}

// Handle identifies an open surface registered with a Registry.
type Handle int64

// Registry is the concrete Observer for notica: the host UI reports every
// overlay it opens and closes, and subscribers receive a fresh snapshot on
// each mutation. This replaces ambient environment scanning with an
// explicit contract the composition root owns.
type Registry struct {
	mu       sync.RWMutex
	next     Handle
	surfaces map[Handle]Surface
	viewport geometry.Viewport

	subID       int
	subscribers map[int]func(Snapshot)
}

// NewRegistry creates an empty surface registry with the default viewport.
func NewRegistry() *Registry {
	return &Registry{
		surfaces:    make(map[Handle]Surface),
		viewport:    DefaultViewport,
		subscribers: make(map[int]func(Snapshot)),
	}
}

// SetViewport updates the viewport dimensions and notifies subscribers.
// Zero or negative dimensions are ignored.
func (r *Registry) SetViewport(vp geometry.Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}

	r.mu.Lock()
	r.viewport = vp
	r.mu.Unlock()

	r.notify()
}

// Open registers a surface as open and returns its handle.
func (r *Registry) Open(s Surface) Handle {
	r.mu.Lock()
	r.next++
	h := r.next
	r.surfaces[h] = s
	r.mu.Unlock()

	r.notify()
	return h
}

// Update replaces the surface for an open handle, e.g. after a drawer
// resize. Unknown handles are a no-op.
func (r *Registry) Update(h Handle, s Surface) {
	r.mu.Lock()
	if _, ok := r.surfaces[h]; !ok {
		r.mu.Unlock()
		return
	}
	r.surfaces[h] = s
	r.mu.Unlock()

	r.notify()
}

// Close removes an open surface. Unknown handles are a no-op.
func (r *Registry) Close(h Handle) {
	r.mu.Lock()
	if _, ok := r.surfaces[h]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.surfaces, h)
	r.mu.Unlock()

	r.notify()
}

// OpenCount returns the number of currently open surfaces.
func (r *Registry) OpenCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}

// Snapshot returns the current observed state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	surfaces := make([]Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		surfaces = append(surfaces, s)
	}
	return Snapshot{Surfaces: surfaces, Viewport: r.viewport}
}

// Subscribe registers a callback invoked with a fresh snapshot on every
// mutation. The returned cancel func removes the subscription and is safe
// to call multiple times.
func (r *Registry) Subscribe(fn func(Snapshot)) (cancel func()) {
	r.mu.Lock()
	r.subID++
	id := r.subID
	r.subscribers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}
}

// notify delivers the current snapshot to all subscribers. Callbacks run
// outside the lock so they may call back into the registry.
func (r *Registry) notify() {
	r.mu.RLock()
	snap := Snapshot{
		Surfaces: make([]Surface, 0, len(r.surfaces)),
		Viewport: r.viewport,
	}
	for _, s := range r.surfaces {
		snap.Surfaces = append(snap.Surfaces, s)
	}
	fns := make([]func(Snapshot), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}
