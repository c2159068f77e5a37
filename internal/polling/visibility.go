package polling

import "sync"

// Visibility reports whether the page driving a Driver is currently shown and
// notifies subscribers when that changes.
type Visibility interface {
	Visible() bool
	Subscribe(fn func(visible bool)) (unsubscribe func())
}

type alwaysVisible struct{}

func (alwaysVisible) Visible() bool                             { return true }
func (alwaysVisible) Subscribe(func(bool)) (unsubscribe func()) { return func() {} }

// VisibilityState is a settable Visibility. The HTTP layer feeds it from the
// frontend's visibilitychange events.
type VisibilityState struct {
	mu      sync.Mutex
	visible bool
	subs    map[int]func(bool)
	nextID  int
}

func NewVisibilityState(visible bool) *VisibilityState {
	return &VisibilityState{
		visible: visible,
		subs:    make(map[int]func(bool)),
	}
}

func (v *VisibilityState) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// SetVisible records the new state and notifies subscribers if it changed.
func (v *VisibilityState) SetVisible(visible bool) {
	v.mu.Lock()
	if v.visible == visible {
		v.mu.Unlock()
		return
	}
	v.visible = visible
	fns := make([]func(bool), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(visible)
	}
}

func (v *VisibilityState) Subscribe(fn func(visible bool)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
