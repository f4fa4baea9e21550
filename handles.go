package pacing

import (
	"fmt"
	"sync"
)

// Handle identifies a Governor or Timer owned by a Registry.
// The zero Handle is never issued.
type Handle uint64

// Kind tags what a Handle refers to.
type Kind uint8

const (
	KindGovernor Kind = iota + 1
	KindTimer
)

func (k Kind) String() string {
	switch k {
	case KindGovernor:
		return "governor"
	case KindTimer:
		return "timer"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// entry pairs a component with the lock that serialises its use.
// Only one of gov and timer is set, as named by kind.
type entry struct {
	mu    sync.Mutex
	kind  Kind
	gov   *Governor
	timer *Timer
}

// Registry owns governors and timers on behalf of callers that can only
// hold opaque handles. Each handle is released explicitly, exactly once;
// further releases are no-ops and further operations fail with
// ErrInvalidHandle.
//
// Operations on different handles proceed independently. Operations on
// one handle are serialised, so a Wait blocks other calls on that handle
// only.
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*entry
	opts    []Option
}

// NewRegistry creates an empty registry. opts apply to every component it
// creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		entries: make(map[Handle]*entry),
		opts:    opts,
	}
}

func (r *Registry) add(e *entry) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.entries[r.next] = e
	return r.next
}

// lookup returns the entry for h if it exists and has kind want.
// want == 0 accepts either kind.
func (r *Registry) lookup(h Handle, want Kind) (*entry, error) {
	r.mu.Lock()
	e, ok := r.entries[h]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if want != 0 && e.kind != want {
		return nil, fmt.Errorf("%w: handle %d is a %s, not a %s", ErrWrongKind, h, e.kind, want)
	}
	return e, nil
}

// NewGovernor creates a governor and returns its handle.
func (r *Registry) NewGovernor(cfg GovernorConfig) (Handle, error) {
	g, err := NewGovernor(cfg, r.opts...)
	if err != nil {
		return 0, err
	}
	return r.add(&entry{kind: KindGovernor, gov: g}), nil
}

// NewTimer creates a timer and returns its handle.
func (r *Registry) NewTimer(interval float64, mode RearmMode) (Handle, error) {
	t, err := NewTimer(interval, mode, r.opts...)
	if err != nil {
		return 0, err
	}
	return r.add(&entry{kind: KindTimer, timer: t}), nil
}

// Wait calls Governor.Wait on h.
func (r *Registry) Wait(h Handle) (bool, error) {
	e, err := r.lookup(h, KindGovernor)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gov.Wait(), nil
}

// Check calls Timer.Check on h.
func (r *Registry) Check(h Handle) (bool, error) {
	e, err := r.lookup(h, KindTimer)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer.Check(), nil
}

// Enable enables the governor or timer behind h.
func (r *Registry) Enable(h Handle) error {
	e, err := r.lookup(h, 0)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.kind {
	case KindGovernor:
		e.gov.Enable()
	case KindTimer:
		e.timer.Enable()
	}
	return nil
}

// Disable disables the governor or timer behind h.
func (r *Registry) Disable(h Handle) error {
	e, err := r.lookup(h, 0)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.kind {
	case KindGovernor:
		e.gov.Disable()
	case KindTimer:
		e.timer.Disable()
	}
	return nil
}

// Kind returns the kind of h.
func (r *Registry) Kind(h Handle) (Kind, error) {
	e, err := r.lookup(h, 0)
	if err != nil {
		return 0, err
	}
	return e.kind, nil
}

// Release forgets h. Releasing an unknown or already released handle
// does nothing.
func (r *Registry) Release(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, h)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Global registry (optional convenience)
var defaultRegistry = NewRegistry()

// CreateGovernor creates a governor in the default registry.
func CreateGovernor(cfg GovernorConfig) (Handle, error) {
	return defaultRegistry.NewGovernor(cfg)
}

// CreateTimer creates a timer in the default registry.
func CreateTimer(interval float64, mode RearmMode) (Handle, error) {
	return defaultRegistry.NewTimer(interval, mode)
}

// Wait calls Registry.Wait on the default registry.
func Wait(h Handle) (bool, error) { return defaultRegistry.Wait(h) }

// Check calls Registry.Check on the default registry.
func Check(h Handle) (bool, error) { return defaultRegistry.Check(h) }

// Enable calls Registry.Enable on the default registry.
func Enable(h Handle) error { return defaultRegistry.Enable(h) }

// Disable calls Registry.Disable on the default registry.
func Disable(h Handle) error { return defaultRegistry.Disable(h) }

// Release calls Registry.Release on the default registry.
func Release(h Handle) { defaultRegistry.Release(h) }
