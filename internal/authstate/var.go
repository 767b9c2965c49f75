package authstate

import (
	"sort"
	"sync"
)

// Var is a Source holding a state set by its owner.
type Var struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func NewVar(initial State) *Var {
	return &Var{state: initial, subs: map[int]func(State){}}
}

func (v *Var) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Set stores s and notifies subscribers when it differs from the current state.
func (v *Var) Set(s State) {
	v.mu.Lock()
	if v.state.Equal(s) {
		v.mu.Unlock()
		return
	}
	v.state = s
	fns := v.snapshotLocked()
	v.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (v *Var) Subscribe(fn func(State)) (cancel func()) {
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

func (v *Var) snapshotLocked() []func(State) {
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		out = append(out, v.subs[id])
	}
	return out
}

// Static is a Source that never changes.
type Static State

func (s Static) State() State { return State(s) }

func (s Static) Subscribe(func(State)) (cancel func()) { return func() {} }
