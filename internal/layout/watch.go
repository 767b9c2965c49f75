package layout

import (
	"context"
	"sync"

	"github.com/hnrobert/lumdash/internal/authstate"
)

// Watch keeps a live dashboard in step with src. render, when non-nil, is
// called with the initial view and then with every view that differs from
// the previous one. nav receives LoginPath once per transition into
// ViewUnauthenticated, including on the initial evaluation.
//
// The watch ends when ctx is done or stop is called. No callback runs once
// stop has returned. Callbacks must not call stop themselves.
func Watch(ctx context.Context, src authstate.Source, nav Navigator, render func(View)) (stop func()) {
	w := &watcher{src: src, nav: nav, render: render, done: make(chan struct{})}

	cancel := src.Subscribe(func(authstate.State) { w.evaluate() })
	w.evaluate()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			w.mu.Lock()
			w.stopped = true
			w.mu.Unlock()
			cancel()
			close(w.done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-w.done:
		}
	}()
	return stop
}

type watcher struct {
	src    authstate.Source
	nav    Navigator
	render func(View)
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	seen    bool
	last    View
}

// evaluate always reads the source's current state, so notifications that
// arrive out of order cannot roll the view back.
func (w *watcher) evaluate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	v := Classify(w.src.State())
	if w.seen && v.Equal(w.last) {
		return
	}
	entered := v.Tag == ViewUnauthenticated && (!w.seen || w.last.Tag != ViewUnauthenticated)
	w.seen = true
	w.last = v

	if w.render != nil {
		w.render(v)
	}
	if entered && w.nav != nil {
		w.nav.NavigateTo(LoginPath)
	}
}
