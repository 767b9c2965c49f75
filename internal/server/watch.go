package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hnrobert/lumdash/internal/authstate"
	"github.com/hnrobert/lumdash/internal/layout"
	"github.com/hnrobert/lumdash/internal/logger"
)

const watchHeartbeat = 25 * time.Second

type sseEvent struct {
	name string
	data string
}

// eventQueue collects events from watch callbacks so only the handler
// goroutine writes to the response.
type eventQueue struct {
	mu     sync.Mutex
	events []sseEvent
	ready  chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(e sseEvent) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *eventQueue) drain() []sseEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// handleWatch streams the dashboard view for the caller's session as
// server-sent events. A "navigate" event is sent once per transition into
// the unauthenticated view; clients follow it to the login page.
func (a *App) handleWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	tr := authstate.NewTracker(a.dir, subjectFrom(r))
	defer tr.Close()

	q := newEventQueue()
	stop := layout.Watch(r.Context(), tr,
		layout.NavigatorFunc(func(path string) { q.push(sseEvent{name: "navigate", data: path}) }),
		func(v layout.View) { q.push(sseEvent{name: "view", data: v.Tag.String()}) },
	)
	defer stop()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(watchHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-q.ready:
			for _, e := range q.drain() {
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.name, e.data); err != nil {
					logger.Debug("watch: client gone: %v", err)
					return
				}
			}
			flusher.Flush()
		}
	}
}
