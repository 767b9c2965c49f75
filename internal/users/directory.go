package users

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/hnrobert/lumdash/internal/datafs"
	"github.com/hnrobert/lumdash/internal/logger"
)

type Directory struct {
	path string

	mu        sync.RWMutex
	snap      *snapshot
	listeners map[int]func()
	nextID    int
}

func NewDirectory(path string) *Directory {
	return &Directory{path: path}
}

func (d *Directory) Path() string { return d.path }

// Ensure creates an empty directory file when none exists.
func (d *Directory) Ensure() error {
	if _, err := os.Stat(d.path); err == nil || !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return datafs.WriteFileAtomic(d.path, []byte("users: []\n"), 0o600)
}

// Load reads the file and swaps in the new snapshot. On error the previous
// snapshot (if any) stays in place. A missing file reads as an empty
// directory only for the first load; once entries are loaded it is an error.
func (d *Directory) Load(ctx context.Context) error {
	b, err := datafs.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || d.Ready() {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := parse(b)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.snap = snap
	listeners := d.listenersLocked()
	d.mu.Unlock()

	logger.Info("users: loaded %d entries from %s", len(snap.order), d.path)
	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Start loads the directory in the background. done, when non-nil, receives
// the load result.
func (d *Directory) Start(ctx context.Context, done chan<- error) {
	go func() {
		err := d.Load(ctx)
		if err != nil {
			logger.Error("users: initial load of %s failed: %v", d.path, err)
		}
		if done != nil {
			done <- err
		}
	}()
}

func (d *Directory) Reload(ctx context.Context) error {
	if err := d.Load(ctx); err != nil {
		logger.Warn("users: reload of %s failed, keeping previous entries: %v", d.path, err)
		return err
	}
	return nil
}

func (d *Directory) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap != nil
}

// OnChange registers fn to run after every successful load. The returned
// func removes it.
func (d *Directory) OnChange(fn func()) (cancel func()) {
	d.mu.Lock()
	if d.listeners == nil {
		d.listeners = map[int]func(){}
	}
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// listenersLocked returns the registered listeners in registration order.
func (d *Directory) listenersLocked() []func() {
	ids := make([]int, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(), 0, len(ids))
	for _, id := range ids {
		out = append(out, d.listeners[id])
	}
	return out
}

func (d *Directory) Lookup(id string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return User{}, false
	}
	u, ok := d.snap.byID[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

func (d *Directory) FindByName(name string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return User{}, ErrNotReady
	}
	u, ok := d.snap.byName[name]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return nil
	}
	out := make([]User, 0, len(d.snap.order))
	for _, u := range d.snap.order {
		out = append(out, *u)
	}
	return out
}
