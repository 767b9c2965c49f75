package authstate

import (
	"sync"

	"github.com/hnrobert/lumdash/internal/users"
)

// Directory is what a Tracker needs from the user directory.
type Directory interface {
	Ready() bool
	Lookup(id string) (users.User, bool)
	OnChange(fn func()) (cancel func())
}

// Resolve derives the state for subject (a token's user id, "" when there is
// no valid token) from the directory as it is right now.
func Resolve(dir Directory, subject string) State {
	if !dir.Ready() {
		return Loading()
	}
	if subject == "" {
		return Anonymous()
	}
	u, ok := dir.Lookup(subject)
	if !ok {
		return Anonymous()
	}
	return SignedIn(u)
}

// Tracker is a Source for one session. It re-resolves whenever the directory
// finishes loading or reloads, so a user removed from the file becomes
// anonymous without a new request.
type Tracker struct {
	v      *Var
	cancel func()
	once   sync.Once
}

func NewTracker(dir Directory, subject string) *Tracker {
	t := &Tracker{v: NewVar(Resolve(dir, subject))}
	t.cancel = dir.OnChange(func() {
		t.v.Set(Resolve(dir, subject))
	})
	// Covers a load that completed between the first Resolve and OnChange.
	t.v.Set(Resolve(dir, subject))
	return t
}

func (t *Tracker) State() State { return t.v.State() }

func (t *Tracker) Subscribe(fn func(State)) (cancel func()) { return t.v.Subscribe(fn) }

// Close detaches the tracker from the directory.
func (t *Tracker) Close() {
	t.once.Do(t.cancel)
}
