// Package authstate describes who, if anyone, is signed in, and lets
// consumers observe that answer change.
package authstate

import (
	"context"

	"github.com/hnrobert/lumdash/internal/users"
)

// State is the read-only AuthState record. Loading means the answer is not
// known yet; User is then meaningless.
type State struct {
	User    *users.User
	Loading bool
}

func Loading() State { return State{Loading: true} }

func Anonymous() State { return State{} }

func SignedIn(u users.User) State { return State{User: &u} }

// Equal compares by loading flag and user identity.
func (s State) Equal(o State) bool {
	if s.Loading != o.Loading {
		return false
	}
	if (s.User == nil) != (o.User == nil) {
		return false
	}
	return s.User == nil || *s.User == *o.User
}

// Source supplies the current state and notifies on changes. Subscribe
// callbacks receive the new state; cancel stops further calls.
type Source interface {
	State() State
	Subscribe(fn func(State)) (cancel func())
}

type ctxKey struct{}

func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the state stored by WithState. A context without one
// reads as anonymous.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(ctxKey{}).(State); ok {
		return s
	}
	return Anonymous()
}
