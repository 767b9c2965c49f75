package layout

import (
	"github.com/hnrobert/lumdash/internal/authstate"
	"github.com/hnrobert/lumdash/internal/users"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

type Tag int

const (
	ViewLoading Tag = iota
	ViewUnauthenticated
	ViewAuthenticated
)

func (t Tag) String() string {
	switch t {
	case ViewLoading:
		return "loading"
	case ViewUnauthenticated:
		return "unauthenticated"
	case ViewAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// View is the tagged result of classifying an auth state. User is set only
// for ViewAuthenticated.
type View struct {
	Tag  Tag
	User users.User
}

func (v View) Equal(o View) bool {
	return v.Tag == o.Tag && v.User == o.User
}

// Classify maps (loading, user) to a view. Loading wins over any user value.
func Classify(s authstate.State) View {
	switch {
	case s.Loading:
		return View{Tag: ViewLoading}
	case s.User == nil:
		return View{Tag: ViewUnauthenticated}
	default:
		return View{Tag: ViewAuthenticated, User: *s.User}
	}
}

// Navigator performs navigations requested by the layout.
type Navigator interface {
	NavigateTo(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }
