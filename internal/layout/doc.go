// Package layout renders the authenticated dashboard section.
//
// A Dashboard is mounted once per page (or per live watch) and rendered with
// the current auth state. Each render produces exactly one of three views:
//
//	Loading          centered placeholder, no side effect
//	Unauthenticated  nothing, then a navigation to LoginPath
//	Authenticated    navbar, children inside a growable main, footer
//
// The navigation is an effect. It runs after the render has been written and
// only on a transition into Unauthenticated, never while loading.
package layout
