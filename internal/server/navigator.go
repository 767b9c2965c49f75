package server

import "net/http"

// httpNavigator turns a layout navigation into a 303 with an empty body.
// Only the first navigation of a request is written.
type httpNavigator struct {
	w       http.ResponseWriter
	written bool
}

func (n *httpNavigator) NavigateTo(path string) {
	if n.written {
		return
	}
	n.written = true
	h := n.w.Header()
	h.Del("Content-Type")
	h.Set("Location", path)
	n.w.WriteHeader(http.StatusSeeOther)
}
