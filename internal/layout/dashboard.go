package layout

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/hnrobert/lumdash/internal/authstate"
	"github.com/hnrobert/lumdash/internal/logger"
	"github.com/hnrobert/lumdash/internal/users"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const defaultTitle = "lumdash"

type documentData struct {
	Title   string
	Loading bool
	User    users.User
	Nav     []NavItem
	Notice  template.HTML
	Content template.HTML
}

// Dashboard is one mounted instance of the dashboard layout. It remembers the
// last view it rendered so the login redirect fires once per transition.
type Dashboard struct {
	nav    Navigator
	chrome Chrome

	mu       sync.Mutex
	rendered bool
	last     Tag
	closed   bool
}

func New(nav Navigator, chrome Chrome) *Dashboard {
	if chrome.Title == "" {
		chrome.Title = defaultTitle
	}
	return &Dashboard{nav: nav, chrome: chrome}
}

// Render writes the view for s to w and returns it. Children are rendered
// only for the authenticated view; for the unauthenticated view nothing is
// written and the navigation effect runs once the (empty) render is done.
func (d *Dashboard) Render(w io.Writer, s authstate.State, children Slot) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := Classify(s)
	if err := d.write(w, v, children); err != nil {
		return v, err
	}
	d.commit(v)
	return v, nil
}

// Close unmounts the instance. Later renders still write output but never
// navigate.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

func (d *Dashboard) write(w io.Writer, v View, children Slot) error {
	data := documentData{Title: d.chrome.Title}
	switch v.Tag {
	case ViewUnauthenticated:
		return nil
	case ViewLoading:
		data.Loading = true
	case ViewAuthenticated:
		var content bytes.Buffer
		if children != nil {
			if err := children.Render(&content); err != nil {
				return err
			}
		}
		data.User = v.User
		data.Nav = navItems(v.User, d.chrome.Active)
		data.Notice = RenderMarkdown(d.chrome.FooterNotice)
		data.Content = template.HTML(content.String())
	}

	// Buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "document", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// commit records v and runs the redirect effect when v enters Unauthenticated.
func (d *Dashboard) commit(v View) {
	entered := v.Tag == ViewUnauthenticated && (!d.rendered || d.last != ViewUnauthenticated)
	d.rendered = true
	d.last = v.Tag
	if !entered || d.closed || d.nav == nil {
		return
	}
	logger.Debug("layout: unauthenticated, navigating to %s", LoginPath)
	d.nav.NavigateTo(LoginPath)
}
