package layout

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/hnrobert/lumdash/internal/users"
)

// Chrome is the per-page data for the shell around the children.
type Chrome struct {
	Title string
	// FooterNotice is markdown shown in the footer.
	FooterNotice string
	// Active is the request path, used to highlight the current nav item.
	Active string
}

type NavItem struct {
	Label  string
	URL    string
	Active bool
}

func navItems(u users.User, active string) []NavItem {
	items := []NavItem{
		{Label: "Overview", URL: "/"},
		{Label: "Profile", URL: "/profile"},
	}
	if u.Admin {
		items = append(items, NavItem{Label: "Admin", URL: "/admin"})
	}
	for i := range items {
		items[i].Active = items[i].URL == active
	}
	return items
}

// RenderMarkdown converts markdown to HTML. goldmark escapes raw HTML by
// default, so the result is safe to inject.
func RenderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return template.HTML(buf.String())
}
