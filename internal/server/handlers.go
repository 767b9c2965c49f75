package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hnrobert/lumdash/internal/auth"
	"github.com/hnrobert/lumdash/internal/authstate"
	"github.com/hnrobert/lumdash/internal/config"
	"github.com/hnrobert/lumdash/internal/layout"
	"github.com/hnrobert/lumdash/internal/logger"
	"github.com/hnrobert/lumdash/internal/users"
)

type loginData struct {
	Title    string
	Username string
	Flash    string
}

// pageData is handed to the page templates rendered inside the layout.
type pageData struct {
	User     users.User
	Settings config.Settings
	Users    []users.User
}

func (a *App) siteSettings() config.Settings {
	st, err := a.settings.Get()
	if err != nil {
		logger.Warn("settings: read failed, using defaults: %v", err)
		return config.Settings{Title: "lumdash"}
	}
	return st
}

func (a *App) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if authstate.FromContext(r.Context()).User != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.renderLogin(w, http.StatusOK, loginData{})
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		a.renderLogin(w, http.StatusBadRequest, loginData{Username: username, Flash: "Username and password are required."})
		return
	}

	u, err := auth.Authenticate(a.dir, username, password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, users.ErrNotReady) {
			status = http.StatusServiceUnavailable
		}
		logger.Info("Failed login attempt for user %s from %s: %v", username, remoteIP(r), err)
		a.renderLogin(w, status, loginData{Username: username, Flash: auth.HumanAuthError(err)})
		return
	}

	tok, err := auth.SignHS256(a.secret, u, a.ttl)
	if err != nil {
		logger.Error("sign session for %s: %v", u.Name, err)
		a.renderLogin(w, http.StatusInternalServerError, loginData{Username: username, Flash: "Failed to create session."})
		return
	}
	logger.Info("User %s logged in from %s", u.Name, remoteIP(r))
	a.issueCookie(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if u := authstate.FromContext(r.Context()).User; u != nil {
		logger.Info("User %s logged out from %s", u.Name, remoteIP(r))
	}
	a.clearCookie(w)
	http.Redirect(w, r, layout.LoginPath, http.StatusSeeOther)
}

func (a *App) handleOverview(w http.ResponseWriter, r *http.Request) {
	a.renderDashboard(w, r, "overview")
}

func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	a.renderDashboard(w, r, "profile")
}

func (a *App) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if u := authstate.FromContext(r.Context()).User; u != nil && !u.Admin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	a.renderDashboard(w, r, "admin")
}

// renderDashboard mounts a DashboardLayout for this request, renders the
// named page as its children and unmounts it.
func (a *App) renderDashboard(w http.ResponseWriter, r *http.Request, page string) {
	st := authstate.FromContext(r.Context())
	settings := a.siteSettings()

	nav := &httpNavigator{w: w}
	d := layout.New(nav, layout.Chrome{
		Title:        settings.Title,
		FooterNotice: settings.FooterNotice,
		Active:       r.URL.Path,
	})
	defer d.Close()

	data := pageData{Settings: settings}
	if st.User != nil {
		data.User = *st.User
		if st.User.Admin && page == "admin" {
			data.Users = a.dir.List()
		}
	}

	h := w.Header()
	h.Set("Cache-Control", "no-store")
	h.Set("Content-Type", "text/html; charset=utf-8")
	if st.Loading {
		// Re-poll until the user directory has loaded.
		h.Set("Refresh", "1")
	}

	if _, err := d.Render(w, st, layout.Template(a.pages, page, data)); err != nil {
		logger.Error("render %s failed: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (a *App) renderLogin(w http.ResponseWriter, status int, data loginData) {
	data.Title = a.siteSettings().Title
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.pages.ExecuteTemplate(w, "login", data); err != nil {
		logger.Error("render login failed: %v", err)
	}
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "{\"ok\":true,\"ready\":%t}\n", a.dir.Ready())
}
