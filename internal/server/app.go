package server

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hnrobert/lumdash/internal/auth"
	"github.com/hnrobert/lumdash/internal/config"
	"github.com/hnrobert/lumdash/internal/users"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Options struct {
	Secret       []byte
	SessionTTL   time.Duration
	SecureCookie bool
	// AssetsDir is served under /assets/ when set.
	AssetsDir string
}

type App struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	assetsDir    string
	cookieName   string
	pages        *template.Template
	dir          *users.Directory
	settings     *config.Store
}

func NewApp(opts Options, dir *users.Directory, settings *config.Store) (*App, error) {
	pages, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &App{
		secret:       opts.Secret,
		ttl:          ttl,
		secureCookie: opts.SecureCookie,
		assetsDir:    opts.AssetsDir,
		cookieName:   auth.DefaultCookieName,
		pages:        pages,
		dir:          dir,
		settings:     settings,
	}, nil
}

func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(a.withAuthContext)

	r.Get("/login", a.handleLoginPage)
	r.Post("/login", a.handleLogin)
	r.Post("/logout", a.handleLogout)

	r.Get("/", a.handleOverview)
	r.Get("/profile", a.handleProfile)
	r.Get("/admin", a.handleAdmin)

	r.Get("/api/session/watch", a.handleWatch)
	r.Get("/api/healthz", a.handleHealthz)

	if a.assetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(a.assetsDir))))
	}
	return r
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookie,
		MaxAge:   int(a.ttl.Seconds()),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookie,
		MaxAge:   -1,
	})
}
