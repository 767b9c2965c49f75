package datafs

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	UsersFile    = "users.yaml"
	SettingsFile = "settings.yaml"
)

var ErrInvalidPath = errors.New("invalid data path")

// Root is the data directory all lumdash files live under.
type Root string

// Path joins the root with a relative path. Paths escaping the root are rejected.
func (r Root) Path(rel string) (string, error) {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	clean := filepath.Clean(rel)
	if clean == "." || clean == "" || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return filepath.Join(string(r), clean), nil
}

// MustPath is Path for compile-time constant names.
func (r Root) MustPath(rel string) string {
	p, err := r.Path(rel)
	if err != nil {
		panic(err)
	}
	return p
}
