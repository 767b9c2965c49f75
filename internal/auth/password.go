package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"

	"github.com/hnrobert/lumdash/internal/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLocked         = errors.New("user is locked")
	ErrUnsupportedHash    = errors.New("unsupported password hash")
)

// Directory is the lookup Authenticate needs.
type Directory interface {
	FindByName(name string) (users.User, error)
}

// Authenticate resolves a login form to a directory user.
func Authenticate(dir Directory, name, password string) (users.User, error) {
	u, err := dir.FindByName(name)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, ErrInvalidCredentials
		}
		return users.User{}, err
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func VerifyPassword(hash, password string) error {
	if isLocked(hash) {
		return ErrUserLocked
	}
	// $1$ md5-crypt, $5$ sha256-crypt, $6$ sha512-crypt.
	for _, c := range []crypt.Crypter{sha512_crypt.New(), sha256_crypt.New(), md5_crypt.New()} {
		if err := c.Verify(hash, []byte(password)); err == nil {
			return nil
		}
	}
	if strings.HasPrefix(hash, "$y$") || strings.HasPrefix(hash, "$7$") || strings.HasPrefix(hash, "$2") {
		return ErrUnsupportedHash
	}
	return ErrInvalidCredentials
}

// HashPassword produces a sha512-crypt hash for the users file.
func HashPassword(password string) (string, error) {
	return sha512_crypt.New().Generate([]byte(password), nil)
}

func isLocked(hash string) bool {
	return hash == "" || strings.HasPrefix(hash, "!") || strings.HasPrefix(hash, "*")
}

func HumanAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrUserLocked):
		return "This account is locked."
	case errors.Is(err, ErrUnsupportedHash):
		return "This account uses a password hash format lumdash cannot verify."
	case errors.Is(err, users.ErrNotReady):
		return "The user directory is still loading. Try again in a moment."
	default:
		return fmt.Sprintf("Authentication failed: %v", err)
	}
}
