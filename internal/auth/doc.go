// Package auth signs and parses dashboard session tokens and verifies
// crypt(3) password hashes stored in the user directory.
package auth
