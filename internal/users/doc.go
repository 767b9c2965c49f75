// Package users holds the dashboard's user directory.
//
// The directory is a YAML file read once at startup and again on every
// Reload. Until the first load completes the directory reports not ready,
// which the auth state layer surfaces as "loading".
package users
