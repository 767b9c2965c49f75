// Package datafs resolves and writes files under the lumdash data root.
//
// Layout:
//
//	<root>/users.yaml     user directory
//	<root>/settings.yaml  site settings
//	<root>/logs/          daily log files
package datafs
