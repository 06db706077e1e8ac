// Package preflight provides readiness checks for the filesystem paths an
// unpack run depends on.
//
// The unpack service checks the target's parent directory before decoding
// anything, and "wxunpack config validate" uses RunAll to report the health
// of every configured path.
package preflight
