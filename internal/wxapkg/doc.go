// Package wxapkg reads packaged mini-program archives.
//
// An archive is a flat container: a fixed header bracketed by marker bytes,
// a big-endian index of {name, offset, size} records, and a body holding the
// file contents. Decode extracts one archive into a directory and classifies
// the result (main package, split subpackage, plugin) from the file names it
// produced. The container layout is the only thing this package knows; the
// unpack orchestration lives in internal/unpacker.
package wxapkg
