// Package probecache persists image dimension probes in SQLite so repeated
// scans of large sequences skip decoding and ffprobe calls.
//
// Entries are keyed by absolute path and invalidated whenever the file's
// size or modification time changes. A nil *Cache is valid and behaves as a
// permanent miss.
package probecache
