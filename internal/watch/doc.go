// Package watch feeds new images from watched directories into a selection
// tree.
//
// Filesystem events are collected until the directories have been quiet for
// the debounce window, then the touched paths are classified and merged in one
// batch. New frames of a sequence that is already listed are appended to its
// group rather than starting a second one. A listed path that is created again
// is reported as a duplicate and left alone; one that is only rewritten is
// ignored. Each watched directory has a lock file, so a second watcher on the
// same directory fails fast with ErrLocked.
package watch
