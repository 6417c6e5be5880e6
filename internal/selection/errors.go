package selection

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned for ids that are not in the tree.
	ErrNodeNotFound = errors.New("selection node not found")
	// ErrMixedParents is returned when moved nodes do not share one parent.
	ErrMixedParents = errors.New("selected nodes do not share a parent")
)

// DuplicatePathError rejects an insert whose paths already exist in the tree
// or repeat within the batch.
type DuplicatePathError struct {
	Paths []string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("%d path(s) already listed: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// ErrorKind classifies the error.
func (e *DuplicatePathError) ErrorKind() string { return "conflict" }

// MixedFormatError reports that checked items span several formats.
type MixedFormatError struct {
	Formats []string
}

func (e *MixedFormatError) Error() string {
	return fmt.Sprintf("checked items mix formats (%s); select files with the same format", strings.Join(e.Formats, ", "))
}

// ErrorKind classifies the error.
func (e *MixedFormatError) ErrorKind() string { return "validation" }
