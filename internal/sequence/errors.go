package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kindValidation = "validation"
	// maxListedMissing bounds DiscontinuousSequenceError.Missing.
	maxListedMissing = 1000
)

// EmptySequenceError reports that there were no frame numbers to work with.
type EmptySequenceError struct{}

func (e *EmptySequenceError) Error() string { return "sequence has no frames" }

// ErrorKind classifies the error.
func (e *EmptySequenceError) ErrorKind() string { return kindValidation }

// DiscontinuousSequenceError reports gaps in a frame range.
type DiscontinuousSequenceError struct {
	First int
	Last  int
	// Missing lists absent frame numbers in ascending order, truncated to the
	// first 1000. MissingCount always holds the full total.
	Missing      []int
	MissingCount int
	Width        int
}

func (e *DiscontinuousSequenceError) Error() string {
	frames := make([]string, 0, min(len(e.Missing), 10))
	for i, n := range e.Missing {
		if i == 10 {
			break
		}
		frames = append(frames, padFrame(n, e.Width))
	}
	listed := strings.Join(frames, ", ")
	if e.MissingCount > len(frames) {
		listed += ", ..."
	}
	return fmt.Sprintf("sequence %s-%s is missing %d frame(s): %s",
		padFrame(e.First, e.Width), padFrame(e.Last, e.Width), e.MissingCount, listed)
}

// ErrorKind classifies the error.
func (e *DiscontinuousSequenceError) ErrorKind() string { return kindValidation }

// MissingFrames renders the listed missing frames zero-padded to Width.
func (e *DiscontinuousSequenceError) MissingFrames() []string {
	out := make([]string, len(e.Missing))
	for i, n := range e.Missing {
		out[i] = padFrame(n, e.Width)
	}
	return out
}

// InvalidPaddingError reports a non-positive padding width.
type InvalidPaddingError struct {
	Width int
}

func (e *InvalidPaddingError) Error() string {
	return fmt.Sprintf("invalid padding width %d: must be at least 1", e.Width)
}

// ErrorKind classifies the error.
func (e *InvalidPaddingError) ErrorKind() string { return kindValidation }

// InvalidFrameTokenError reports a frame token that is not an unsigned integer.
type InvalidFrameTokenError struct {
	Token string
}

func (e *InvalidFrameTokenError) Error() string {
	return fmt.Sprintf("invalid frame number %q", e.Token)
}

// ErrorKind classifies the error.
func (e *InvalidFrameTokenError) ErrorKind() string { return kindValidation }

func padFrame(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
