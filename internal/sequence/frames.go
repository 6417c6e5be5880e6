package sequence

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// FrameRange describes a contiguous, validated frame range.
type FrameRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
	Count int `json:"count" yaml:"count"`
	Width int `json:"width" yaml:"width"`
}

// Summary renders the range as "start-end (count)".
func (r FrameRange) Summary() string {
	return fmt.Sprintf("%d-%d (%d)", r.Start, r.End, r.Count)
}

// ValidateFrameRange parses tokens as unsigned integers and requires them to
// cover every integer between the smallest and largest value. Repeated
// numbers count once.
func ValidateFrameRange(tokens []string) (FrameRange, error) {
	if len(tokens) == 0 {
		return FrameRange{}, &EmptySequenceError{}
	}
	numbers, err := parseTokens(tokens)
	if err != nil {
		return FrameRange{}, err
	}
	width, err := PaddingWidth(tokens)
	if err != nil {
		return FrameRange{}, err
	}

	slices.Sort(numbers)
	numbers = slices.Compact(numbers)
	first, last := numbers[0], numbers[len(numbers)-1]
	span := last - first + 1

	if len(numbers) != span {
		gap := &DiscontinuousSequenceError{
			First:        first,
			Last:         last,
			MissingCount: span - len(numbers),
			Width:        width,
		}
		next := first
		for _, n := range numbers {
			for ; next < n && len(gap.Missing) < maxListedMissing; next++ {
				gap.Missing = append(gap.Missing, next)
			}
			next = n + 1
		}
		return FrameRange{}, gap
	}

	return FrameRange{Start: first, End: last, Count: span, Width: width}, nil
}

// PaddingWidth returns the digit count of the token with the greatest value.
// Among tokens of equal value the longest wins, so "0001".."0003" yields 4.
func PaddingWidth(tokens []string) (int, error) {
	if len(tokens) == 0 {
		return 0, &EmptySequenceError{}
	}
	numbers, err := parseTokens(tokens)
	if err != nil {
		return 0, err
	}
	best := 0
	for i := range tokens {
		if numbers[i] > numbers[best] || (numbers[i] == numbers[best] && len(tokens[i]) > len(tokens[best])) {
			best = i
		}
	}
	return len(tokens[best]), nil
}

// PaddingTemplate builds "{dir}/{stem}.%0Nd.{ext}" from the first path. A
// width of 0 derives N from the frame tokens of paths.
func PaddingTemplate(paths []string, width int) (string, error) {
	if len(paths) == 0 {
		return "", &EmptySequenceError{}
	}
	if width < 0 {
		return "", &InvalidPaddingError{Width: width}
	}
	if width == 0 {
		derived, err := PaddingWidth(FrameTokens(paths))
		if err != nil {
			return "", err
		}
		if derived < 1 {
			return "", &InvalidPaddingError{Width: derived}
		}
		width = derived
	}

	first := paths[0]
	base := filepath.Base(first)
	stem, _, _ := strings.Cut(base, ".")
	name := fmt.Sprintf("%s.%%0%dd", stem, width)
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); ext != "" {
		name += "." + ext
	}
	return filepath.Join(filepath.Dir(first), name), nil
}

func parseTokens(tokens []string) ([]int, error) {
	numbers := make([]int, len(tokens))
	for i, token := range tokens {
		n, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		numbers[i] = n
	}
	return numbers, nil
}

func parseToken(token string) (int, error) {
	if token == "" {
		return 0, &InvalidFrameTokenError{Token: token}
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, &InvalidFrameTokenError{Token: token}
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, &InvalidFrameTokenError{Token: token}
	}
	return n, nil
}
