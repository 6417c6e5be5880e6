package sequence

import (
	"path/filepath"
	"regexp"
)

// frameTokenPattern matches the first ".<digits>." in a file name. A name such
// as "v2.shot.0012.exr" yields "2", not "0012".
var frameTokenPattern = regexp.MustCompile(`\.(\d+)\.`)

// FrameToken returns the frame number substring of path's base name.
func FrameToken(path string) (string, bool) {
	match := frameTokenPattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DetectSequences partitions files into frame-numbered and standalone paths,
// preserving input order in both.
func DetectSequences(files []string) (sequence []string, singles []string) {
	for _, path := range files {
		if _, ok := FrameToken(path); ok {
			sequence = append(sequence, path)
		} else {
			singles = append(singles, path)
		}
	}
	return sequence, singles
}

// FrameTokens extracts frame tokens from paths, skipping paths without one.
func FrameTokens(paths []string) []string {
	tokens := make([]string, 0, len(paths))
	for _, path := range paths {
		if token, ok := FrameToken(path); ok {
			tokens = append(tokens, token)
		}
	}
	return tokens
}
