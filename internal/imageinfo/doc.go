// Package imageinfo inspects image files and produces the immutable metadata
// entries shown for every frame and standalone image.
//
// Dimensions come from the Go image decoders (PNG, JPEG, GIF, BMP, TIFF,
// WebP). Formats Go cannot decode fall back to ffprobe when enabled. Results
// are optionally memoized in the SQLite probe cache. Any failure degrades to
// "N/A" rather than an error.
package imageinfo
