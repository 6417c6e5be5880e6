// Package ffprobe provides a typed wrapper around ffprobe JSON output for
// still images.
//
// Go's image decoders cover the common web formats; ffprobe fills in the
// rest (OpenEXR in particular) so every supported format can report its
// dimensions.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual video stream properties (an image is one frame)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Dimensions: width and height of the first video stream
package ffprobe
