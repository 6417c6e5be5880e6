// Package sequence classifies dropped paths into numbered image sequences
// and standalone images.
//
// The pipeline is leaf-first:
//   - ResolvePaths keeps supported image files and returns directories unresolved
//   - DetectSequences splits files on the first ".<digits>." token in the name
//   - GroupSequences groups frames by parent directory name
//   - ValidateFrameRange and PaddingTemplate describe a group for an encoder
//
// Classifier.Classify runs the whole pipeline, recursing into directories and
// merging groups that share a key across levels.
package sequence
