package handoff

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"shotlist/internal/imageinfo"
	"shotlist/internal/selection"
	"shotlist/internal/sequence"
)

// Options controls plan construction.
type Options struct {
	// Padding forces the template width. Zero derives it per sequence.
	Padding int
}

// SequenceInput describes one contiguous sequence for the encoder.
type SequenceInput struct {
	Group    string              `json:"group" yaml:"group"`
	Template string              `json:"template" yaml:"template"`
	Format   string              `json:"format" yaml:"format"`
	Range    sequence.FrameRange `json:"range" yaml:"range"`
	Frames   int                 `json:"frames" yaml:"frames"`
}

// Plan is the complete encoder hand-off.
type Plan struct {
	Sequences []SequenceInput `json:"sequences" yaml:"sequences"`
	Singles   []string        `json:"singles" yaml:"singles"`
}

// Empty reports whether the plan holds nothing to encode.
func (p Plan) Empty() bool {
	return len(p.Sequences) == 0 && len(p.Singles) == 0
}

// Formats returns the sorted distinct input formats of the plan.
func (p Plan) Formats() []string {
	set := make(map[string]struct{})
	for _, seq := range p.Sequences {
		set[seq.Format] = struct{}{}
	}
	for _, single := range p.Singles {
		set[imageinfo.FormatOf(single)] = struct{}{}
	}
	formats := make([]string, 0, len(set))
	for format := range set {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Build validates every sequence record and collects singleton paths.
// Validation errors keep their type and are wrapped with the group key.
func Build(records []selection.Record, opts Options) (Plan, error) {
	if opts.Padding < 0 {
		return Plan{}, &sequence.InvalidPaddingError{Width: opts.Padding}
	}
	var plan Plan
	for _, record := range records {
		paths := record.PathList()
		switch record.Kind {
		case selection.RecordSequence:
			frames, err := sequence.ValidateFrameRange(sequence.FrameTokens(paths))
			if err != nil {
				return Plan{}, fmt.Errorf("group %q: %w", record.Group, err)
			}
			template, err := sequence.PaddingTemplate(paths, opts.Padding)
			if err != nil {
				return Plan{}, fmt.Errorf("group %q: %w", record.Group, err)
			}
			plan.Sequences = append(plan.Sequences, SequenceInput{
				Group:    record.Group,
				Template: template,
				Format:   record.Format,
				Range:    frames,
				Frames:   len(paths),
			})
		case selection.RecordSingleton:
			plan.Singles = append(plan.Singles, paths...)
		}
	}
	return plan, nil
}

// ConcatList renders paths as an ffmpeg concat demuxer list.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, path := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(path, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// WriteConcatList writes ConcatList(paths) to w.
func WriteConcatList(w io.Writer, paths []string) error {
	_, err := io.WriteString(w, ConcatList(paths))
	return err
}
