package selection

import (
	"strconv"

	"shotlist/internal/logging"
)

// RecordKind tags an extracted record.
type RecordKind string

const (
	RecordSequence  RecordKind = "sequence"
	RecordSingleton RecordKind = "singleton"
)

// IndexedPath pairs a path with its position in the source group.
type IndexedPath struct {
	Index int    `json:"index" yaml:"index"`
	Path  string `json:"path" yaml:"path"`
}

// Record is one unit of checked selection handed to an encoder.
type Record struct {
	Kind RecordKind `json:"kind" yaml:"kind"`
	// Index is the top-level position of the source node.
	Index int `json:"index" yaml:"index"`
	// ChildIndex is the frame position for a frame taken out of an
	// unchecked group, and -1 otherwise.
	ChildIndex int `json:"child_index" yaml:"child_index"`
	// Group is the group key for sequences and for frames taken out of a group.
	Group  string        `json:"group,omitempty" yaml:"group,omitempty"`
	Format string        `json:"format" yaml:"format"`
	Paths  []IndexedPath `json:"paths" yaml:"paths"`
}

// Key renders "index" or "index-child".
func (r Record) Key() string {
	if r.ChildIndex < 0 {
		return strconv.Itoa(r.Index)
	}
	return strconv.Itoa(r.Index) + "-" + strconv.Itoa(r.ChildIndex)
}

// PathList returns the record's paths in order.
func (r Record) PathList() []string {
	out := make([]string, len(r.Paths))
	for i, p := range r.Paths {
		out[i] = p.Path
	}
	return out
}

// Extract returns the checked selection in tree order. A checked group yields
// one sequence record holding all its frames. An unchecked group yields one
// singleton record per checked frame. Empty groups yield nothing.
func Extract(tree *Tree) []Record {
	var records []Record
	for index, id := range tree.roots {
		node := tree.nodes[id]
		switch {
		case node.Kind == KindSingleton:
			if node.Checked {
				records = append(records, Record{
					Kind:       RecordSingleton,
					Index:      index,
					ChildIndex: -1,
					Format:     node.Format,
					Paths:      []IndexedPath{{Index: 0, Path: node.Path}},
				})
			}
		case len(node.Children) == 0:
			// empty group
		case node.Checked:
			record := Record{
				Kind:       RecordSequence,
				Index:      index,
				ChildIndex: -1,
				Group:      node.Key,
				Format:     node.Format,
				Paths:      make([]IndexedPath, 0, len(node.Children)),
			}
			for i, childID := range node.Children {
				record.Paths = append(record.Paths, IndexedPath{Index: i, Path: tree.nodes[childID].Path})
			}
			records = append(records, record)
		default:
			for i, childID := range node.Children {
				child := tree.nodes[childID]
				if !child.Checked {
					continue
				}
				records = append(records, Record{
					Kind:       RecordSingleton,
					Index:      index,
					ChildIndex: i,
					Group:      node.Key,
					Format:     child.Format,
					Paths:      []IndexedPath{{Index: 0, Path: child.Path}},
				})
			}
		}
	}
	tree.logger.Debug("extracted checked items", logging.Int("records", len(records)))
	return records
}

// SplitByKind flattens records into sequence frame paths and singleton paths.
func SplitByKind(records []Record) (sequences []string, singles []string) {
	for _, record := range records {
		switch record.Kind {
		case RecordSequence:
			sequences = append(sequences, record.PathList()...)
		case RecordSingleton:
			singles = append(singles, record.PathList()...)
		}
	}
	return sequences, singles
}
