package selection

import (
	"fmt"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// NodeID identifies a node. Zero is never assigned.
type NodeID int64

// Kind distinguishes the node variants.
type Kind int

const (
	KindGroup Kind = iota + 1
	KindFrame
	KindSingleton
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindFrame:
		return "frame"
	case KindSingleton:
		return "singleton"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a snapshot of one tree node.
type Node struct {
	ID       NodeID
	Kind     Kind
	Parent   NodeID
	Children []NodeID
	Checked  bool
	// Key is the group key of a group node.
	Key string
	// Name is the file name of a leaf or the directory name of a group.
	Name string
	// Path is the file path of a leaf or the directory of a group.
	Path      string
	Format    string
	ImageSize string
	FileSize  string
}

// Label renders the node for display. Groups show their frame count.
func (n Node) Label() string {
	if n.Kind == KindGroup {
		return fmt.Sprintf("%s (%d)", n.Key, len(n.Children))
	}
	return n.Name
}

// IsLeaf reports whether the node has no children. Empty groups are leaves.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

func (n *Node) snapshot() Node {
	out := *n
	out.Children = append([]NodeID(nil), n.Children...)
	return out
}

// PathKey is the identity the tree uses for paths: cleaned and NFC normalised.
func PathKey(path string) string {
	return norm.NFC.String(filepath.Clean(path))
}
