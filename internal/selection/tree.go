package selection

import (
	"log/slog"
	"path/filepath"
	"slices"
	"sort"

	"shotlist/internal/imageinfo"
	"shotlist/internal/logging"
	"shotlist/internal/sequence"
)

// Direction is a move direction among siblings.
type Direction int

const (
	// Up moves toward index 0.
	Up Direction = -1
	// Down moves toward the end.
	Down Direction = 1
)

// Tree is the selection forest.
type Tree struct {
	nodes  map[NodeID]*Node
	roots  []NodeID
	paths  map[string]NodeID
	nextID NodeID
	logger *slog.Logger
}

// New returns an empty tree. A nil logger discards output.
func New(logger *slog.Logger) *Tree {
	return &Tree{
		nodes:  make(map[NodeID]*Node),
		paths:  make(map[string]NodeID),
		logger: logging.NewComponentLogger(logger, "selection"),
	}
}

// Insert appends the groups then the singles of result as new top-level
// nodes, all checked. If any path is already in the tree, or appears twice in
// result, nothing is inserted and a *DuplicatePathError lists every conflict.
// It returns the ids of the new top-level nodes.
func (t *Tree) Insert(result sequence.Result) ([]NodeID, error) {
	return t.insert(result, false)
}

// Merge is Insert, except that a group whose key and directory match an
// existing top-level group is appended to that group instead of becoming a
// new one. Appended frames start checked and the group's state follows its
// children. It returns the ids of the new or extended top-level nodes.
func (t *Tree) Merge(result sequence.Result) ([]NodeID, error) {
	return t.insert(result, true)
}

func (t *Tree) insert(result sequence.Result, merge bool) ([]NodeID, error) {
	if conflicts := t.conflicts(result.Paths()); len(conflicts) > 0 {
		t.logger.Info("insert rejected", logging.Int("conflicts", len(conflicts)))
		return nil, &DuplicatePathError{Paths: conflicts}
	}

	touched := make([]NodeID, 0, len(result.Groups)+len(result.Singles))
	for _, group := range result.Groups {
		if merge && len(group.Members) > 0 {
			if existing := t.findGroup(group.Key, filepath.Dir(group.Members[0].Path)); existing != nil {
				for _, member := range group.Members {
					frame := t.newLeaf(KindFrame, member)
					frame.Parent = existing.ID
					existing.Children = append(existing.Children, frame.ID)
					t.childChanged(existing, frame)
				}
				touched = append(touched, existing.ID)
				t.logger.Debug("group extended",
					logging.String(logging.FieldGroup, group.Key),
					logging.Int("frames", len(group.Members)))
				continue
			}
		}

		groupNode := t.newNode(KindGroup)
		groupNode.Checked = true
		groupNode.Key = group.Key
		if len(group.Members) > 0 {
			first := group.Members[0]
			groupNode.Path = filepath.Dir(first.Path)
			groupNode.Name = filepath.Base(groupNode.Path)
			groupNode.Format = first.Format
			groupNode.ImageSize = first.ImageSize
		}
		for _, member := range group.Members {
			frame := t.newLeaf(KindFrame, member)
			frame.Parent = groupNode.ID
			groupNode.Children = append(groupNode.Children, frame.ID)
		}
		t.roots = append(t.roots, groupNode.ID)
		touched = append(touched, groupNode.ID)
		t.logger.Debug("group inserted",
			logging.String(logging.FieldGroup, group.Key),
			logging.Int("frames", len(group.Members)))
	}
	for _, single := range result.Singles {
		node := t.newLeaf(KindSingleton, single)
		t.roots = append(t.roots, node.ID)
		touched = append(touched, node.ID)
	}
	return touched, nil
}

func (t *Tree) findGroup(key, dir string) *Node {
	want := PathKey(dir)
	for _, id := range t.roots {
		node := t.nodes[id]
		if node.Kind == KindGroup && node.Key == key && PathKey(node.Path) == want {
			return node
		}
	}
	return nil
}

func (t *Tree) conflicts(paths []string) []string {
	var conflicts []string
	reported := make(map[string]struct{})
	batch := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		key := PathKey(path)
		_, inTree := t.paths[key]
		_, inBatch := batch[key]
		batch[key] = struct{}{}
		if !inTree && !inBatch {
			continue
		}
		if _, done := reported[key]; done {
			continue
		}
		reported[key] = struct{}{}
		conflicts = append(conflicts, path)
	}
	return conflicts
}

func (t *Tree) newNode(kind Kind) *Node {
	t.nextID++
	node := &Node{ID: t.nextID, Kind: kind}
	t.nodes[node.ID] = node
	return node
}

func (t *Tree) newLeaf(kind Kind, entry imageinfo.Entry) *Node {
	node := t.newNode(kind)
	node.Checked = true
	node.Name = entry.FileName
	node.Path = entry.Path
	node.Format = entry.Format
	node.ImageSize = entry.ImageSize
	node.FileSize = entry.FileSize
	t.paths[PathKey(entry.Path)] = node.ID
	return node
}

// Toggle sets the checked state of id and propagates it one level: a frame
// updates its group through childChanged, a group updates its frames through
// parentChanged.
func (t *Tree) Toggle(id NodeID, checked bool) error {
	node, ok := t.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	node.Checked = checked
	switch node.Kind {
	case KindFrame:
		if parent, ok := t.nodes[node.Parent]; ok {
			t.childChanged(parent, node)
		}
	case KindGroup:
		t.parentChanged(node)
	}
	return nil
}

// childChanged applies a frame's new state to its group.
func (t *Tree) childChanged(parent, child *Node) {
	if !child.Checked {
		parent.Checked = false
		return
	}
	for _, id := range parent.Children {
		if !t.nodes[id].Checked {
			return
		}
	}
	parent.Checked = true
}

// parentChanged copies a group's state to every frame.
func (t *Tree) parentChanged(group *Node) {
	for _, id := range group.Children {
		t.nodes[id].Checked = group.Checked
	}
}

// SetAll checks or unchecks every node.
func (t *Tree) SetAll(checked bool) {
	for _, node := range t.nodes {
		node.Checked = checked
	}
}

// Remove detaches each node and its subtree. Unknown ids fail with
// ErrNodeNotFound before anything is removed. Removing a frame leaves its
// group's state untouched.
func (t *Tree) Remove(ids []NodeID) error {
	for _, id := range ids {
		if _, ok := t.nodes[id]; !ok {
			return ErrNodeNotFound
		}
	}
	for _, id := range ids {
		node, ok := t.nodes[id]
		if !ok {
			continue
		}
		if parent, ok := t.nodes[node.Parent]; ok {
			parent.Children = deleteID(parent.Children, id)
		} else {
			t.roots = deleteID(t.roots, id)
		}
		t.drop(node)
	}
	return nil
}

func (t *Tree) drop(node *Node) {
	for _, child := range node.Children {
		if childNode, ok := t.nodes[child]; ok {
			t.drop(childNode)
		}
	}
	if node.Kind != KindGroup {
		delete(t.paths, PathKey(node.Path))
	}
	delete(t.nodes, node.ID)
}

func deleteID(ids []NodeID, id NodeID) []NodeID {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// Move shifts the given siblings one position in direction. Selected nodes
// keep their relative order: a node at the bound, or behind a selected node
// that could not move, stays where it is.
func (t *Tree) Move(ids []NodeID, direction Direction) error {
	if len(ids) == 0 {
		return nil
	}
	parent := NodeID(-1)
	for _, id := range ids {
		node, ok := t.nodes[id]
		if !ok {
			return ErrNodeNotFound
		}
		if parent == -1 {
			parent = node.Parent
		} else if node.Parent != parent {
			return ErrMixedParents
		}
	}

	siblings := &t.roots
	if parentNode, ok := t.nodes[parent]; ok {
		siblings = &parentNode.Children
	}
	list := *siblings

	indices := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		i := slices.Index(list, id)
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		indices = append(indices, i)
	}

	switch direction {
	case Up:
		sort.Ints(indices)
		limit := 0
		for _, i := range indices {
			if i == limit {
				limit = i + 1
				continue
			}
			list[i-1], list[i] = list[i], list[i-1]
			limit = i
		}
	case Down:
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
		limit := len(list) - 1
		for _, i := range indices {
			if i == limit {
				limit = i - 1
				continue
			}
			list[i+1], list[i] = list[i], list[i+1]
			limit = i
		}
	}
	return nil
}

// ValidateUniformFormat fails with *MixedFormatError when checked leaves
// span more than one format. Checked frames count even if their group is
// unchecked. No checked leaves is valid.
func (t *Tree) ValidateUniformFormat() error {
	formats := t.CheckedFormats()
	if len(formats) > 1 {
		logging.WarnWithContext(t.logger, "mixed formats selected", "mixed_formats",
			logging.Any("formats", formats),
			logging.String(logging.FieldErrorHint, "uncheck files until one format remains"),
			logging.String(logging.FieldImpact, "selection cannot be handed to the encoder"))
		return &MixedFormatError{Formats: formats}
	}
	return nil
}

// CheckedFormats returns the sorted distinct formats of checked leaves.
func (t *Tree) CheckedFormats() []string {
	set := make(map[string]struct{})
	for _, root := range t.roots {
		node := t.nodes[root]
		if node.Kind == KindSingleton {
			if node.Checked {
				set[node.Format] = struct{}{}
			}
			continue
		}
		for _, id := range node.Children {
			if child := t.nodes[id]; child.Checked {
				set[child.Format] = struct{}{}
			}
		}
	}
	formats := make([]string, 0, len(set))
	for format := range set {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Roots returns the top-level ids in order.
func (t *Tree) Roots() []NodeID {
	return append([]NodeID(nil), t.roots...)
}

// Node returns a snapshot of id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	node, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return node.snapshot(), true
}

// Children returns the ordered child ids of id.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return append([]NodeID(nil), node.Children...), nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Contains reports whether path is held by a leaf.
func (t *Tree) Contains(path string) bool {
	_, ok := t.paths[PathKey(path)]
	return ok
}

// Clear removes every node. Ids are not reused.
func (t *Tree) Clear() {
	t.nodes = make(map[NodeID]*Node)
	t.paths = make(map[string]NodeID)
	t.roots = nil
}

// Walk visits nodes depth-first in display order until fn returns false.
func (t *Tree) Walk(fn func(node Node, depth int) bool) {
	for _, root := range t.roots {
		node := t.nodes[root]
		if !fn(node.snapshot(), 0) {
			return
		}
		for _, id := range node.Children {
			if !fn(t.nodes[id].snapshot(), 1) {
				return
			}
		}
	}
}
