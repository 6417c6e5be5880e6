package selection

import (
	"errors"
	"reflect"
	"testing"

	"shotlist/internal/imageinfo"
	"shotlist/internal/sequence"
)

func groupResult(key string, paths ...string) sequence.Result {
	group := &sequence.ShotGroup{Key: key}
	for _, p := range paths {
		group.Members = append(group.Members, imageinfo.Bare(p))
	}
	return sequence.Result{Groups: sequence.Groups{group}}
}

func singlesResult(paths ...string) sequence.Result {
	var result sequence.Result
	for _, p := range paths {
		result.Singles = append(result.Singles, imageinfo.Bare(p))
	}
	return result
}

func mustInsert(t *testing.T, tree *Tree, result sequence.Result) []NodeID {
	t.Helper()
	ids, err := tree.Insert(result)
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	return ids
}

func checked(t *testing.T, tree *Tree, id NodeID) bool {
	t.Helper()
	node, ok := tree.Node(id)
	if !ok {
		t.Fatalf("node %d not found", id)
	}
	return node.Checked
}

func labels(t *testing.T, tree *Tree, ids []NodeID) []string {
	t.Helper()
	out := make([]string, len(ids))
	for i, id := range ids {
		node, ok := tree.Node(id)
		if !ok {
			t.Fatalf("node %d not found", id)
		}
		out[i] = node.Name
	}
	return out
}

func TestInsertBuildsCheckedForest(t *testing.T) {
	tree := New(nil)
	result := groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr")
	result.Singles = []imageinfo.Entry{imageinfo.Bare("cover.png")}

	ids := mustInsert(t, tree, result)
	if len(ids) != 2 {
		t.Fatalf("expected 2 top-level ids, got %d", len(ids))
	}
	if tree.Len() != 4 {
		t.Fatalf("expected 4 nodes, got %d", tree.Len())
	}
	group, _ := tree.Node(ids[0])
	if group.Kind != KindGroup || group.Key != "shot" || len(group.Children) != 2 {
		t.Fatalf("unexpected group node %+v", group)
	}
	if group.Label() != "shot (2)" {
		t.Fatalf("unexpected label %q", group.Label())
	}
	if group.Format != "exr" {
		t.Fatalf("unexpected group format %q", group.Format)
	}
	for _, child := range group.Children {
		frame, _ := tree.Node(child)
		if frame.Parent != group.ID || !frame.Checked || frame.Kind != KindFrame {
			t.Fatalf("unexpected frame node %+v", frame)
		}
	}
	single, _ := tree.Node(ids[1])
	if single.Kind != KindSingleton || !single.Checked || single.Parent != 0 {
		t.Fatalf("unexpected singleton node %+v", single)
	}
	if !reflect.DeepEqual(tree.Roots(), ids) {
		t.Fatalf("roots %v do not match inserted ids %v", tree.Roots(), ids)
	}
}

func TestInsertRejectsDuplicatePath(t *testing.T) {
	tree := New(nil)
	mustInsert(t, tree, groupResult("x", "x/f.0001.exr"))

	_, err := tree.Insert(groupResult("x", "x/f.0001.exr"))
	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePathError, got %v", err)
	}
	if !reflect.DeepEqual(dup.Paths, []string{"x/f.0001.exr"}) {
		t.Fatalf("unexpected conflicts %v", dup.Paths)
	}
	if dup.ErrorKind() != "conflict" {
		t.Fatalf("unexpected kind %q", dup.ErrorKind())
	}

	matches := 0
	tree.Walk(func(node Node, depth int) bool {
		if node.Path == "x/f.0001.exr" {
			matches++
		}
		return true
	})
	if matches != 1 {
		t.Fatalf("expected exactly one matching node, got %d", matches)
	}
	if tree.Len() != 2 {
		t.Fatalf("tree should be unchanged, got %d nodes", tree.Len())
	}
}

func TestInsertRejectsWholeBatch(t *testing.T) {
	tree := New(nil)
	mustInsert(t, tree, singlesResult("a.png"))

	result := singlesResult("b.png", "./a.png", "c.png", "c.png")
	_, err := tree.Insert(result)
	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePathError, got %v", err)
	}
	if !reflect.DeepEqual(dup.Paths, []string{"./a.png", "c.png"}) {
		t.Fatalf("unexpected conflicts %v", dup.Paths)
	}
	if tree.Contains("b.png") {
		t.Fatal("no path from a rejected batch should be inserted")
	}
	if tree.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", tree.Len())
	}
}

func TestInsertComparesNormalizedPaths(t *testing.T) {
	tree := New(nil)
	mustInsert(t, tree, singlesResult("shots/caf\u00e9.png"))
	if _, err := tree.Insert(singlesResult("shots/cafe\u0301.png")); err == nil {
		t.Fatal("expected decomposed spelling to be treated as duplicate")
	}
}

func TestToggleChildParentPropagation(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr", "shot/a.0003.exr"))
	group := ids[0]
	children, _ := tree.Children(group)

	for _, off := range children {
		if err := tree.Toggle(off, false); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
		if checked(t, tree, group) {
			t.Fatalf("unchecking child %d should uncheck the group", off)
		}
		for _, other := range children {
			if other != off && !checked(t, tree, other) {
				t.Fatal("siblings must keep their own state")
			}
		}
		if err := tree.Toggle(off, true); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
		if !checked(t, tree, group) {
			t.Fatalf("re-checking child %d should re-check the group", off)
		}
	}

	_ = tree.Toggle(children[0], false)
	_ = tree.Toggle(children[1], false)
	_ = tree.Toggle(children[0], true)
	if checked(t, tree, group) {
		t.Fatal("group must stay unchecked while a child is unchecked")
	}

	if err := tree.Toggle(group, true); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	for _, child := range children {
		if !checked(t, tree, child) {
			t.Fatal("checking the group should check every child")
		}
	}
	_ = tree.Toggle(group, false)
	for _, child := range children {
		if checked(t, tree, child) {
			t.Fatal("unchecking the group should uncheck every child")
		}
	}
}

func TestToggleUnknownNode(t *testing.T) {
	tree := New(nil)
	if err := tree.Toggle(42, true); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestSetAll(t *testing.T) {
	tree := New(nil)
	result := groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr")
	result.Singles = []imageinfo.Entry{imageinfo.Bare("cover.png")}
	mustInsert(t, tree, result)

	tree.SetAll(false)
	tree.Walk(func(node Node, _ int) bool {
		if node.Checked {
			t.Fatalf("node %d still checked", node.ID)
		}
		return true
	})
	tree.SetAll(true)
	tree.Walk(func(node Node, _ int) bool {
		if !node.Checked {
			t.Fatalf("node %d still unchecked", node.ID)
		}
		return true
	})
}

func TestRemoveDetachesSubtree(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr"))
	children, _ := tree.Children(ids[0])

	if err := tree.Remove([]NodeID{ids[0], children[0]}); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if tree.Len() != 0 {
		t.Fatalf("expected empty tree, got %d nodes", tree.Len())
	}
	if tree.Contains("shot/a.0002.exr") {
		t.Fatal("removed frame path still registered")
	}
	mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr"))
}

func TestRemoveFrameKeepsGroupAsLeaf(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr"))
	children, _ := tree.Children(ids[0])

	if err := tree.Remove(children); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	group, ok := tree.Node(ids[0])
	if !ok {
		t.Fatal("group should remain")
	}
	if !group.IsLeaf() {
		t.Fatalf("expected empty group to be a leaf, got children %v", group.Children)
	}
	if err := tree.Toggle(ids[0], false); err != nil {
		t.Fatalf("empty group should toggle: %v", err)
	}
	if len(Extract(tree)) != 0 {
		t.Fatal("empty group should contribute nothing")
	}
}

func TestRemoveUnknownIsAtomic(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, singlesResult("a.png", "b.png"))

	if err := tree.Remove([]NodeID{ids[0], 999}); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if tree.Len() != 2 {
		t.Fatalf("nothing should be removed, got %d nodes", tree.Len())
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		selected  []int
		direction Direction
		want      []string
	}{
		{"first up is no-op", []int{0}, Up, []string{"a.png", "b.png", "c.png", "d.png"}},
		{"last down is no-op", []int{3}, Down, []string{"a.png", "b.png", "c.png", "d.png"}},
		{"single up", []int{2}, Up, []string{"a.png", "c.png", "b.png", "d.png"}},
		{"single down", []int{1}, Down, []string{"a.png", "c.png", "b.png", "d.png"}},
		{"adjacent up", []int{1, 2}, Up, []string{"b.png", "c.png", "a.png", "d.png"}},
		{"adjacent down", []int{1, 2}, Down, []string{"a.png", "d.png", "b.png", "c.png"}},
		{"blocked at front", []int{0, 1, 3}, Up, []string{"a.png", "b.png", "d.png", "c.png"}},
		{"blocked at back", []int{0, 2, 3}, Down, []string{"b.png", "a.png", "c.png", "d.png"}},
		{"unordered selection", []int{3, 1}, Up, []string{"b.png", "a.png", "d.png", "c.png"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := New(nil)
			ids := mustInsert(t, tree, singlesResult("a.png", "b.png", "c.png", "d.png"))
			var selected []NodeID
			for _, i := range tc.selected {
				selected = append(selected, ids[i])
			}
			if err := tree.Move(selected, tc.direction); err != nil {
				t.Fatalf("Move returned error: %v", err)
			}
			if got := labels(t, tree, tree.Roots()); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMoveWithinGroup(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr", "shot/a.0003.exr"))
	children, _ := tree.Children(ids[0])

	if err := tree.Move([]NodeID{children[2]}, Up); err != nil {
		t.Fatalf("Move returned error: %v", err)
	}
	got, _ := tree.Children(ids[0])
	if !reflect.DeepEqual(got, []NodeID{children[0], children[2], children[1]}) {
		t.Fatalf("unexpected child order %v", got)
	}
}

func TestMoveRejectsMixedParents(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr"))
	single := mustInsert(t, tree, singlesResult("cover.png"))
	children, _ := tree.Children(ids[0])

	if err := tree.Move([]NodeID{children[0], single[0]}, Down); !errors.Is(err, ErrMixedParents) {
		t.Fatalf("expected ErrMixedParents, got %v", err)
	}
	if err := tree.Move([]NodeID{77}, Down); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestValidateUniformFormat(t *testing.T) {
	tree := New(nil)
	if err := tree.ValidateUniformFormat(); err != nil {
		t.Fatalf("empty tree should validate: %v", err)
	}

	mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr"))
	odd := mustInsert(t, tree, singlesResult("cover.png"))

	err := tree.ValidateUniformFormat()
	var mixed *MixedFormatError
	if !errors.As(err, &mixed) {
		t.Fatalf("expected MixedFormatError, got %v", err)
	}
	if !reflect.DeepEqual(mixed.Formats, []string{"exr", "png"}) {
		t.Fatalf("unexpected formats %v", mixed.Formats)
	}

	if err := tree.Toggle(odd[0], false); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if err := tree.ValidateUniformFormat(); err != nil {
		t.Fatalf("expected uniform selection, got %v", err)
	}

	tree.SetAll(false)
	if err := tree.ValidateUniformFormat(); err != nil {
		t.Fatalf("nothing checked should validate, got %v", err)
	}
}

func TestValidateUniformFormatCountsFramesOfUncheckedGroup(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr"))
	mustInsert(t, tree, singlesResult("cover.png"))
	children, _ := tree.Children(ids[0])

	_ = tree.Toggle(children[1], false)
	if checked(t, tree, ids[0]) {
		t.Fatal("group should be unchecked")
	}
	var mixed *MixedFormatError
	if err := tree.ValidateUniformFormat(); !errors.As(err, &mixed) {
		t.Fatalf("checked frame of an unchecked group should count, got %v", err)
	}
}

func TestClear(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, singlesResult("a.png"))
	tree.Clear()
	if tree.Len() != 0 || len(tree.Roots()) != 0 || tree.Contains("a.png") {
		t.Fatal("expected empty tree after Clear")
	}
	again := mustInsert(t, tree, singlesResult("a.png"))
	if again[0] == ids[0] {
		t.Fatal("ids should not be reused after Clear")
	}
}

func TestMergeExtendsMatchingGroup(t *testing.T) {
	tree := New(nil)
	first := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr"))

	ids, err := tree.Merge(groupResult("shot", "shot/a.0002.exr", "shot/a.0003.exr"))
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if !reflect.DeepEqual(ids, first) {
		t.Fatalf("expected merge into %v, got %v", first, ids)
	}
	if roots := tree.Roots(); len(roots) != 1 {
		t.Fatalf("expected one root, got %v", roots)
	}
	children, _ := tree.Children(first[0])
	if got := labels(t, tree, children); !reflect.DeepEqual(got, []string{"a.0001.exr", "a.0002.exr", "a.0003.exr"}) {
		t.Fatalf("unexpected frames %v", got)
	}
	if !checked(t, tree, first[0]) {
		t.Fatal("group should stay checked when every frame is checked")
	}

	records := Extract(tree)
	if len(records) != 1 || records[0].Kind != RecordSequence || len(records[0].Paths) != 3 {
		t.Fatalf("expected one 3-frame sequence record, got %+v", records)
	}
}

func TestMergeKeepsPartialGroupUnchecked(t *testing.T) {
	tree := New(nil)
	ids := mustInsert(t, tree, groupResult("shot", "shot/a.0001.exr", "shot/a.0002.exr"))
	children, _ := tree.Children(ids[0])
	if err := tree.Toggle(children[1], false); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	if _, err := tree.Merge(groupResult("shot", "shot/a.0003.exr")); err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if checked(t, tree, ids[0]) {
		t.Fatal("group with an unchecked frame must stay unchecked")
	}
	children, _ = tree.Children(ids[0])
	if len(children) != 3 || !checked(t, tree, children[2]) {
		t.Fatalf("expected appended checked frame, children %v", children)
	}
}

func TestMergeSeparatesOtherDirectoriesAndRejectsDuplicates(t *testing.T) {
	tree := New(nil)
	mustInsert(t, tree, groupResult("shot", "a/shot/x.0001.exr"))

	ids, err := tree.Merge(groupResult("shot", "b/shot/x.0001.exr"))
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if len(tree.Roots()) != 2 || ids[0] != tree.Roots()[1] {
		t.Fatalf("same key in another directory should be a new group, roots %v", tree.Roots())
	}

	before := tree.Len()
	_, err = tree.Merge(groupResult("shot", "a/shot/x.0001.exr", "a/shot/x.0002.exr"))
	var dup *DuplicatePathError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePathError, got %v", err)
	}
	if tree.Len() != before {
		t.Fatalf("rejected merge must not change the tree: %d -> %d", before, tree.Len())
	}
}
