// Package selection keeps the checked state of classified shots and images.
//
// A Tree is a forest stored as an arena: every node has an id, a parent id
// (zero at top level) and an ordered list of child ids. Top-level nodes are
// groups or singletons; groups own frame nodes. Check state is binary and
// moves between levels through two transitions only:
//
//   - childChanged: an unchecked frame unchecks its group; a checked frame
//     checks the group once every sibling is checked
//   - parentChanged: a group's state is copied to each of its frames
//
// Neither transition triggers the other, so each toggle is a single pass.
// Callers serialize access; the tree does no locking.
package selection
