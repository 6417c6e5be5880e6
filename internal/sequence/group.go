package sequence

import (
	"path/filepath"

	"shotlist/internal/imageinfo"
)

// ShotGroup holds the frames found under one parent directory name.
// Members keep directory iteration order.
type ShotGroup struct {
	Key     string            `json:"key" yaml:"key"`
	Members []imageinfo.Entry `json:"members" yaml:"members"`
}

// Paths returns member paths in order.
func (g *ShotGroup) Paths() []string {
	paths := make([]string, len(g.Members))
	for i, member := range g.Members {
		paths[i] = member.Path
	}
	return paths
}

// Groups is an ordered list of shot groups with unique keys.
type Groups []*ShotGroup

// Lookup returns the group with key.
func (g Groups) Lookup(key string) (*ShotGroup, bool) {
	for _, group := range g {
		if group.Key == key {
			return group, true
		}
	}
	return nil, false
}

// Merge appends other into g. Members of a recurring key are concatenated
// onto the existing group; new keys are appended in order.
func (g Groups) Merge(other Groups) Groups {
	for _, group := range other {
		if existing, ok := g.Lookup(group.Key); ok {
			existing.Members = append(existing.Members, group.Members...)
			continue
		}
		g = append(g, &ShotGroup{Key: group.Key, Members: append([]imageinfo.Entry(nil), group.Members...)})
	}
	return g
}

// GroupKey is the name of path's immediate parent directory.
func GroupKey(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// GroupSequences groups entries by parent directory name in first-seen order.
// Two sequences in one directory share a group.
func GroupSequences(entries []imageinfo.Entry) Groups {
	var groups Groups
	index := make(map[string]int)
	for _, entry := range entries {
		key := GroupKey(entry.Path)
		if i, ok := index[key]; ok {
			groups[i].Members = append(groups[i].Members, entry)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, &ShotGroup{Key: key, Members: []imageinfo.Entry{entry}})
	}
	return groups
}
