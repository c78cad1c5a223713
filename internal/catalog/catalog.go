// Package catalog enumerates the snapshots under a backup root.
//
// The catalog is never cached: every operation scans the root again, so
// decisions are always taken against the filesystem as it is right now.
// Ordering is defined by snapshot names alone; modification times are never
// consulted.
package catalog

import (
	"slices"
	"strings"

	"github.com/raoulx24/flameup/internal/errors"
	"github.com/raoulx24/flameup/internal/fs"
	"github.com/raoulx24/flameup/internal/snapshot"
)

// Catalog is a fully materialized listing of the snapshots under Root.
type Catalog struct {
	Root      string
	snapshots []snapshot.Snapshot
}

// Filter returns the names that belong to the catalog, in their original order.
func Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if snapshot.IsName(n) {
			out = append(out, n)
		}
	}
	return out
}

// FromNames builds a catalog from already-listed directory names.
func FromNames(root string, names []string) *Catalog {
	c := &Catalog{Root: root}
	for _, n := range Filter(names) {
		c.snapshots = append(c.snapshots, snapshot.New(root, n))
	}
	return c
}

// Scan lists the snapshot directories directly under root. A missing root
// yields an empty catalog: nothing has been backed up yet.
func Scan(fsys fs.FS, root string) (*Catalog, error) {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Catalog{Root: root}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return FromNames(root, names), nil
}

// Len returns the number of snapshots.
func (c *Catalog) Len() int {
	return len(c.snapshots)
}

// Contains reports whether a snapshot called name exists.
func (c *Catalog) Contains(name string) bool {
	return slices.ContainsFunc(c.snapshots, func(s snapshot.Snapshot) bool {
		return s.Name == name
	})
}

// OldestFirst returns the snapshots in ascending name order.
func (c *Catalog) OldestFirst() []snapshot.Snapshot {
	out := slices.Clone(c.snapshots)
	slices.SortFunc(out, func(a, b snapshot.Snapshot) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// NewestFirst returns the snapshots in descending name order.
func (c *Catalog) NewestFirst() []snapshot.Snapshot {
	out := slices.Clone(c.snapshots)
	slices.SortFunc(out, func(a, b snapshot.Snapshot) int {
		return strings.Compare(b.Name, a.Name)
	})
	return out
}
