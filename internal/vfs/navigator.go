package vfs

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// SizeFunc returns the size an entry is sorted by.
type SizeFunc func(*Entry) int64

// EntrySize sorts by the cached entry size.
func EntrySize(e *Entry) int64 { return e.Size }

// Navigator is a browsing cursor over a Tree. It is either at the roots
// (Current is nil) or inside a directory entry, and caches the sorted
// children of that location. The cache is only rebuilt by Refresh and the
// navigation calls; after mutating the tree, call Refresh before trusting
// Children again.
type Navigator struct {
	tree     *Tree
	current  *Entry
	children []*Entry
	sizeOf   SizeFunc
}

// NewNavigator returns a navigator at the roots of t.
func NewNavigator(t *Tree) *Navigator {
	n := &Navigator{tree: t, sizeOf: EntrySize}
	n.Refresh()
	return n
}

// Current returns the directory being viewed, or nil at the roots.
func (n *Navigator) Current() *Entry { return n.current }

// AtRoots reports whether the navigator is viewing the tree roots.
func (n *Navigator) AtRoots() bool { return n.current == nil }

// Children returns the cached, sorted children of the current location.
func (n *Navigator) Children() []*Entry { return n.children }

// SetSizeFunc changes the sort metric and refreshes. A nil fn restores EntrySize.
func (n *Navigator) SetSizeFunc(fn SizeFunc) {
	if fn == nil {
		fn = EntrySize
	}
	n.sizeOf = fn
	n.Refresh()
}

// Open moves into the directory at path. Paths that are not in the tree or
// are not directories leave the navigator where it is and report false.
func (n *Navigator) Open(path string) bool {
	e := n.tree.FindEntry(path)
	if e == nil || !e.IsDir() {
		return false
	}
	n.current = e
	n.Refresh()
	return true
}

// Back moves to the parent directory, or to the roots from a root entry.
// At the roots it only refreshes.
func (n *Navigator) Back() {
	if n.current != nil {
		n.current = n.current.Parent
	}
	n.Refresh()
}

// ToRoots moves to the roots.
func (n *Navigator) ToRoots() {
	n.current = nil
	n.Refresh()
}

// Refresh rebuilds the children cache: directories first, each group by
// descending size, ties in tree order. If the current directory has been
// removed from the tree the navigator falls back to the roots.
func (n *Navigator) Refresh() {
	if n.current != nil && n.tree.FindEntry(n.current.Path) != n.current {
		n.current = nil
	}
	var children []*Entry
	if n.current == nil {
		children = n.tree.Roots()
	} else {
		children = slices.Clone(n.current.Children)
	}
	slices.SortStableFunc(children, func(a, b *Entry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		sa, sb := n.sizeOf(a), n.sizeOf(b)
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		default:
			return 0
		}
	})
	if children == nil {
		children = []*Entry{}
	}
	n.children = children
}

// Fingerprint hashes the current location and its cached rows. It changes
// whenever a refresh produces a different listing.
func (n *Navigator) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	if n.current != nil {
		_, _ = h.WriteString(n.current.Path)
	}
	_, _ = h.Write([]byte{0})
	for _, c := range n.children {
		_, _ = h.WriteString(c.Path)
		binary.LittleEndian.PutUint64(buf[:], uint64(n.sizeOf(c)))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
