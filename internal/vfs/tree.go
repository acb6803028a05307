package vfs

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tw93/mole-vfs/internal/logging"
)

// Tree is a forest of independently added root entries plus a flat index
// of every entry reachable from them, keyed by path.
//
// A Tree is not safe for concurrent use, except that
// ComputeAllSizesParallel measures disjoint roots concurrently.
type Tree struct {
	roots []*Entry
	index map[string]*Entry
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{index: make(map[string]*Entry)}
}

// AddPath adds path as a root and eagerly populates it if it is a
// directory. A path already in the tree is returned as is. Existing roots
// below the new path are adopted into its subtree with their sizes intact,
// so roots never overlap.
func (t *Tree) AddPath(path string) (*Entry, error) {
	abs, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	if e, ok := t.index[abs]; ok {
		return e, nil
	}

	root, err := NewEntry(abs, nil)
	if err != nil {
		return nil, err
	}

	orphans := make(map[string]*Entry)
	for _, r := range t.roots {
		if isWithin(abs, r.Path) {
			orphans[r.Path] = r
		}
	}
	candidates := make(map[string]*Entry, len(orphans))
	for p, o := range orphans {
		candidates[p] = o
	}

	if err := root.PopulateChildren(orphans); err != nil {
		// Roots adopted before the failure go back to being roots.
		for p, o := range candidates {
			if _, left := orphans[p]; !left {
				o.unlink()
			}
		}
		return nil, err
	}

	adopted := 0
	t.roots = slices.DeleteFunc(t.roots, func(r *Entry) bool {
		if _, left := orphans[r.Path]; left {
			return false
		}
		if _, was := candidates[r.Path]; was {
			adopted++
			return true
		}
		return false
	})
	t.roots = append(t.roots, root)
	root.Walk(func(e *Entry) {
		t.index[e.Path] = e
	})

	logging.Debug("path added",
		logging.String("path", abs),
		logging.String("kind", root.Kind.String()),
		logging.Int("adopted_roots", adopted),
		logging.Int("indexed", len(t.index)),
	)
	return root, nil
}

// isWithin reports whether child lies strictly below dir.
func isWithin(dir, child string) bool {
	if dir == child {
		return false
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	return strings.HasPrefix(child, prefix)
}

// Remove drops the entry at path and its whole subtree from the tree.
// It reports false, changing nothing, when path is not in the tree.
func (t *Tree) Remove(path string) bool {
	e := t.FindEntry(path)
	if e == nil {
		return false
	}
	removed := 0
	e.Walk(func(d *Entry) {
		delete(t.index, d.Path)
		removed++
	})
	if e.IsRoot() {
		t.roots = slices.DeleteFunc(t.roots, func(r *Entry) bool { return r == e })
	} else {
		e.unlink()
	}
	logging.Debug("entry removed", logging.String("path", e.Path), logging.Int("entries", removed))
	return true
}

// RemoveAll empties the tree.
func (t *Tree) RemoveAll() {
	t.roots = nil
	t.index = make(map[string]*Entry)
	logging.Debug("tree cleared")
}

// ComputeAllSizes recomputes the size of every root and everything below
// it. The first filesystem error aborts the computation and is returned.
func (t *Tree) ComputeAllSizes() error {
	start := time.Now()
	var total int64
	for _, r := range t.roots {
		n, err := r.ComputeSize()
		if err != nil {
			return err
		}
		total += n
	}
	logging.Debug("sizes computed",
		logging.Int("roots", len(t.roots)),
		logging.Int64("bytes", total),
		logging.Duration("took", time.Since(start)),
	)
	return nil
}

// ComputeAllSizesParallel is ComputeAllSizes with up to limit roots
// measured at once. Roots never share entries, so each goroutine owns
// its subtree for the duration of the call.
func (t *Tree) ComputeAllSizesParallel(ctx context.Context, limit int) error {
	if limit < 1 {
		limit = 1
	}
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, r := range t.roots {
		r := r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := r.ComputeSize()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Debug("sizes computed",
		logging.Int("roots", len(t.roots)),
		logging.Int("workers", limit),
		logging.Duration("took", time.Since(start)),
	)
	return nil
}

// ComputeSizes recomputes only the entries at the given paths.
func (t *Tree) ComputeSizes(paths ...string) error {
	for _, p := range paths {
		e := t.FindEntry(p)
		if e == nil {
			return newError(OpLookup, p, ErrNotFound)
		}
		if _, err := e.ComputeSize(); err != nil {
			return err
		}
	}
	return nil
}

// FindEntry returns the entry at path, or nil.
func (t *Tree) FindEntry(path string) *Entry {
	abs, err := cleanPath(path)
	if err != nil {
		return nil
	}
	return t.index[abs]
}

// Roots returns the root entries in the order they were added.
func (t *Tree) Roots() []*Entry {
	return slices.Clone(t.roots)
}

// RootDirCount returns the number of directory roots.
func (t *Tree) RootDirCount() int {
	n := 0
	for _, r := range t.roots {
		if r.IsDir() {
			n++
		}
	}
	return n
}

// RootFileCount returns the number of file roots.
func (t *Tree) RootFileCount() int {
	n := 0
	for _, r := range t.roots {
		if r.IsFile() {
			n++
		}
	}
	return n
}

// Len returns the number of indexed entries.
func (t *Tree) Len() int {
	return len(t.index)
}

// Entries returns every indexed entry ordered by path.
func (t *Tree) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.index))
	for _, e := range t.index {
		out = append(out, e)
	}
	sortByPath(out)
	return out
}

// TotalSize returns the sum of the cached root sizes.
func (t *Tree) TotalSize() int64 {
	var total int64
	for _, r := range t.roots {
		total += r.Size
	}
	return total
}

// Fingerprint hashes the structure and cached sizes of every entry. It
// changes after any add, remove or size computation that alters the tree.
func (t *Tree) Fingerprint() uint64 {
	h := xxhash.New()
	t.hashInto(h)
	return h.Sum64()
}

func (t *Tree) hashInto(h *xxhash.Digest) {
	var buf [9]byte
	for _, r := range t.roots {
		r.Walk(func(e *Entry) {
			_, _ = h.WriteString(e.Path)
			buf[0] = byte(e.Kind)
			binary.LittleEndian.PutUint64(buf[1:], uint64(e.Size))
			_, _ = h.Write(buf[:])
		})
	}
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree{roots: %d, entries: %d}", len(t.roots), len(t.index))
}

func sortByPath(entries []*Entry) {
	slices.SortFunc(entries, func(a, b *Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
}
