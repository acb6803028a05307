// Package vfs mirrors parts of the real filesystem as an in-memory tree
// of entries with cached sizes, and provides a cursor for browsing it.
//
// The tree is a cache: it is only as fresh as the last explicit populate
// or size computation, and nothing watches the disk for changes.
package vfs

import (
	"os"
	"path/filepath"

	"github.com/tw93/mole-vfs/internal/logging"
)

// Kind is the type of filesystem object an entry mirrors.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDir
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Classify reports whether path is a directory or a regular file.
// Symlinks are followed, so a link reads as whatever it points to. Missing
// paths, dangling links and special files are KindUnknown.
func Classify(path string) Kind {
	info, err := os.Stat(path)
	if err != nil {
		return KindUnknown
	}
	switch mode := info.Mode(); {
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindUnknown
	}
}

// Entry is one node of the tree. Children are owned by their parent;
// Parent is a back-reference used for upward traversal only.
type Entry struct {
	Path     string
	Name     string
	Kind     Kind
	Size     int64
	Parent   *Entry
	Children []*Entry
}

// NewEntry creates an entry for path, made absolute and cleaned, and links
// it under parent when parent is not nil.
func NewEntry(path string, parent *Entry) (*Entry, error) {
	abs, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Path: abs,
		Name: filepath.Base(abs),
		Kind: Classify(abs),
	}
	if parent != nil {
		parent.link(e)
	}
	return e, nil
}

func cleanPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", newError(OpResolve, path, err)
	}
	return abs, nil
}

func (e *Entry) IsDir() bool  { return e.Kind == KindDir }
func (e *Entry) IsFile() bool { return e.Kind == KindFile }
func (e *Entry) IsRoot() bool { return e.Parent == nil }

// TypeSymbol is the short type label shown in listings.
func (e *Entry) TypeSymbol() string {
	if e.IsDir() {
		return "DIR"
	}
	return ""
}

func (e *Entry) link(child *Entry) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// unlink removes e from its parent's children.
func (e *Entry) unlink() {
	if e.Parent == nil {
		return
	}
	siblings := e.Parent.Children
	for i, c := range siblings {
		if c == e {
			e.Parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	e.Parent = nil
}

// Detach unlinks e from its parent and unlinks its children from e. The
// children keep their own subtrees and can be reattached later.
func (e *Entry) Detach() {
	e.unlink()
	for _, c := range e.Children {
		c.Parent = nil
	}
	e.Children = nil
}

// PopulateChildren lists the directory on disk and links an entry for
// every name not already a child. Listed paths found in orphans are
// relinked as they are, keeping their sizes and subtrees, and deleted from
// the map. Newly created directories are populated recursively with the
// same orphans. It does nothing for entries that are not directories.
//
// A directory that resolves to the same real directory as one of its
// ancestors, through a symlink, is linked but left empty.
func (e *Entry) PopulateChildren(orphans map[string]*Entry) error {
	ancestors := make(map[string]bool)
	for a := e.Parent; a != nil; a = a.Parent {
		ancestors[realPath(a.Path)] = true
	}
	return e.populate(orphans, ancestors)
}

// realPath resolves every symlink in path, or returns path unchanged if
// it cannot be resolved.
func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func (e *Entry) populate(orphans map[string]*Entry, ancestors map[string]bool) error {
	if !e.IsDir() {
		return nil
	}
	target := realPath(e.Path)
	if ancestors[target] {
		logging.Debug("symlink cycle not followed",
			logging.String("path", e.Path),
			logging.String("target", target))
		return nil
	}
	ancestors[target] = true
	defer delete(ancestors, target)

	dirEntries, err := os.ReadDir(e.Path)
	if err != nil {
		return newError(OpReadDir, e.Path, err)
	}
	listing := make([]string, 0, len(dirEntries))
	for _, d := range dirEntries {
		listing = append(listing, filepath.Join(e.Path, d.Name()))
	}

	existing := make(map[string]*Entry, len(e.Children))
	for path, o := range orphans {
		if filepath.Dir(path) == e.Path {
			existing[path] = o
		}
	}
	for _, c := range e.Children {
		existing[c.Path] = c
	}

	plan := Reconcile(existing, listing)
	for _, r := range plan.Reused {
		if r.Parent == e {
			continue
		}
		r.unlink()
		e.link(r)
		delete(orphans, r.Path)
	}
	for _, s := range plan.Removed {
		if s.Parent == e {
			logging.Debug("entry missing on disk", logging.String("path", s.Path))
		}
	}
	for _, path := range plan.Created {
		child, err := NewEntry(path, e)
		if err != nil {
			return err
		}
		if err := child.populate(orphans, ancestors); err != nil {
			return err
		}
	}
	return nil
}

// ComputeSize recomputes and caches the size of e: the file length for a
// file, the sum of freshly computed child sizes for a directory, zero
// otherwise. On error the cached size of e is left untouched.
func (e *Entry) ComputeSize() (int64, error) {
	switch e.Kind {
	case KindFile:
		info, err := os.Stat(e.Path)
		if err != nil {
			return 0, newError(OpStat, e.Path, err)
		}
		e.Size = info.Size()
	case KindDir:
		var total int64
		for _, c := range e.Children {
			n, err := c.ComputeSize()
			if err != nil {
				return 0, err
			}
			total += n
		}
		e.Size = total
	default:
		e.Size = 0
	}
	return e.Size, nil
}

// Walk calls fn on e and every descendant, depth first in child order.
func (e *Entry) Walk(fn func(*Entry)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// FindDescendants returns e and its descendants matching match, depth
// first in child order. With stopAtMatch the search does not descend
// below a match.
func (e *Entry) FindDescendants(match func(*Entry) bool, stopAtMatch bool) []*Entry {
	var found []*Entry
	e.findDescendants(match, stopAtMatch, &found)
	return found
}

func (e *Entry) findDescendants(match func(*Entry) bool, stopAtMatch bool, found *[]*Entry) {
	if match(e) {
		*found = append(*found, e)
		if stopAtMatch {
			return
		}
	}
	for _, c := range e.Children {
		c.findDescendants(match, stopAtMatch, found)
	}
}

// FindAncestors returns e and its ancestors matching match, nearest first.
func (e *Entry) FindAncestors(match func(*Entry) bool) []*Entry {
	var found []*Entry
	for a := e; a != nil; a = a.Parent {
		if match(a) {
			found = append(found, a)
		}
	}
	return found
}

// AllPaths returns the path of e and of every descendant in pre-order.
func (e *Entry) AllPaths() []string {
	var paths []string
	e.Walk(func(d *Entry) {
		paths = append(paths, d.Path)
	})
	return paths
}
