package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	writeFile(t, file, 3)

	tests := []struct {
		name string
		path string
		want Kind
	}{
		{"directory", dir, KindDir},
		{"file", file, KindFile},
		{"missing", filepath.Join(dir, "nope"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	t.Run("symlinks", func(t *testing.T) {
		dirLink := filepath.Join(dir, "dir-link")
		fileLink := filepath.Join(dir, "file-link")
		dangling := filepath.Join(dir, "dangling")
		symlink(t, dir, dirLink)
		symlink(t, file, fileLink)
		symlink(t, filepath.Join(dir, "gone"), dangling)

		if got := Classify(dirLink); got != KindDir {
			t.Errorf("Classify(link to dir) = %v, want dir", got)
		}
		if got := Classify(fileLink); got != KindFile {
			t.Errorf("Classify(link to file) = %v, want file", got)
		}
		if got := Classify(dangling); got != KindUnknown {
			t.Errorf("Classify(dangling link) = %v, want unknown", got)
		}
	})
}

func TestSymlinkedFileCountsTowardSize(t *testing.T) {
	root := filepath.Join(t.TempDir(), "R")
	writeFile(t, filepath.Join(root, "a.txt"), 10)
	target := filepath.Join(t.TempDir(), "big.bin")
	writeFile(t, target, 100)
	symlink(t, target, filepath.Join(root, "big-link"))

	tree := NewTree()
	r, err := tree.AddPath(root)
	if err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if err := tree.ComputeAllSizes(); err != nil {
		t.Fatalf("ComputeAllSizes() error = %v", err)
	}
	if r.Size != 110 {
		t.Errorf("R size = %d, want 110", r.Size)
	}
	if link := tree.FindEntry(filepath.Join(root, "big-link")); link == nil || !link.IsFile() || link.Size != 100 {
		t.Errorf("big-link entry = %+v", link)
	}
}

func TestSymlinkedRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "real")
	writeFile(t, filepath.Join(dir, "x"), 5)
	link := filepath.Join(t.TempDir(), "link")
	symlink(t, dir, link)

	tree := NewTree()
	r, err := tree.AddPath(link)
	if err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if !r.IsDir() || r.Path != link {
		t.Fatalf("root = %+v, want a directory at the link path", r)
	}
	_ = tree.ComputeAllSizes()
	if x := tree.FindEntry(filepath.Join(link, "x")); x == nil || x.Size != 5 || r.Size != 5 {
		t.Errorf("child under link = %+v, root size %d", x, r.Size)
	}
}

func TestSymlinkLoopIsNotFollowed(t *testing.T) {
	root := scenarioRoot(t)
	back := filepath.Join(root, "sub", "back")
	symlink(t, root, back)

	tree := NewTree()
	r, err := tree.AddPath(root)
	if err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	loop := tree.FindEntry(back)
	if loop == nil || !loop.IsDir() {
		t.Fatalf("loop entry = %+v, want an indexed directory", loop)
	}
	if len(loop.Children) != 0 {
		t.Errorf("loop entry has %d children, want 0", len(loop.Children))
	}
	if err := tree.ComputeAllSizes(); err != nil {
		t.Fatalf("ComputeAllSizes() error = %v", err)
	}
	if r.Size != 30 {
		t.Errorf("R size = %d, want 30", r.Size)
	}
	checkIndex(t, tree)
}

func TestSymlinkToSiblingIsFollowed(t *testing.T) {
	root := scenarioRoot(t)
	symlink(t, filepath.Join(root, "sub"), filepath.Join(root, "sub-link"))

	tree := NewTree()
	r, _ := tree.AddPath(root)
	_ = tree.ComputeAllSizes()
	if b := tree.FindEntry(filepath.Join(root, "sub-link", "b.txt")); b == nil || b.Size != 20 {
		t.Errorf("b.txt under sub-link = %+v", b)
	}
	if r.Size != 50 {
		t.Errorf("R size = %d, want 50", r.Size)
	}
}

func TestNewEntryCleansPath(t *testing.T) {
	root := scenarioRoot(t)
	sep := string(filepath.Separator)
	e, err := NewEntry(root+sep+"sub"+sep+".."+sep+"."+sep+"a.txt", nil)
	if err != nil {
		t.Fatalf("NewEntry() error = %v", err)
	}
	if want := filepath.Join(root, "a.txt"); e.Path != want {
		t.Errorf("Path = %q, want %q", e.Path, want)
	}
	if e.Name != "a.txt" || !e.IsFile() || !e.IsRoot() || e.Size != 0 {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestNewEntryLinksParent(t *testing.T) {
	root := scenarioRoot(t)
	parent, _ := NewEntry(root, nil)
	child, err := NewEntry(filepath.Join(root, "a.txt"), parent)
	if err != nil {
		t.Fatalf("NewEntry() error = %v", err)
	}
	if child.Parent != parent || len(parent.Children) != 1 || parent.Children[0] != child {
		t.Error("child not linked under parent")
	}
	if child.IsRoot() {
		t.Error("linked child reports IsRoot")
	}
}

func TestPopulateChildren(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(root, nil)
	if err := e.PopulateChildren(nil); err != nil {
		t.Fatalf("PopulateChildren() error = %v", err)
	}
	want := []string{
		root,
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub"),
		filepath.Join(root, "sub", "b.txt"),
	}
	if got := e.AllPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllPaths() = %v, want %v", got, want)
	}

	// A second pass only picks up names that are new on disk.
	writeFile(t, filepath.Join(root, "c.txt"), 1)
	if err := e.PopulateChildren(nil); err != nil {
		t.Fatalf("PopulateChildren() error = %v", err)
	}
	if got := names(e.Children); !reflect.DeepEqual(got, []string{"a.txt", "sub", "c.txt"}) {
		t.Errorf("children = %v", got)
	}
}

func TestPopulateChildrenOnFileIsNoop(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(filepath.Join(root, "a.txt"), nil)
	if err := e.PopulateChildren(nil); err != nil {
		t.Fatalf("PopulateChildren() on file error = %v", err)
	}
	if len(e.Children) != 0 {
		t.Errorf("file has %d children", len(e.Children))
	}
}

func TestPopulateChildrenRelinksOrphans(t *testing.T) {
	root := scenarioRoot(t)
	sub, _ := NewEntry(filepath.Join(root, "sub"), nil)
	if err := sub.PopulateChildren(nil); err != nil {
		t.Fatalf("PopulateChildren() error = %v", err)
	}
	if _, err := sub.ComputeSize(); err != nil {
		t.Fatalf("ComputeSize() error = %v", err)
	}
	grandchild := sub.Children[0]

	orphans := map[string]*Entry{sub.Path: sub}
	e, _ := NewEntry(root, nil)
	if err := e.PopulateChildren(orphans); err != nil {
		t.Fatalf("PopulateChildren() error = %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("orphans left = %d, want 0", len(orphans))
	}
	if sub.Parent != e {
		t.Fatal("orphan not relinked under the new parent")
	}
	if sub.Size != 20 {
		t.Errorf("relinked size = %d, want 20", sub.Size)
	}
	if len(sub.Children) != 1 || sub.Children[0] != grandchild {
		t.Error("relinked subtree was rebuilt instead of reused")
	}
}

func TestPopulateChildrenReadDirError(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(filepath.Join(root, "sub"), nil)
	if err := os.RemoveAll(e.Path); err != nil {
		t.Fatal(err)
	}
	err := e.PopulateChildren(nil)
	var fsErr *Error
	if !errors.As(err, &fsErr) || fsErr.Op != OpReadDir {
		t.Fatalf("PopulateChildren() error = %v, want readdir *Error", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
}

func TestComputeSizeVanishedFile(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(filepath.Join(root, "a.txt"), nil)
	if n, err := e.ComputeSize(); err != nil || n != 10 {
		t.Fatalf("ComputeSize() = %d, %v; want 10, nil", n, err)
	}
	if err := os.Remove(e.Path); err != nil {
		t.Fatal(err)
	}
	_, err := e.ComputeSize()
	var fsErr *Error
	if !errors.As(err, &fsErr) || fsErr.Op != OpStat || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ComputeSize() error = %v, want stat not-exist", err)
	}
	if e.Size != 10 {
		t.Errorf("cached size = %d after failure, want 10", e.Size)
	}
}

func TestComputeSizeRecomputesChildren(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(root, nil)
	_ = e.PopulateChildren(nil)
	if n, _ := e.ComputeSize(); n != 30 {
		t.Fatalf("ComputeSize() = %d, want 30", n)
	}
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 25)
	if n, _ := e.ComputeSize(); n != 35 {
		t.Errorf("ComputeSize() after growth = %d, want 35", n)
	}
	checkSizes(t, e)
}

func TestFindDescendants(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(root, nil)
	_ = e.PopulateChildren(nil)

	dirs := e.FindDescendants(func(d *Entry) bool { return d.IsDir() }, false)
	if got := names(dirs); !reflect.DeepEqual(got, []string{"R", "sub"}) {
		t.Errorf("all dirs = %v", got)
	}
	pruned := e.FindDescendants(func(d *Entry) bool { return d.IsDir() }, true)
	if got := names(pruned); !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("dirs with stopAtMatch = %v", got)
	}
	files := e.FindDescendants(func(d *Entry) bool { return d.IsFile() }, true)
	if got := names(files); !reflect.DeepEqual(got, []string{"a.txt", "b.txt"}) {
		t.Errorf("files = %v", got)
	}
}

func TestFindAncestors(t *testing.T) {
	root := scenarioRoot(t)
	e, _ := NewEntry(root, nil)
	_ = e.PopulateChildren(nil)
	b := e.Children[1].Children[0]

	all := b.FindAncestors(func(*Entry) bool { return true })
	if got := names(all); !reflect.DeepEqual(got, []string{"b.txt", "sub", "R"}) {
		t.Errorf("FindAncestors(all) = %v", got)
	}
	dirs := b.FindAncestors(func(d *Entry) bool { return d.IsDir() })
	if got := names(dirs); !reflect.DeepEqual(got, []string{"sub", "R"}) {
		t.Errorf("FindAncestors(dirs) = %v", got)
	}
}

func TestDetach(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "P")
	writeFile(t, filepath.Join(dir, "d", "x", "g.txt"), 1)
	writeFile(t, filepath.Join(dir, "d", "y.txt"), 1)
	p, _ := NewEntry(dir, nil)
	_ = p.PopulateChildren(nil)
	d := p.Children[0]
	x, y := d.Children[0], d.Children[1]

	d.Detach()

	if len(d.Children) != 0 {
		t.Errorf("detached entry has %d children", len(d.Children))
	}
	if d.Parent != nil || len(p.Children) != 0 {
		t.Error("detached entry still linked to its parent")
	}
	if x.Parent != nil || y.Parent != nil {
		t.Error("former children still point at the detached entry")
	}
	if len(x.Children) != 1 || x.Children[0].Parent != x {
		t.Error("grandchild subtree was not kept intact")
	}

	// Detaching a root is harmless.
	p.Detach()
	if !p.IsRoot() {
		t.Error("root lost IsRoot after Detach")
	}
}
