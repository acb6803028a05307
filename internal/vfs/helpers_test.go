package vfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates path, and any missing parents, holding size bytes.
func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

// scenarioRoot lays out R/a.txt (10 bytes) and R/sub/b.txt (20 bytes).
func scenarioRoot(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "R")
	writeFile(t, filepath.Join(root, "a.txt"), 10)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 20)
	return root
}

// reachable collects every entry reachable from the roots of tree.
func reachable(tree *Tree) map[*Entry]bool {
	seen := make(map[*Entry]bool)
	for _, r := range tree.Roots() {
		r.Walk(func(e *Entry) { seen[e] = true })
	}
	return seen
}

func checkIndex(t *testing.T, tree *Tree) {
	t.Helper()
	seen := reachable(tree)
	indexed := tree.Entries()
	if len(indexed) != len(seen) {
		t.Fatalf("index holds %d entries, %d reachable", len(indexed), len(seen))
	}
	for _, e := range indexed {
		if !seen[e] {
			t.Errorf("indexed entry %s is not reachable", e.Path)
		}
		if tree.FindEntry(e.Path) != e {
			t.Errorf("FindEntry(%s) does not return the indexed entry", e.Path)
		}
	}
}

func checkSizes(t *testing.T, e *Entry) {
	t.Helper()
	e.Walk(func(d *Entry) {
		if !d.IsDir() {
			return
		}
		var sum int64
		for _, c := range d.Children {
			sum += c.Size
		}
		if d.Size != sum {
			t.Errorf("%s size = %d, children sum to %d", d.Path, d.Size, sum)
		}
	})
}

func names(entries []*Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
