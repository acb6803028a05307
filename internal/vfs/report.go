package vfs

import (
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Filter holds exclude rules. A rule is a glob matched against an entry's
// name and against its full path; an entry is excluded when it or any
// ancestor matches a rule.
type Filter struct {
	patterns []string
}

// NewFilter returns a filter with the given exclude rules.
func NewFilter(patterns ...string) *Filter {
	f := &Filter{}
	for _, p := range patterns {
		f.Exclude(p)
	}
	return f
}

// Exclude adds a rule. It reports false if the rule is already present.
func (f *Filter) Exclude(pattern string) bool {
	if pattern == "" || slices.Contains(f.patterns, pattern) {
		return false
	}
	f.patterns = append(f.patterns, pattern)
	return true
}

// Include removes a rule. It reports false if the rule was not present.
func (f *Filter) Include(pattern string) bool {
	i := slices.Index(f.patterns, pattern)
	if i < 0 {
		return false
	}
	f.patterns = slices.Delete(f.patterns, i, i+1)
	return true
}

// Patterns returns the rules in the order they were added.
func (f *Filter) Patterns() []string {
	return slices.Clone(f.patterns)
}

// Matches reports whether a rule matches e itself.
func (f *Filter) Matches(e *Entry) bool {
	return f.rule(e) != ""
}

func (f *Filter) rule(e *Entry) string {
	if f == nil {
		return ""
	}
	for _, p := range f.patterns {
		if p == e.Path {
			return p
		}
		if ok, _ := filepath.Match(p, e.Name); ok {
			return p
		}
		if ok, _ := filepath.Match(p, e.Path); ok {
			return p
		}
	}
	return ""
}

// Excluded reports whether e or one of its ancestors matches a rule.
func (f *Filter) Excluded(e *Entry) bool {
	return f.ExcludedBy(e) != ""
}

// ExcludedBy returns the rule that excludes e, looking at e first and then
// at its ancestors nearest first, or "" when e is included.
func (f *Filter) ExcludedBy(e *Entry) string {
	matched := e.FindAncestors(f.Matches)
	if len(matched) == 0 {
		return ""
	}
	return f.rule(matched[0])
}

// Status summarises how a filter affects an entry.
type Status string

const (
	StatusIncluded Status = "included"
	StatusExcluded Status = "excluded"
	StatusPartial  Status = "partial"
)

// Annotation is the filter bookkeeping for one entry. Sizes and counts
// cover the entry and everything below it.
type Annotation struct {
	Status        Status
	IncludedSize  int64
	ExcludedSize  int64
	IncludedDirs  int
	IncludedFiles int
	ExcludedDirs  int
	ExcludedFiles int
}

// Report holds annotations for every entry of a tree, keyed by path. It is
// a snapshot built from cached sizes and goes stale like them.
type Report struct {
	annotations map[string]Annotation
}

// BuildReport annotates every entry of t under f. A nil filter includes everything.
func BuildReport(t *Tree, f *Filter) *Report {
	r := &Report{annotations: make(map[string]Annotation, t.Len())}
	for _, root := range t.roots {
		r.annotate(root, f, false)
	}
	return r
}

func (r *Report) annotate(e *Entry, f *Filter, excludedAbove bool) Annotation {
	excluded := excludedAbove || f.Matches(e)
	var a Annotation
	switch {
	case e.IsDir():
		if excluded {
			a.ExcludedDirs = 1
		} else {
			a.IncludedDirs = 1
		}
		for _, c := range e.Children {
			ca := r.annotate(c, f, excluded)
			a.IncludedSize += ca.IncludedSize
			a.ExcludedSize += ca.ExcludedSize
			a.IncludedDirs += ca.IncludedDirs
			a.IncludedFiles += ca.IncludedFiles
			a.ExcludedDirs += ca.ExcludedDirs
			a.ExcludedFiles += ca.ExcludedFiles
		}
	case e.IsFile():
		if excluded {
			a.ExcludedFiles = 1
			a.ExcludedSize = e.Size
		} else {
			a.IncludedFiles = 1
			a.IncludedSize = e.Size
		}
	}
	switch {
	case excluded:
		a.Status = StatusExcluded
	case a.ExcludedDirs+a.ExcludedFiles > 0:
		a.Status = StatusPartial
	default:
		a.Status = StatusIncluded
	}
	r.annotations[e.Path] = a
	return a
}

// ReportKey identifies the report BuildReport(t, f) would produce. Two
// calls return the same key only if the tree structure, its cached sizes
// and the filter rules are all unchanged, so a caller can keep a report
// while the key holds.
func ReportKey(t *Tree, f *Filter) uint64 {
	h := xxhash.New()
	t.hashInto(h)
	_, _ = h.Write([]byte{0xff})
	if f != nil {
		for _, p := range f.patterns {
			_, _ = h.WriteString(p)
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Get returns the annotation for e. Entries the report has not seen read
// as fully included.
func (r *Report) Get(e *Entry) Annotation {
	if r != nil {
		if a, ok := r.annotations[e.Path]; ok {
			return a
		}
	}
	a := Annotation{Status: StatusIncluded, IncludedSize: e.Size}
	switch {
	case e.IsDir():
		a.IncludedDirs = 1
	case e.IsFile():
		a.IncludedFiles = 1
	}
	return a
}

// IncludedSize is a SizeFunc sorting by the size left after exclusions.
func (r *Report) IncludedSize(e *Entry) int64 {
	return r.Get(e).IncludedSize
}
