package vfs

// Reconciliation partitions known entries against a fresh directory listing.
type Reconciliation struct {
	Reused  []*Entry // known entries still listed, in listing order
	Created []string // listed paths with no known entry
	Removed []*Entry // known entries no longer listed
}

// Reconcile merges the known entries, keyed by path, with the paths of a
// fresh listing. Removed is ordered by path.
func Reconcile(existing map[string]*Entry, listing []string) Reconciliation {
	var r Reconciliation
	listed := make(map[string]bool, len(listing))
	for _, path := range listing {
		if listed[path] {
			continue
		}
		listed[path] = true
		if e, ok := existing[path]; ok {
			r.Reused = append(r.Reused, e)
		} else {
			r.Created = append(r.Created, path)
		}
	}
	for path, e := range existing {
		if !listed[path] {
			r.Removed = append(r.Removed, e)
		}
	}
	sortByPath(r.Removed)
	return r
}
