// Package consolidate folds every stored journey into the synthetic
// "all journeys" view.
//
// The consolidated journey is the union of all journey connection lists,
// their explicit systems and the endpoints of every connection that resolves,
// plus the deduplicated owners, docs and tags of every journey. It is
// recomputed from scratch on each call and never stored.
//
//	all := consolidate.Consolidate(journeys, connections)
//	fmt.Println(all.ID) // "all"
//
// Output order follows input order, so callers that enumerate journeys in a
// stable order (the file store sorts by path) get byte-identical results for
// unchanged data. References that do not resolve are dropped silently.
package consolidate

import (
	"github.com/matzehuels/archview/pkg/catalog"
)

// Fixed presentation fields of the consolidated journey.
const (
	Name        = "All Journeys"
	Label       = "🌐 All Journeys"
	Description = "Consolidated view of all journeys in the system"
)

// Consolidate merges journeys into a single journey with id [catalog.AllJourneyID].
//
// Connection ids are unioned in first-seen order. Systems are the journeys'
// explicit systems followed by the endpoints of every unioned connection id
// that exists in connections (visited in connection-collection order). Owners
// are deduplicated by name, email and slack; docs by title and url; tags by
// value. The first occurrence always wins. Consolidate never fails.
func Consolidate(journeys []catalog.Journey, connections []catalog.Connection) catalog.Journey {
	connIDs := newOrderedSet()
	sysIDs := newOrderedSet()
	var (
		owners []catalog.Owner
		docs   []catalog.Doc
		tags   []string
	)

	for _, j := range journeys {
		connIDs.addAll(j.Connections)
		sysIDs.addAll(j.Systems)
		owners = append(owners, j.Owners...)
		docs = append(docs, j.Docs...)
		tags = append(tags, j.Tags...)
	}

	for _, c := range connections {
		if connIDs.has(c.ID) {
			sysIDs.add(c.From)
			sysIDs.add(c.To)
		}
	}

	return catalog.Journey{
		ID:          catalog.AllJourneyID,
		Name:        Name,
		Label:       Label,
		Description: Description,
		Connections: connIDs.items(),
		Systems:     sysIDs.items(),
		Owners:      DedupBy(owners, catalog.Owner.Key),
		Docs:        DedupBy(docs, catalog.Doc.Key),
		Tags:        DedupBy(tags, func(s string) string { return s }),
	}
}

// Entries is a convenience wrapper around [Consolidate] for journeys loaded
// together with their paths.
func Entries(entries []catalog.JourneyEntry, connections []catalog.Connection) catalog.Journey {
	journeys := make([]catalog.Journey, len(entries))
	for i, e := range entries {
		journeys[i] = e.Journey
	}
	return Consolidate(journeys, connections)
}

// DedupBy returns items with duplicates removed, where two items are
// duplicates when key returns the same string. The first occurrence is kept
// and relative order is preserved. The result is never nil.
func DedupBy[T any](items []T, key func(T) string) []T {
	seen := make(map[string]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

// orderedSet is a string set that remembers insertion order.
type orderedSet struct {
	index map[string]bool
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]bool)}
}

func (s *orderedSet) add(id string) {
	if s.index[id] {
		return
	}
	s.index[id] = true
	s.order = append(s.order, id)
}

func (s *orderedSet) addAll(ids []string) {
	for _, id := range ids {
		s.add(id)
	}
}

func (s *orderedSet) has(id string) bool { return s.index[id] }

// items returns the members in insertion order; never nil, so the
// connections list always serializes as an array.
func (s *orderedSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
