package catalog

import (
	"slices"
	"strings"
)

// OtherGroup is the group for journeys whose id has no "/" separator.
const OtherGroup = "Other"

// MatchSystem reports whether term matches the system's name, domain or any
// tag, case-insensitively. An empty term matches everything.
func MatchSystem(s System, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(s.Name), term) ||
		strings.Contains(strings.ToLower(s.Domain), term) {
		return true
	}
	return anyTagContains(s.Tags, term)
}

// MatchJourney reports whether term matches the journey's display name or any
// tag, case-insensitively. An empty term matches everything.
func MatchJourney(item JourneyListItem, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.DisplayName()), term) {
		return true
	}
	return anyTagContains(item.Tags, term)
}

func anyTagContains(tags []string, term string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), term) {
			return true
		}
	}
	return false
}

// FilterSystems returns the systems matching term, preserving order.
func FilterSystems(systems []System, term string) []System {
	out := make([]System, 0, len(systems))
	for _, s := range systems {
		if MatchSystem(s, term) {
			out = append(out, s)
		}
	}
	return out
}

// JourneyGroup is a named set of journeys sharing the first id segment.
type JourneyGroup struct {
	Name     string            `json:"name"`
	Journeys []JourneyListItem `json:"journeys"`
}

// GroupJourneys groups items by the first "/"-separated segment of their id.
// Ids without a separator land in [OtherGroup]. Groups are sorted by name and
// journeys within a group by display name.
func GroupJourneys(items []JourneyListItem) []JourneyGroup {
	byName := make(map[string][]JourneyListItem)
	for _, item := range items {
		group := OtherGroup
		if head, _, ok := strings.Cut(item.ID, "/"); ok {
			group = head
		}
		byName[group] = append(byName[group], item)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	groups := make([]JourneyGroup, 0, len(names))
	for _, name := range names {
		journeys := byName[name]
		slices.SortStableFunc(journeys, func(a, b JourneyListItem) int {
			return strings.Compare(a.DisplayName(), b.DisplayName())
		})
		groups = append(groups, JourneyGroup{Name: name, Journeys: journeys})
	}
	return groups
}

// Layers returns the sorted set of tags used by any connection. Tags act as
// toggleable layers that filter the diagram.
func Layers(connections []Connection) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range connections {
		for _, t := range c.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}
