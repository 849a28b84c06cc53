package catalog

// View is the explicit presentation state that decides what is drawn.
// A nil Journey shows the whole catalog; empty Layers disables tag filtering.
type View struct {
	Journey *Journey
	Layers  []string
	Env     Env
}

// Select returns the systems and connections visible under v.
//
// A connection is visible when it carries one of the active layers (or no
// layers are active) and belongs to the journey (or no journey is selected).
// Visible systems are the journey's explicit systems plus every endpoint of a
// visible connection. Endpoints that name no known system are counted but
// produce no system; the layout reports such connections with empty routes.
// Both results keep catalog order.
func Select(systems []System, connections []Connection, v View) ([]System, []Connection) {
	layers := make(map[string]bool, len(v.Layers))
	for _, l := range v.Layers {
		layers[l] = true
	}

	var inJourney map[string]bool
	if v.Journey != nil {
		inJourney = make(map[string]bool, len(v.Journey.Connections))
		for _, id := range v.Journey.Connections {
			inJourney[id] = true
		}
	}

	visibleConns := make([]Connection, 0, len(connections))
	for _, c := range connections {
		if len(layers) > 0 && !c.HasAnyTag(layers) {
			continue
		}
		if inJourney != nil && !inJourney[c.ID] {
			continue
		}
		visibleConns = append(visibleConns, c)
	}

	visibleIDs := VisibleSystemIDs(v.Journey, visibleConns)
	visibleSystems := make([]System, 0, len(visibleIDs))
	for _, s := range systems {
		if visibleIDs[s.ID] {
			visibleSystems = append(visibleSystems, s)
		}
	}

	return visibleSystems, visibleConns
}

// VisibleSystemIDs returns the journey's explicit systems plus the endpoints
// of conns. The ids are not checked against the system collection.
func VisibleSystemIDs(j *Journey, conns []Connection) map[string]bool {
	ids := make(map[string]bool)
	if j != nil {
		for _, id := range j.Systems {
			ids[id] = true
		}
	}
	for _, c := range conns {
		ids[c.From] = true
		ids[c.To] = true
	}
	return ids
}
