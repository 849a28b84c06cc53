// Package catalog defines the archview data model: systems, connections,
// journeys and the owners, docs and per-environment health attached to them.
//
// # Overview
//
// A catalog is three collections loaded from the entity store:
//
//   - [System]: a service in the architecture graph
//   - [Connection]: a directed integration between two systems
//   - [Journey]: a named subset of connections describing an end-to-end flow
//
// Connection endpoints and journey connection lists are plain id references.
// They are never required to resolve; consumers drop what they cannot find.
//
// # Validation
//
// [ValidateSystems], [ValidateConnections] and [ValidateJourney] check the
// fixed schema using go-playground/validator struct tags and report the first
// failing field as an INVALID_INPUT error:
//
//	if err := catalog.ValidateSystems(systems); err != nil {
//	    return err // e.g. "systems[2].docs[0].url: must be a valid URL"
//	}
//
// # Views
//
// What is drawn depends on explicit view state rather than globals. A [View]
// names the selected journey and the active connection-tag layers, and
// [Select] returns the systems and connections it makes visible:
//
//	systems, conns := catalog.Select(allSystems, allConns, catalog.View{
//	    Journey: &journey,
//	    Layers:  []string{"payments"},
//	})
//
// # Search
//
// [MatchSystem] and [MatchJourney] implement the case-insensitive sidebar
// search, and [GroupJourneys] groups journeys by the first segment of their id.
package catalog
