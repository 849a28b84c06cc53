package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/archview/pkg/catalog"
)

// FileCheck summarises one file or directory under the data root.
type FileCheck struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Err   error  `json:"-"`
}

// Report is the result of [Check].
type Report struct {
	Root     string      `json:"root"`
	Missing  bool        `json:"missing"`
	Files    []FileCheck `json:"files"`
	Warnings []string    `json:"warnings"`
}

// OK reports whether every file loaded cleanly. Warnings do not fail a check.
func (r Report) OK() bool {
	for _, f := range r.Files {
		if f.Err != nil {
			return false
		}
	}
	return true
}

// Check inspects the data tree at root. A missing root is not an error: it
// is reported as Missing so callers can suggest seeding it.
//
// Dangling references (journey connection ids that do not exist, connection
// endpoints that are not systems) are listed as warnings only; loading and
// rendering tolerate them.
func Check(ctx context.Context, root string) Report {
	r := Report{Root: root, Files: []FileCheck{}, Warnings: []string{}}
	if _, err := os.Stat(root); err != nil {
		r.Missing = true
		return r
	}

	fs := NewFileStore(root, nil)

	systems, err := fs.Systems(ctx)
	r.Files = append(r.Files, FileCheck{Name: SystemsFile, Count: len(systems), Err: err})

	conns, err := fs.Connections(ctx)
	r.Files = append(r.Files, FileCheck{Name: ConnectionsFile, Count: len(conns), Err: err})

	if _, err := os.Stat(filepath.Join(root, JourneysDir)); err != nil {
		r.Warnings = append(r.Warnings, JourneysDir+"/ directory does not exist")
	}

	paths, err := fs.journeyPaths()
	loaded := 0
	var journeys []catalog.JourneyEntry
	if err == nil {
		for _, p := range paths {
			j, jerr := fs.loadJourney(p)
			if jerr != nil {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s/%s: %v", JourneysDir, p, jerr))
				continue
			}
			loaded++
			journeys = append(journeys, catalog.JourneyEntry{Journey: j, Path: p})
		}
	}
	r.Files = append(r.Files, FileCheck{Name: JourneysDir + "/", Count: loaded, Err: err})

	r.Warnings = append(r.Warnings, danglingReferences(systems, conns, journeys)...)
	return r
}

func danglingReferences(systems []catalog.System, conns []catalog.Connection, journeys []catalog.JourneyEntry) []string {
	var out []string
	sysIdx := catalog.SystemIndex(systems)
	connIdx := catalog.ConnectionIndex(conns)

	for _, c := range conns {
		for _, end := range []string{c.From, c.To} {
			if _, ok := sysIdx[end]; !ok {
				out = append(out, fmt.Sprintf("connection %s references unknown system %q", c.ID, end))
			}
		}
	}
	for _, e := range journeys {
		for _, id := range e.Journey.Connections {
			if _, ok := connIdx[id]; !ok {
				out = append(out, fmt.Sprintf("journey %s references unknown connection %q", e.Journey.ID, id))
			}
		}
		for _, id := range e.Journey.Systems {
			if _, ok := sysIdx[id]; !ok {
				out = append(out, fmt.Sprintf("journey %s references unknown system %q", e.Journey.ID, id))
			}
		}
	}
	return out
}
