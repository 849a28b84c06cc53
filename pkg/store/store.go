// Package store loads and saves the architecture catalog.
//
// A [Store] returns systems, connections and journeys as plain slices. Each
// call reads the backend afresh; callers that need a consistent view load
// everything once per request. Two backends exist:
//
//   - [FileStore] reads a JSON tree rooted at a data directory:
//     systems.json, connections.json and journeys/**/*.journey.json.
//   - [MongoStore] reads the same documents from MongoDB collections.
//
// Writes are limited to replacing the system list (the only mutation the
// API exposes) and to [Seed], which installs the sample catalog.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/catalog"
	errs "github.com/matzehuels/archview/pkg/errors"
)

// Store is the entity store consumed by the pipeline and the API.
type Store interface {
	// Systems returns every system in storage order.
	Systems(ctx context.Context) ([]catalog.System, error)

	// Connections returns every connection in storage order.
	Connections(ctx context.Context) ([]catalog.Connection, error)

	// Journeys returns every journey sorted by path.
	Journeys(ctx context.Context) ([]catalog.JourneyEntry, error)

	// Journey returns the journey stored at path. The ".journey.json"
	// suffix is optional.
	Journey(ctx context.Context, path string) (catalog.Journey, error)

	// SaveSystems validates and replaces the system list.
	SaveSystems(ctx context.Context, systems []catalog.System) error

	// Close releases backend resources.
	Close() error
}

// Importer is a store that can replace its whole content.
type Importer interface {
	Import(ctx context.Context, c Catalog) error
}

// Catalog is the full content of a store.
type Catalog struct {
	Systems     []catalog.System
	Connections []catalog.Connection
	Journeys    []catalog.JourneyEntry
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	DataRoot      string
	MongoURI      string
	MongoDatabase string
	Logger        *log.Logger
}

// Open returns the store selected by opts.Backend. An empty backend means
// the file store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.DataRoot, opts.Logger), nil
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be %s or %s)", opts.Backend, BackendFile, BackendMongo)
	}
}

// LoadCatalog reads systems, connections and journeys from s.
func LoadCatalog(ctx context.Context, s Store) (Catalog, error) {
	systems, err := s.Systems(ctx)
	if err != nil {
		return Catalog{}, err
	}
	conns, err := s.Connections(ctx)
	if err != nil {
		return Catalog{}, err
	}
	journeys, err := s.Journeys(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Systems: systems, Connections: conns, Journeys: journeys}, nil
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.Default()
}

// normalizeJourneyPath validates a journey lookup path and strips the
// journey file suffix and an optional "journeys/" prefix.
func normalizeJourneyPath(path string) (string, error) {
	path = strings.TrimPrefix(path, JourneysDir+"/")
	if err := errs.ValidatePath(path); err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, catalog.JourneyFileSuffix), nil
}
