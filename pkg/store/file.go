package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/catalog"
	errs "github.com/matzehuels/archview/pkg/errors"
)

// File names under the data root.
const (
	SystemsFile     = "systems.json"
	ConnectionsFile = "connections.json"
	JourneysDir     = "journeys"
)

// FileStore reads the catalog from a directory tree.
//
// Missing files are treated as empty collections. Journey files that fail
// to parse or validate are skipped with a warning so one bad file does not
// hide the rest.
type FileStore struct {
	root   string
	logger *log.Logger
}

// NewFileStore returns a store rooted at root. A nil logger uses log.Default().
func NewFileStore(root string, logger *log.Logger) *FileStore {
	return &FileStore{root: root, logger: loggerOrDefault(logger)}
}

// Root returns the data root directory.
func (s *FileStore) Root() string { return s.root }

// Systems reads systems.json.
func (s *FileStore) Systems(ctx context.Context) ([]catalog.System, error) {
	var doc catalog.SystemsDocument
	ok, err := s.readJSON(SystemsFile, &doc)
	if err != nil || !ok {
		return []catalog.System{}, err
	}
	if err := catalog.ValidateSystems(doc.Systems); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "%s", SystemsFile)
	}
	return nonNil(doc.Systems), nil
}

// Connections reads connections.json.
func (s *FileStore) Connections(ctx context.Context) ([]catalog.Connection, error) {
	var doc catalog.ConnectionsDocument
	ok, err := s.readJSON(ConnectionsFile, &doc)
	if err != nil || !ok {
		return []catalog.Connection{}, err
	}
	if err := catalog.ValidateConnections(doc.Connections); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "%s", ConnectionsFile)
	}
	return nonNil(doc.Connections), nil
}

// Journeys walks the journeys directory and loads every *.journey.json file
// in lexicographic order of its slash-separated relative path.
func (s *FileStore) Journeys(ctx context.Context) ([]catalog.JourneyEntry, error) {
	paths, err := s.journeyPaths()
	if err != nil {
		return nil, err
	}

	entries := make([]catalog.JourneyEntry, 0, len(paths))
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j, err := s.loadJourney(rel)
		if err != nil {
			s.logger.Warn("skipping journey", "path", rel, "error", err)
			continue
		}
		entries = append(entries, catalog.JourneyEntry{Journey: j, Path: rel})
	}
	return entries, nil
}

// Journey loads a single journey by path.
func (s *FileStore) Journey(ctx context.Context, path string) (catalog.Journey, error) {
	key, err := normalizeJourneyPath(path)
	if err != nil {
		return catalog.Journey{}, err
	}
	j, err := s.loadJourney(key + catalog.JourneyFileSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.Journey{}, errs.New(errs.ErrCodeJourneyNotFound, "journey %q not found", key)
	}
	return j, err
}

// SaveSystems validates systems and atomically rewrites systems.json.
func (s *FileStore) SaveSystems(ctx context.Context, systems []catalog.System) error {
	systems = nonNil(systems)
	if err := catalog.ValidateSystems(systems); err != nil {
		return err
	}
	return s.writeJSON(SystemsFile, catalog.SystemsDocument{Systems: systems})
}

// Import replaces the whole tree content. Existing journey files that are
// not part of c are left in place.
func (s *FileStore) Import(ctx context.Context, c Catalog) error {
	if err := s.SaveSystems(ctx, c.Systems); err != nil {
		return err
	}
	conns := nonNil(c.Connections)
	if err := catalog.ValidateConnections(conns); err != nil {
		return err
	}
	if err := s.writeJSON(ConnectionsFile, catalog.ConnectionsDocument{Connections: conns}); err != nil {
		return err
	}
	for _, e := range c.Journeys {
		if err := errs.ValidatePath(e.Path); err != nil {
			return err
		}
		if err := catalog.ValidateJourney(e.Journey); err != nil {
			return err
		}
		if err := s.writeJSON(filepath.Join(JourneysDir, filepath.FromSlash(e.Path)), e.Journey); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) journeyPaths() ([]string, error) {
	dir := filepath.Join(s.root, JourneysDir)
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), catalog.JourneyFileSuffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "read %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FileStore) loadJourney(rel string) (catalog.Journey, error) {
	var j catalog.Journey
	ok, err := s.readJSON(filepath.Join(JourneysDir, filepath.FromSlash(rel)), &j)
	if err != nil {
		return catalog.Journey{}, err
	}
	if !ok {
		return catalog.Journey{}, fs.ErrNotExist
	}
	if err := catalog.ValidateJourney(j); err != nil {
		return catalog.Journey{}, err
	}
	return j, nil
}

// readJSON decodes root/name into v. It reports false when the file does
// not exist.
func (s *FileStore) readJSON(name string, v any) (bool, error) {
	path := filepath.Join(s.root, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", name)
	}
	return true, nil
}

// writeJSON writes v as indented JSON via a temp file and rename.
func (s *FileStore) writeJSON(name string, v any) error {
	path := filepath.Join(s.root, name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode %s", name)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "create %s", filepath.Dir(name))
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "write %s", name)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "write %s", name)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "write %s", name)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

var (
	_ Store    = (*FileStore)(nil)
	_ Importer = (*FileStore)(nil)
)
