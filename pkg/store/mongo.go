package store

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/archview/pkg/catalog"
	errs "github.com/matzehuels/archview/pkg/errors"
)

// Collection names.
const (
	SystemsCollection     = "systems"
	ConnectionsCollection = "connections"
	JourneysCollection    = "journeys"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "archview"

const mongoConnectTimeout = 10 * time.Second

// MongoStore keeps the catalog in MongoDB. Systems and connections use
// their id as _id; journey documents carry their relative file path.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *log.Logger
}

// journeyDocument is the stored form of a journey.
type journeyDocument struct {
	Path            string `bson:"path"`
	catalog.Journey `bson:",inline"`
}

// NewMongoStore connects to uri and pings the primary.
func NewMongoStore(ctx context.Context, uri, database string, logger *log.Logger) (*MongoStore, error) {
	if uri == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo store requires a connection URI")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "ping mongo")
	}

	return &MongoStore{client: client, db: client.Database(database), logger: loggerOrDefault(logger)}, nil
}

// Systems returns all systems ordered by id.
func (s *MongoStore) Systems(ctx context.Context) ([]catalog.System, error) {
	var out []catalog.System
	if err := s.findAll(ctx, SystemsCollection, "_id", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Connections returns all connections ordered by id.
func (s *MongoStore) Connections(ctx context.Context) ([]catalog.Connection, error) {
	var out []catalog.Connection
	if err := s.findAll(ctx, ConnectionsCollection, "_id", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Journeys returns all journeys ordered by path. Documents that fail
// validation are skipped with a warning, as the file store does.
func (s *MongoStore) Journeys(ctx context.Context) ([]catalog.JourneyEntry, error) {
	var docs []journeyDocument
	if err := s.findAll(ctx, JourneysCollection, "path", &docs); err != nil {
		return nil, err
	}
	entries := make([]catalog.JourneyEntry, 0, len(docs))
	for _, d := range docs {
		if d.Journey.Connections == nil {
			d.Journey.Connections = []string{}
		}
		if err := catalog.ValidateJourney(d.Journey); err != nil {
			s.logger.Warn("skipping journey", "path", d.Path, "error", err)
			continue
		}
		entries = append(entries, catalog.JourneyEntry{Journey: d.Journey, Path: d.Path})
	}
	return entries, nil
}

// Journey returns the journey stored at path.
func (s *MongoStore) Journey(ctx context.Context, path string) (catalog.Journey, error) {
	key, err := normalizeJourneyPath(path)
	if err != nil {
		return catalog.Journey{}, err
	}

	var doc journeyDocument
	err = s.db.Collection(JourneysCollection).
		FindOne(ctx, bson.D{{Key: "path", Value: key + catalog.JourneyFileSuffix}}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Journey{}, errs.New(errs.ErrCodeJourneyNotFound, "journey %q not found", key)
	}
	if err != nil {
		return catalog.Journey{}, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "find journey %q", key)
	}
	if doc.Journey.Connections == nil {
		doc.Journey.Connections = []string{}
	}
	return doc.Journey, nil
}

// SaveSystems validates systems and replaces the systems collection with a
// single ordered bulk write.
func (s *MongoStore) SaveSystems(ctx context.Context, systems []catalog.System) error {
	systems = nonNil(systems)
	if err := catalog.ValidateSystems(systems); err != nil {
		return err
	}
	return replaceAll(ctx, s.db.Collection(SystemsCollection), systems)
}

// Import replaces all three collections.
func (s *MongoStore) Import(ctx context.Context, c Catalog) error {
	if err := s.SaveSystems(ctx, c.Systems); err != nil {
		return err
	}
	conns := nonNil(c.Connections)
	if err := catalog.ValidateConnections(conns); err != nil {
		return err
	}
	if err := replaceAll(ctx, s.db.Collection(ConnectionsCollection), conns); err != nil {
		return err
	}

	docs := make([]journeyDocument, 0, len(c.Journeys))
	for _, e := range c.Journeys {
		if err := catalog.ValidateJourney(e.Journey); err != nil {
			return err
		}
		docs = append(docs, journeyDocument{Path: e.Path, Journey: e.Journey})
	}
	return replaceAll(ctx, s.db.Collection(JourneysCollection), docs)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findAll(ctx context.Context, collection, sortKey string, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "find %s", collection)
	}
	if err := cur.All(ctx, out); err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "decode %s", collection)
	}
	return nil
}

func replaceAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	models := make([]mongo.WriteModel, 0, len(docs)+1)
	models = append(models, mongo.NewDeleteManyModel().SetFilter(bson.D{}))
	for _, d := range docs {
		models = append(models, mongo.NewInsertOneModel().SetDocument(d))
	}
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "replace %s", coll.Name())
	}
	return nil
}

var (
	_ Store    = (*MongoStore)(nil)
	_ Importer = (*MongoStore)(nil)
)
