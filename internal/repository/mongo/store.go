// Package mongo is the production Store, backed by the official MongoDB driver.
package mongo

import (
	"context"
	"fmt"
	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/schema"
	"streamdb/internal/shared"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database
	Logger *logrus.Logger
}

var _ repository.Store = (*Store)(nil)

// Connect opens a client for uri and selects database. No round trip is
// made; use Ping to check connectivity.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, logger *logrus.Logger) (*Store, error) {
	if !shared.SafeNameRegex.MatchString(database) {
		return nil, fmt.Errorf("mongo database %q: %w", database, shared.ErrInvalidName)
	}
	if logger == nil {
		logger = logrus.New()
	}

	opts := options.Client().
		ApplyURI(uri).
		SetReadPreference(readpref.Primary()).
		SetWriteConcern(writeconcern.Majority())
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not create mongo client: %w", err)
	}
	return &Store{Client: client, DB: client.Database(database), Logger: logger}, nil
}

func (s *Store) DatabaseName() string { return s.DB.Name() }

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// CreateCollection creates c with its $jsonSchema validator.
func (s *Store) CreateCollection(ctx context.Context, c schema.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	names, err := s.DB.ListCollectionNames(ctx, bson.M{"name": c.Name})
	if err != nil {
		return mapError("list collections", err)
	}
	if len(names) > 0 {
		return fmt.Errorf("collection %s: %w", c.Name, shared.ErrAlreadyExists)
	}

	opts := options.CreateCollection().
		SetValidator(JSONSchema(c)).
		SetValidationLevel("strict").
		SetValidationAction("error")
	s.Logger.Debugf("CreateCollection: %s", c.Name)
	if err := s.DB.CreateCollection(ctx, c.Name, opts); err != nil {
		return mapError("create collection "+c.Name, err)
	}
	return nil
}

// CreateIndex creates idx unless an index with the same name already exists.
func (s *Store) CreateIndex(ctx context.Context, collection string, idx schema.Index) error {
	if err := idx.Validate(); err != nil {
		return err
	}
	coll := s.DB.Collection(collection)

	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return mapError("list indexes on "+collection, err)
	}
	var existing []bson.M
	if err := cur.All(ctx, &existing); err != nil {
		return mapError("list indexes on "+collection, err)
	}
	for _, e := range existing {
		if e["name"] == idx.Name {
			return fmt.Errorf("index %s on %s: %w", idx.Name, collection, shared.ErrAlreadyExists)
		}
	}

	s.Logger.Debugf("CreateIndex: %s on %s", idx.Name, collection)
	if _, err := coll.Indexes().CreateOne(ctx, IndexModel(idx)); err != nil {
		return mapError(fmt.Sprintf("create index %s on %s", idx.Name, collection), err)
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter models.Filter) (models.Document, error) {
	var m bson.M
	err := s.DB.Collection(collection).FindOne(ctx, toFilter(filter)).Decode(&m)
	if err != nil {
		return nil, mapError(fmt.Sprintf("find %s %v", collection, filter), err)
	}
	return toDocument(m), nil
}

// FindOneSecondary reads with the secondaryPreferred read preference, so a
// document written on the primary shows up once it has been replicated.
func (s *Store) FindOneSecondary(ctx context.Context, collection string, filter models.Filter) (models.Document, error) {
	coll := s.DB.Collection(collection, options.Collection().SetReadPreference(readpref.SecondaryPreferred()))
	var m bson.M
	if err := coll.FindOne(ctx, toFilter(filter)).Decode(&m); err != nil {
		return nil, mapError(fmt.Sprintf("find %s %v on secondary", collection, filter), err)
	}
	return toDocument(m), nil
}

func (s *Store) CountDocuments(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	n, err := s.DB.Collection(collection).CountDocuments(ctx, toFilter(filter))
	if err != nil {
		return 0, mapError("count "+collection, err)
	}
	return n, nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc models.Document) (interface{}, error) {
	res, err := s.DB.Collection(collection).InsertOne(ctx, toBSON(doc))
	if err != nil {
		return nil, mapError("insert into "+collection, err)
	}
	return res.InsertedID, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, id interface{}) (int64, error) {
	res, err := s.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, mapError("delete from "+collection, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	res, err := s.DB.Collection(collection).DeleteMany(ctx, toFilter(filter))
	if err != nil {
		return 0, mapError("delete from "+collection, err)
	}
	return res.DeletedCount, nil
}
