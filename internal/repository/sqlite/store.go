// filepath: internal/repository/sqlite/store.go
// Package sqlite is an embedded Store backed by modernc.org/sqlite. It is
// used for local development and tests; validators become CHECK constraints.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/schema"
	"streamdb/internal/shared"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

type Store struct {
	DB      *sql.DB
	Cache   *cache.Cache
	Builder squirrel.StatementBuilderType // SQL Query Builder
	Logger  *logrus.Logger

	name    string
	path    string
	entropy *ulid.MonotonicEntropy
}

var _ repository.Store = (*Store)(nil)

// New opens (or creates) the database file at path. name is the logical
// database name reported in statistics.
func New(path, name string, logger *logrus.Logger) (*Store, error) {
	if !shared.SafeNameRegex.MatchString(name) {
		return nil, fmt.Errorf("sqlite store %q: %w", name, shared.ErrInvalidName)
	}
	if logger == nil {
		logger = logrus.New()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	// One connection keeps ":memory:" databases and the CHECK functions consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(metaSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize database: %w", err)
	}

	return &Store{
		DB:      db,
		Cache:   cache.New(cache.NoExpiration, 10*time.Minute),
		Builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		Logger:  logger,
		name:    name,
		path:    path,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

func (s *Store) DatabaseName() string { return s.name }

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	return s.DB.Close()
}

func (s *Store) tableExists(ctx context.Context, kind, name string) (bool, error) {
	var found string
	err := s.DB.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = ? AND name = ?", kind, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCollection creates the table for c and records its definition.
func (s *Store) CreateCollection(ctx context.Context, c schema.Collection) error {
	if err := c.Validate(); err != nil {
		return err
	}
	exists, err := s.tableExists(ctx, "table", c.Name)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", c.Name, err)
	}
	if exists {
		return fmt.Errorf("collection %s: %w", c.Name, shared.ErrAlreadyExists)
	}

	definition, err := json.Marshal(c)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	ddl := createTableSQL(c)
	s.Logger.Debugf("CreateCollection: %s", ddl)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create collection %s: %w", c.Name, err)
	}

	query, args, err := s.Builder.Insert(metaTable).
		Columns("name", "definition", "created_at").
		Values(c.Name, string(definition), time.Now().UTC().Format(timeLayout)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record collection %s: %w", c.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.Cache.Set(cacheKey(c.Name), c, cache.NoExpiration)
	return nil
}

func cacheKey(collection string) string {
	return fmt.Sprintf("collection_%s", collection)
}

// definition returns the stored definition of a collection, using the cache.
func (s *Store) definition(ctx context.Context, collection string) (schema.Collection, error) {
	if c, found := s.Cache.Get(cacheKey(collection)); found {
		return c.(schema.Collection), nil
	}

	var raw string
	query, args, err := s.Builder.Select("definition").From(metaTable).Where(squirrel.Eq{"name": collection}).ToSql()
	if err != nil {
		return schema.Collection{}, err
	}
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Collection{}, fmt.Errorf("collection %s: %w", collection, shared.ErrNotFound)
	}
	if err != nil {
		return schema.Collection{}, err
	}

	var c schema.Collection
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return schema.Collection{}, fmt.Errorf("collection %s: corrupt definition: %w", collection, err)
	}
	s.Cache.Set(cacheKey(collection), c, cache.NoExpiration)
	return c, nil
}

// collections lists the recorded collection names in name order.
func (s *Store) collections(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT name FROM _collections ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CreateIndex creates idx on collection. Index names are scoped per collection.
func (s *Store) CreateIndex(ctx context.Context, collection string, idx schema.Index) error {
	c, err := s.definition(ctx, collection)
	if err != nil {
		return err
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	for _, k := range idx.Keys {
		if _, ok := c.Field(k.Field); !ok && k.Field != "_id" {
			return fmt.Errorf("index %s: unknown field %q: %w", idx.Name, k.Field, shared.ErrInvalidDefinition)
		}
	}

	exists, err := s.tableExists(ctx, "index", indexName(collection, idx.Name))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("index %s on %s: %w", idx.Name, collection, shared.ErrAlreadyExists)
	}

	ddl := createIndexSQL(collection, idx)
	s.Logger.Debugf("CreateIndex: %s", ddl)
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return mapError(fmt.Sprintf("create index %s on %s", idx.Name, collection), err)
	}
	return nil
}

// where converts a filter into squirrel predicates on known columns.
func where(c schema.Collection, filter models.Filter) (squirrel.Eq, error) {
	eq := squirrel.Eq{}
	for k, v := range filter {
		if _, ok := c.Field(k); !ok && k != "_id" {
			return nil, fmt.Errorf("filter on unknown field %q: %w", k, shared.ErrValidation)
		}
		eq[quote(k)] = encodeValue(v)
	}
	return eq, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter models.Filter) (models.Document, error) {
	c, err := s.definition(ctx, collection)
	if err != nil {
		return nil, err
	}
	eq, err := where(c, filter)
	if err != nil {
		return nil, err
	}

	query, args, err := s.Builder.Select("*").From(quote(collection)).Where(eq).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("find "+collection, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s %v: %w", collection, filter, shared.ErrNotFound)
	}
	return scanDocument(rows, c)
}

func (s *Store) CountDocuments(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	c, err := s.definition(ctx, collection)
	if err != nil {
		return 0, err
	}
	eq, err := where(c, filter)
	if err != nil {
		return 0, err
	}

	query, args, err := s.Builder.Select("COUNT(*)").From(quote(collection)).Where(eq).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError("count "+collection, err)
	}
	return n, nil
}

// InsertOne stores doc and returns its id. A missing "_id" is filled with a ULID.
func (s *Store) InsertOne(ctx context.Context, collection string, doc models.Document) (interface{}, error) {
	c, err := s.definition(ctx, collection)
	if err != nil {
		return nil, err
	}

	id := doc.ID()
	if id == nil {
		id = ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		if k == "_id" {
			continue
		}
		if _, ok := c.Field(k); !ok {
			return nil, fmt.Errorf("insert into %s: unknown field %q: %w", collection, k, shared.ErrValidation)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := []string{"_id"}
	values := []interface{}{id}
	for _, k := range keys {
		columns = append(columns, quote(k))
		values = append(values, encodeValue(doc[k]))
	}

	query, args, err := s.Builder.Insert(quote(collection)).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return nil, mapError("insert into "+collection, err)
	}
	return id, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, id interface{}) (int64, error) {
	if _, err := s.definition(ctx, collection); err != nil {
		return 0, err
	}
	query, args, err := s.Builder.Delete(quote(collection)).Where(squirrel.Eq{"_id": id}).ToSql()
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, "delete from "+collection, query, args)
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	c, err := s.definition(ctx, collection)
	if err != nil {
		return 0, err
	}
	eq, err := where(c, filter)
	if err != nil {
		return 0, err
	}
	query, args, err := s.Builder.Delete(quote(collection)).Where(eq).ToSql()
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, "delete from "+collection, query, args)
}

func (s *Store) exec(ctx context.Context, op, query string, args []interface{}) (int64, error) {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(op, err)
	}
	return res.RowsAffected()
}

// ReplicaStatus is not available on an embedded database.
// FindOneSecondary has no replicas to read from.
func (s *Store) FindOneSecondary(context.Context, string, models.Filter) (models.Document, error) {
	return nil, fmt.Errorf("secondary read: %w", shared.ErrUnsupported)
}

func (s *Store) ReplicaStatus(context.Context) (repository.ReplicaStatus, error) {
	return repository.ReplicaStatus{}, fmt.Errorf("replica status: %w", shared.ErrUnsupported)
}
