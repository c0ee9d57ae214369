package repository

import (
	"context"
	"errors"
	"streamdb/internal/models"
	"streamdb/internal/schema"
	"streamdb/internal/shared"
)

// Store is an open session against the target database. It is created once
// per command and passed explicitly to every operation.
//
// Implementations return shared.ErrAlreadyExists, shared.ErrNotFound,
// shared.ErrValidation, shared.ErrConflict and shared.ErrUnsupported
// (possibly wrapped) so that callers can classify outcomes without knowing
// the engine.
type Store interface {
	DatabaseName() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// Schema
	CreateCollection(ctx context.Context, coll schema.Collection) error
	CreateIndex(ctx context.Context, collection string, idx schema.Index) error

	// Documents
	FindOne(ctx context.Context, collection string, filter models.Filter) (models.Document, error)
	// FindOneSecondary reads from a secondary member when one is available.
	FindOneSecondary(ctx context.Context, collection string, filter models.Filter) (models.Document, error)
	CountDocuments(ctx context.Context, collection string, filter models.Filter) (int64, error)
	InsertOne(ctx context.Context, collection string, doc models.Document) (interface{}, error)
	DeleteOne(ctx context.Context, collection string, id interface{}) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter models.Filter) (int64, error)

	// Diagnostics
	Stats(ctx context.Context) (Stats, error)
	ReplicaStatus(ctx context.Context) (ReplicaStatus, error)
}

// Exists reports whether a document matching filter is present.
func Exists(ctx context.Context, s Store, collection string, filter models.Filter) (bool, error) {
	_, err := s.FindOne(ctx, collection, filter)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
