// filepath: internal/repository/mocks/store_mock.go
package mocks

import (
	"context"
	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/schema"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of repository.Store
type MockStore struct {
	mock.Mock
}

var _ repository.Store = (*MockStore)(nil)

func (m *MockStore) DatabaseName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) CreateCollection(ctx context.Context, coll schema.Collection) error {
	args := m.Called(ctx, coll)
	return args.Error(0)
}

func (m *MockStore) CreateIndex(ctx context.Context, collection string, idx schema.Index) error {
	args := m.Called(ctx, collection, idx)
	return args.Error(0)
}

func (m *MockStore) FindOne(ctx context.Context, collection string, filter models.Filter) (models.Document, error) {
	args := m.Called(ctx, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Document), args.Error(1)
}

func (m *MockStore) FindOneSecondary(ctx context.Context, collection string, filter models.Filter) (models.Document, error) {
	args := m.Called(ctx, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Document), args.Error(1)
}

func (m *MockStore) CountDocuments(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	args := m.Called(ctx, collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) InsertOne(ctx context.Context, collection string, doc models.Document) (interface{}, error) {
	args := m.Called(ctx, collection, doc)
	return args.Get(0), args.Error(1)
}

func (m *MockStore) DeleteOne(ctx context.Context, collection string, id interface{}) (int64, error) {
	args := m.Called(ctx, collection, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DeleteMany(ctx context.Context, collection string, filter models.Filter) (int64, error) {
	args := m.Called(ctx, collection, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Stats(ctx context.Context) (repository.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.Stats), args.Error(1)
}

func (m *MockStore) ReplicaStatus(ctx context.Context) (repository.ReplicaStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.ReplicaStatus), args.Error(1)
}
