package bootstrap

import (
	"context"
	"errors"
	"testing"

	auditmocks "streamdb/internal/logging/audit/mocks"
	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/repository/mocks"
	"streamdb/internal/schema"
	"streamdb/internal/seed"
	"streamdb/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newMockStore stubs DatabaseName, which only Run and the diagnostic steps read.
func newMockStore() *mocks.MockStore {
	store := new(mocks.MockStore)
	store.On("DatabaseName").Return("streamdb").Maybe()
	return store
}

func TestEnsureCollectionOutcomes(t *testing.T) {
	users := schema.UsersCollection()
	tests := []struct {
		name    string
		err     error
		outcome Outcome
		fatal   bool
	}{
		{"created", nil, Created, false},
		{"already exists", shared.ErrAlreadyExists, AlreadySatisfied, false},
		{"wrapped already exists", errors.Join(errors.New("ns"), shared.ErrAlreadyExists), AlreadySatisfied, false},
		{"engine error", errors.New("connection reset"), Failed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			store.On("CreateCollection", mock.Anything, users).Return(tt.err)

			res := New(store, Options{}, quietLogger(), nil).EnsureCollection(context.Background(), users)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.fatal, res.Fatal)
			store.AssertExpectations(t)
		})
	}
}

func TestEnsureCollectionRejectsBeforeStore(t *testing.T) {
	store := newMockStore()
	bad := schema.Collection{Name: "bad name"}

	res := New(store, Options{}, quietLogger(), nil).EnsureCollection(context.Background(), bad)
	assert.Equal(t, Failed, res.Outcome)
	assert.True(t, res.Fatal)
	store.AssertNotCalled(t, "CreateCollection", mock.Anything, mock.Anything)
}

func TestEnsureIndexesContinuesAfterFailure(t *testing.T) {
	store := newMockStore()
	indexes := schema.UsersCollection().Indexes
	store.On("CreateIndex", mock.Anything, schema.Users, indexes[0]).Return(shared.ErrAlreadyExists)
	store.On("CreateIndex", mock.Anything, schema.Users, indexes[1]).Return(errors.New("boom"))
	store.On("CreateIndex", mock.Anything, schema.Users, indexes[2]).Return(nil)
	store.On("CreateIndex", mock.Anything, schema.Users, indexes[3]).Return(nil)

	results := New(store, Options{}, quietLogger(), nil).EnsureIndexes(context.Background(), schema.Users, indexes)
	require.Len(t, results, 4)
	assert.Equal(t, AlreadySatisfied, results[0].Outcome)
	assert.Equal(t, Failed, results[1].Outcome)
	assert.True(t, results[1].Fatal)
	assert.Equal(t, Created, results[2].Outcome)
	assert.Equal(t, "users/idx_is_admin", results[3].Target)
}

func TestSeedIfAbsentReferenceLookupError(t *testing.T) {
	store := newMockStore()
	video := seed.Default().Seeds(nil, true)[2]
	store.On("FindOne", mock.Anything, schema.Users, models.Filter{"username": "admin"}).Return(nil, errors.New("timeout"))

	res := New(store, Options{}, quietLogger(), nil).SeedIfAbsent(context.Background(), video)
	assert.Equal(t, Failed, res.Outcome)
	assert.True(t, res.Fatal)
	store.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedIfAbsentChecksReferenceBeforeGuard(t *testing.T) {
	store := newMockStore()
	video := seed.Default().Seeds(nil, true)[2]
	store.On("FindOne", mock.Anything, schema.Users, models.Filter{"username": "admin"}).
		Return(nil, shared.ErrNotFound)

	res := New(store, Options{}, quietLogger(), nil).SeedIfAbsent(context.Background(), video)
	assert.Equal(t, Skipped, res.Outcome)
	assert.False(t, res.Fatal)
	store.AssertNotCalled(t, "CountDocuments", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedIfAbsentDuplicateKey(t *testing.T) {
	store := newMockStore()
	s := seed.Seed{
		Name:       "user admin",
		Collection: schema.Users,
		Lookup:     models.Filter{"username": "admin"},
		Build: func(context.Context, map[string]interface{}) (models.Document, error) {
			return models.Document{"username": "admin"}, nil
		},
	}
	store.On("FindOne", mock.Anything, schema.Users, s.Lookup).Return(nil, shared.ErrNotFound)
	store.On("InsertOne", mock.Anything, schema.Users, mock.Anything).Return(nil, shared.ErrConflict)

	res := New(store, Options{}, quietLogger(), nil).SeedIfAbsent(context.Background(), s)
	assert.Equal(t, AlreadySatisfied, res.Outcome)
}

func TestVerifyWritePathInsertFailure(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.Anything).Return(nil, errors.New("not primary"))

	res := New(store, Options{}, quietLogger(), nil).VerifyWritePath(context.Background())
	assert.Equal(t, Failed, res.Outcome)
	assert.True(t, res.Fatal)
	store.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyWritePathDeletesInsertedProbe(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.MatchedBy(func(doc models.Document) bool {
		return doc["type"] == schema.ProbeType && doc.String("test_data") != ""
	})).Return("probe-1", nil)
	store.On("DeleteOne", mock.Anything, schema.ReplicationTest, "probe-1").Return(int64(1), nil)

	res := New(store, Options{RunID: "r"}, quietLogger(), nil).VerifyWritePath(context.Background())
	assert.Equal(t, Succeeded, res.Outcome)
	store.AssertExpectations(t)
}

func TestVerifyWritePathNothingDeleted(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.Anything).Return("probe-1", nil)
	store.On("DeleteOne", mock.Anything, schema.ReplicationTest, "probe-1").Return(int64(0), nil)

	res := New(store, Options{}, quietLogger(), nil).VerifyWritePath(context.Background())
	assert.Equal(t, Failed, res.Outcome)
	assert.ErrorIs(t, res.Err, shared.ErrNotFound)
}

func TestRunPingFailureStops(t *testing.T) {
	store := newMockStore()
	store.On("Ping", mock.Anything).Return(errors.New("server selection timeout"))

	report := New(store, Options{Collections: schema.Catalog()}, quietLogger(), nil).Run(context.Background())
	require.Len(t, report.Steps, 1)
	assert.True(t, report.Fatal())
	store.AssertNotCalled(t, "CreateCollection", mock.Anything, mock.Anything)
}

func TestObservationalFailuresAreNotFatal(t *testing.T) {
	store := newMockStore()
	store.On("Ping", mock.Anything).Return(nil)
	store.On("Stats", mock.Anything).Return(repository.Stats{}, errors.New("unauthorized"))
	store.On("ReplicaStatus", mock.Anything).Return(repository.ReplicaStatus{}, errors.New("unauthorized"))

	report := New(store, Options{ReplicaStatus: true}, quietLogger(), nil).Run(context.Background())
	assert.False(t, report.Fatal())
	assert.NoError(t, report.Err())
	assert.Len(t, report.Failures(), 2)
	assert.Nil(t, report.Stats)
}

func TestReplicaStatusReported(t *testing.T) {
	store := newMockStore()
	status := repository.ReplicaStatus{
		SetName: "rs0",
		Primary: "mongo1:27017",
		Members: []repository.ReplicaMember{
			{Name: "mongo1:27017", State: "PRIMARY", Health: 1},
			{Name: "mongo2:27017", State: "SECONDARY", Health: 1},
		},
	}
	store.On("ReplicaStatus", mock.Anything).Return(status, nil)

	res, got := New(store, Options{}, quietLogger(), nil).ReportReplicaStatus(context.Background())
	assert.Equal(t, Succeeded, res.Outcome)
	assert.Equal(t, "rs0", res.Target)
	require.NotNil(t, got)
	assert.Equal(t, "mongo1:27017", got.Primary)
}

func TestAuditEvents(t *testing.T) {
	store := newMockStore()
	auditor := new(auditmocks.MockAuditor)
	users := schema.UsersCollection()
	store.On("CreateCollection", mock.Anything, users).Return(nil)
	auditor.On("Log", mock.Anything, "collection.create", "tester", schema.Users, mock.Anything).Return()

	New(store, Options{Actor: "tester"}, quietLogger(), auditor).EnsureCollection(context.Background(), users)
	auditor.AssertExpectations(t)

	// Already satisfied steps change nothing and are not audited.
	store2 := newMockStore()
	auditor2 := new(auditmocks.MockAuditor)
	store2.On("CreateCollection", mock.Anything, users).Return(shared.ErrAlreadyExists)
	New(store2, Options{Actor: "tester"}, quietLogger(), auditor2).EnsureCollection(context.Background(), users)
	auditor2.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
