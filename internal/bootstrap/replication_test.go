package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"streamdb/internal/models"
	"streamdb/internal/schema"
	"streamdb/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the initializer sleeps.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	return nil
}

func withClock(in *Initializer) *fakeClock {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	in.now, in.sleep = clock.now, clock.sleep
	return clock
}

func TestCheckReplicationMeasuresLag(t *testing.T) {
	store := newMockStore()
	byID := models.Filter{"_id": "p1"}
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.MatchedBy(func(doc models.Document) bool {
		return doc["type"] == schema.ProbeType
	})).Return("p1", nil)
	store.On("FindOneSecondary", mock.Anything, schema.ReplicationTest, byID).Return(nil, shared.ErrNotFound).Once()
	store.On("FindOneSecondary", mock.Anything, schema.ReplicationTest, byID).Return(models.Document{"_id": "p1"}, nil).Once()
	store.On("DeleteOne", mock.Anything, schema.ReplicationTest, "p1").Return(int64(1), nil)

	in := New(store, Options{RunID: "r"}, quietLogger(), nil)
	withClock(in)

	res, replication := in.CheckReplication(context.Background())
	assert.Equal(t, Succeeded, res.Outcome)
	require.NotNil(t, replication)
	assert.Equal(t, replicationPollInterval, replication.Lag)
	assert.Equal(t, 2, replication.Attempts)
	store.AssertExpectations(t)
}

func TestCheckReplicationTimesOut(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.Anything).Return("p1", nil)
	store.On("FindOneSecondary", mock.Anything, schema.ReplicationTest, mock.Anything).Return(nil, shared.ErrNotFound)
	store.On("DeleteOne", mock.Anything, schema.ReplicationTest, "p1").Return(int64(1), nil)

	in := New(store, Options{ReplicationTimeout: time.Second}, quietLogger(), nil)
	withClock(in)

	res, replication := in.CheckReplication(context.Background())
	assert.Equal(t, Failed, res.Outcome)
	assert.False(t, res.Fatal)
	assert.ErrorIs(t, res.Err, shared.ErrNotFound)
	assert.Nil(t, replication)
	// written document is removed even though it never showed up
	store.AssertCalled(t, "DeleteOne", mock.Anything, schema.ReplicationTest, "p1")
	store.AssertNumberOfCalls(t, "FindOneSecondary", 5)
}

func TestCheckReplicationSecondaryError(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.Anything).Return("p1", nil)
	store.On("FindOneSecondary", mock.Anything, schema.ReplicationTest, mock.Anything).Return(nil, errors.New("no reachable servers"))
	store.On("DeleteOne", mock.Anything, schema.ReplicationTest, "p1").Return(int64(0), nil)

	in := New(store, Options{}, quietLogger(), nil)
	withClock(in)

	res, _ := in.CheckReplication(context.Background())
	assert.Equal(t, Failed, res.Outcome)
	assert.False(t, res.Fatal)
	assert.ErrorContains(t, res.Err, "no reachable servers")
	store.AssertNumberOfCalls(t, "FindOneSecondary", 1)
}

func TestCheckReplicationInsertFailure(t *testing.T) {
	store := newMockStore()
	store.On("InsertOne", mock.Anything, schema.ReplicationTest, mock.Anything).Return(nil, errors.New("not primary"))

	res, replication := New(store, Options{}, quietLogger(), nil).CheckReplication(context.Background())
	assert.Equal(t, Failed, res.Outcome)
	assert.False(t, res.Fatal)
	assert.Nil(t, replication)
	store.AssertNotCalled(t, "FindOneSecondary", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestReplicationCheckSkippedOnEmbeddedStore(t *testing.T) {
	store := setupStore(t)
	opts := defaultOptions()
	opts.ReplicationCheck = true

	report := New(store, opts, quietLogger(), nil).Run(context.Background())
	assert.False(t, report.Fatal())
	assert.Equal(t, 1, report.CountStep(StepReplicate, Skipped))
	assert.Nil(t, report.Replication)
	assert.Zero(t, count(t, store, schema.ReplicationTest, nil))
}
