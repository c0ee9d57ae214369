package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"streamdb/internal/credentials"
	"streamdb/internal/models"
	"streamdb/internal/repository/sqlite"
	"streamdb/internal/schema"
	"streamdb/internal/seed"
	"streamdb/internal/shared"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "streamdb.db"), "streamdb", quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func defaultOptions() Options {
	return Options{
		Collections: schema.Catalog(),
		Seeds:       seed.Default().Seeds(credentials.PBKDF2{Iterations: 1000}, true),
		Probe:       true,
		RunID:       "test-run",
		Actor:       "tester",
	}
}

func count(t *testing.T, s *sqlite.Store, collection string, filter models.Filter) int64 {
	t.Helper()
	n, err := s.CountDocuments(context.Background(), collection, filter)
	require.NoError(t, err)
	return n
}

func TestRunFreshDatabase(t *testing.T) {
	store := setupStore(t)
	report := New(store, defaultOptions(), quietLogger(), nil).Run(context.Background())

	require.NoError(t, report.Err())
	assert.False(t, report.Fatal())
	assert.Equal(t, 4, report.CountStep(StepCollection, Created))
	assert.Equal(t, 16, report.CountStep(StepIndex, Created))
	assert.Equal(t, 3, report.CountStep(StepSeed, Created))
	assert.Equal(t, 1, report.CountStep(StepProbe, Succeeded))
	assert.Equal(t, "streamdb", report.Database)
	assert.False(t, report.Finished.Before(report.Started))

	ctx := context.Background()
	assert.EqualValues(t, 2, count(t, store, schema.Users, nil))

	admin, err := store.FindOne(ctx, schema.Users, models.Filter{"username": "admin"})
	require.NoError(t, err)
	assert.True(t, admin.Bool("is_admin"))
	assert.True(t, credentials.PBKDF2{}.Verify("admin", admin.String("password")))

	user1, err := store.FindOne(ctx, schema.Users, models.Filter{"username": "user1"})
	require.NoError(t, err)
	assert.False(t, user1.Bool("is_admin"))

	assert.EqualValues(t, 1, count(t, store, schema.Videos, nil))
	video, err := store.FindOne(ctx, schema.Videos, nil)
	require.NoError(t, err)
	assert.Equal(t, "active", video.String("status"))
	assert.EqualValues(t, 0, video["view_count"])
	assert.Equal(t, admin.ID(), video["user_id"])

	assert.Zero(t, count(t, store, schema.ReplicationTest, nil))
	assert.Zero(t, count(t, store, schema.VideoViews, nil))

	require.NotNil(t, report.Stats)
	assert.EqualValues(t, 4, report.Stats.Collections)
	assert.EqualValues(t, 3, report.Stats.Objects)
}

func TestRunIsIdempotent(t *testing.T) {
	store := setupStore(t)
	opts := defaultOptions()

	first := New(store, opts, quietLogger(), nil).Run(context.Background())
	require.False(t, first.Fatal())

	second := New(store, opts, quietLogger(), nil).Run(context.Background())
	require.False(t, second.Fatal())
	assert.Equal(t, 4, second.CountStep(StepCollection, AlreadySatisfied))
	assert.Equal(t, 16, second.CountStep(StepIndex, AlreadySatisfied))
	assert.Equal(t, 3, second.CountStep(StepSeed, AlreadySatisfied))
	assert.Zero(t, second.Count(Created))

	assert.EqualValues(t, 2, count(t, store, schema.Users, nil))
	assert.EqualValues(t, 1, count(t, store, schema.Users, models.Filter{"username": "admin"}))
	assert.EqualValues(t, 1, count(t, store, schema.Videos, nil))
	assert.Zero(t, count(t, store, schema.ReplicationTest, nil))
}

func TestVideoSeedSkippedWithoutAdmin(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	opts := defaultOptions()
	require.False(t, New(store, opts, quietLogger(), nil).Run(ctx).Fatal())

	_, err := store.DeleteMany(ctx, schema.Videos, nil)
	require.NoError(t, err)
	_, err = store.DeleteMany(ctx, schema.Users, models.Filter{"username": "admin"})
	require.NoError(t, err)

	// Only the video seed: the admin is not re-created first.
	opts.Seeds = opts.Seeds[2:]
	report := New(store, opts, quietLogger(), nil).Run(ctx)

	assert.False(t, report.Fatal())
	assert.Equal(t, 1, report.CountStep(StepSeed, Skipped))
	var skipped StepResult
	for _, s := range report.Steps {
		if s.Step == StepSeed {
			skipped = s
		}
	}
	assert.ErrorIs(t, skipped.Err, shared.ErrMissingReference)
	assert.Zero(t, count(t, store, schema.Videos, nil))
}

func TestVideoSeedGuardedByExistingVideos(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	opts := defaultOptions()
	require.False(t, New(store, opts, quietLogger(), nil).Run(ctx).Fatal())

	// A renamed video still counts as "videos exist".
	_, err := store.DeleteMany(ctx, schema.Videos, nil)
	require.NoError(t, err)
	admin, err := store.FindOne(ctx, schema.Users, models.Filter{"username": "admin"})
	require.NoError(t, err)
	_, err = store.InsertOne(ctx, schema.Videos, models.Video{Title: "Other", Filename: "other.mp4", Status: models.VideoInactive, UserID: admin.ID()}.Document())
	require.NoError(t, err)

	report := New(store, opts, quietLogger(), nil).Run(ctx)
	assert.Equal(t, 3, report.CountStep(StepSeed, AlreadySatisfied))
	assert.EqualValues(t, 1, count(t, store, schema.Videos, nil))
}

func TestShortPasswordRejected(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	opts := defaultOptions()
	opts.Seeds = nil
	require.False(t, New(store, opts, quietLogger(), nil).Run(ctx).Fatal())

	doc := models.User{Username: "mallory", Email: "mallory@example.com", Password: "1234567"}.Document()
	_, err := store.InsertOne(ctx, schema.Users, doc)
	assert.ErrorIs(t, err, shared.ErrValidation)

	// The same rejection through a seed is a fatal step failure.
	opts.Seeds = []seed.Seed{{
		Name:       "user mallory",
		Collection: schema.Users,
		Lookup:     models.Filter{"username": "mallory"},
		Build: func(context.Context, map[string]interface{}) (models.Document, error) {
			return doc, nil
		},
	}}
	report := New(store, opts, quietLogger(), nil).Run(ctx)
	assert.True(t, report.Fatal())
	assert.ErrorIs(t, report.Err(), shared.ErrValidation)
	assert.Zero(t, count(t, store, schema.Users, nil))
}

func TestInvalidCollectionDefinitionIsFatal(t *testing.T) {
	store := setupStore(t)
	bad := schema.Collection{Name: "broken", Fields: []schema.Field{{Name: "state", Kind: schema.KindEnum}}}

	res := New(store, Options{}, quietLogger(), nil).EnsureCollection(context.Background(), bad)
	assert.Equal(t, Failed, res.Outcome)
	assert.True(t, res.Fatal)
	assert.ErrorIs(t, res.Err, shared.ErrInvalidDefinition)
}

func TestStartupDelay(t *testing.T) {
	store := setupStore(t)
	opts := defaultOptions()
	opts.StartupDelay = 5 * time.Second

	in := New(store, opts, quietLogger(), nil)
	var waited time.Duration
	in.sleep = func(_ context.Context, d time.Duration) error {
		waited = d
		return nil
	}
	report := in.Run(context.Background())
	assert.Equal(t, 5*time.Second, waited)
	assert.False(t, report.Fatal())
}

func TestStartupDelayCancelled(t *testing.T) {
	store := setupStore(t)
	opts := defaultOptions()
	opts.StartupDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := New(store, opts, quietLogger(), nil).Run(ctx)
	require.Len(t, report.Steps, 1)
	assert.Equal(t, StepStartup, report.Steps[0].Step)
	assert.True(t, report.Fatal())
	assert.ErrorIs(t, report.Err(), context.Canceled)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Collections)
}

func TestReplicaStatusSkippedOnEmbeddedStore(t *testing.T) {
	store := setupStore(t)
	opts := defaultOptions()
	opts.ReplicaStatus = true

	report := New(store, opts, quietLogger(), nil).Run(context.Background())
	assert.False(t, report.Fatal())
	assert.Equal(t, 1, report.CountStep(StepReplica, Skipped))
	assert.Nil(t, report.Replica)
}
