// Package bootstrap brings a database into the state the streaming
// application expects: collections with validators, indexes, seed records,
// a write-path check and a statistics report. Every step is idempotent.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"streamdb/internal/logging/audit"
	"streamdb/internal/models"
	"streamdb/internal/repository"
	"streamdb/internal/schema"
	"streamdb/internal/seed"
	"streamdb/internal/shared"
	"time"

	"github.com/sirupsen/logrus"
)

// Options parameterize a run. The zero value runs nothing but the ping.
type Options struct {
	StartupDelay  time.Duration
	Collections   []schema.Collection
	Seeds         []seed.Seed
	Probe         bool
	ReplicaStatus bool
	RunID         string
	Actor         string

	// ReplicationCheck reads a document written on the primary back from a
	// secondary and measures how long it took to show up.
	ReplicationCheck   bool
	ReplicationTimeout time.Duration
}

const (
	DefaultReplicationTimeout = 10 * time.Second
	replicationPollInterval   = 250 * time.Millisecond
)

type Initializer struct {
	store   repository.Store
	opts    Options
	log     *logrus.Logger
	auditor audit.Auditor

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(store repository.Store, opts Options, log *logrus.Logger, auditor audit.Auditor) *Initializer {
	if log == nil {
		log = logrus.New()
	}
	if auditor == nil {
		auditor = audit.NewStdout(log, false, opts.RunID)
	}
	return &Initializer{
		store:   store,
		opts:    opts,
		log:     log,
		auditor: auditor,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run executes the full procedure in order: startup delay, ping,
// collections, indexes, seeds, write-path probe, statistics and replica
// status, then the optional replication check. Failures are recorded and
// the run goes on; only a failed ping or a cancelled startup delay stop it
// early.
func (i *Initializer) Run(ctx context.Context) *Report {
	report := &Report{RunID: i.opts.RunID, Database: i.store.DatabaseName(), Started: i.now()}
	defer func() { report.Finished = i.now() }()

	i.log.WithFields(logrus.Fields{"run_id": i.opts.RunID, "database": report.Database}).Info("Starting database bootstrap")

	if i.opts.StartupDelay > 0 {
		i.log.Infof("Waiting %s for the deployment to settle...", i.opts.StartupDelay)
		if err := i.sleep(ctx, i.opts.StartupDelay); err != nil {
			report.add(i.finish(StepResult{Step: StepStartup, Target: "delay", Outcome: Failed, Fatal: true, Err: err}, time.Time{}))
			return report
		}
	}

	ping := i.Ping(ctx)
	report.add(ping)
	if ping.Outcome == Failed {
		return report
	}

	for _, c := range i.opts.Collections {
		report.add(i.EnsureCollection(ctx, c))
	}
	for _, c := range i.opts.Collections {
		report.add(i.EnsureIndexes(ctx, c.Name, c.Indexes)...)
	}
	for _, s := range i.opts.Seeds {
		report.add(i.SeedIfAbsent(ctx, s))
	}
	if i.opts.Probe {
		report.add(i.VerifyWritePath(ctx))
	}

	res, stats := i.ReportStatistics(ctx)
	report.add(res)
	report.Stats = stats

	if i.opts.ReplicaStatus {
		res, status := i.ReportReplicaStatus(ctx)
		report.add(res)
		report.Replica = status
	}

	if i.opts.ReplicationCheck {
		res, replication := i.CheckReplication(ctx)
		report.add(res)
		report.Replication = replication
	}
	return report
}

// finish stamps the duration and logs the step.
func (i *Initializer) finish(r StepResult, started time.Time) StepResult {
	if !started.IsZero() {
		r.Duration = i.now().Sub(started)
	}

	entry := i.log.WithFields(logrus.Fields{
		"step":    r.Step,
		"target":  r.Target,
		"outcome": r.Outcome,
		"run_id":  i.opts.RunID,
	})
	if r.Err != nil {
		entry = entry.WithError(r.Err)
	}

	msg := r.Message
	if msg == "" {
		msg = fmt.Sprintf("%s %s", r.Step, r.Outcome)
	}
	switch r.Outcome {
	case Failed:
		if r.Fatal {
			entry.Error(msg)
		} else {
			entry.Warn(msg)
		}
	case Skipped:
		entry.Warn(msg)
	default:
		entry.Info(msg)
	}
	return r
}

func (i *Initializer) audit(ctx context.Context, action, resource string, details map[string]interface{}) {
	i.auditor.Log(ctx, action, i.opts.Actor, resource, details)
}

// Ping checks connectivity. An unreachable store is a fatal failure.
func (i *Initializer) Ping(ctx context.Context) StepResult {
	started := i.now()
	r := StepResult{Step: StepPing, Target: i.store.DatabaseName()}
	if err := i.store.Ping(ctx); err != nil {
		r.Outcome, r.Fatal, r.Err = Failed, true, err
		r.Message = "database unreachable"
		return i.finish(r, started)
	}
	r.Outcome, r.Message = Succeeded, "database reachable"
	return i.finish(r, started)
}

// EnsureCollection creates c with its validator unless it already exists.
// A malformed definition is a fatal failure and nothing is sent to the store.
func (i *Initializer) EnsureCollection(ctx context.Context, c schema.Collection) StepResult {
	started := i.now()
	r := StepResult{Step: StepCollection, Target: c.Name}

	if err := c.Validate(); err != nil {
		r.Outcome, r.Fatal, r.Err = Failed, true, err
		r.Message = "invalid collection definition"
		i.audit(ctx, "collection.create.failed", c.Name, map[string]interface{}{"error": err.Error()})
		return i.finish(r, started)
	}

	err := i.store.CreateCollection(ctx, c)
	switch {
	case err == nil:
		r.Outcome = Created
		r.Message = fmt.Sprintf("collection '%s' created", c.Name)
		i.audit(ctx, "collection.create", c.Name, map[string]interface{}{"fields": len(c.Fields), "required": c.Required()})
	case errors.Is(err, shared.ErrAlreadyExists):
		r.Outcome = AlreadySatisfied
		r.Message = fmt.Sprintf("collection '%s' already exists", c.Name)
	default:
		r.Outcome, r.Fatal, r.Err = Failed, true, err
		r.Message = fmt.Sprintf("could not create collection '%s'", c.Name)
		i.audit(ctx, "collection.create.failed", c.Name, map[string]interface{}{"error": err.Error()})
	}
	return i.finish(r, started)
}

// EnsureIndexes creates each index unless one with the same name exists.
func (i *Initializer) EnsureIndexes(ctx context.Context, collection string, indexes []schema.Index) []StepResult {
	results := make([]StepResult, 0, len(indexes))
	for _, idx := range indexes {
		started := i.now()
		resource := collection + "/" + idx.Name
		r := StepResult{Step: StepIndex, Target: resource}

		err := i.store.CreateIndex(ctx, collection, idx)
		switch {
		case err == nil:
			r.Outcome = Created
			r.Message = fmt.Sprintf("%s index '%s' created on '%s'", idx.Kind(), idx.Name, collection)
			i.audit(ctx, "index.create", resource, map[string]interface{}{"kind": string(idx.Kind())})
		case errors.Is(err, shared.ErrAlreadyExists):
			r.Outcome = AlreadySatisfied
			r.Message = fmt.Sprintf("index '%s' on '%s' already exists", idx.Name, collection)
		default:
			r.Outcome, r.Fatal, r.Err = Failed, true, err
			r.Message = fmt.Sprintf("could not create index '%s' on '%s'", idx.Name, collection)
			i.audit(ctx, "index.create.failed", resource, map[string]interface{}{"error": err.Error()})
		}
		results = append(results, i.finish(r, started))
	}
	return results
}

// SeedIfAbsent inserts the record built by s unless its lookup matches.
// References are resolved first; a missing reference skips the seed.
func (i *Initializer) SeedIfAbsent(ctx context.Context, s seed.Seed) StepResult {
	started := i.now()
	r := StepResult{Step: StepSeed, Target: s.Name}

	fail := func(err error, msg string) StepResult {
		r.Outcome, r.Fatal, r.Err, r.Message = Failed, true, err, msg
		i.audit(ctx, "seed.insert.failed", s.Collection, map[string]interface{}{"seed": s.Name, "error": err.Error()})
		return i.finish(r, started)
	}

	refs := make(map[string]interface{}, len(s.Requires))
	for _, ref := range s.Requires {
		doc, err := i.store.FindOne(ctx, ref.Collection, ref.Filter)
		if errors.Is(err, shared.ErrNotFound) {
			r.Outcome = Skipped
			r.Err = fmt.Errorf("%s %v: %w", ref.Collection, ref.Filter, shared.ErrMissingReference)
			r.Message = fmt.Sprintf("skipping %s: referenced %s record %v not found", s.Name, ref.Collection, ref.Filter)
			return i.finish(r, started)
		}
		if err != nil {
			return fail(err, fmt.Sprintf("could not resolve %s for %s", ref.Field, s.Name))
		}
		refs[ref.Field] = doc.ID()
	}

	present, err := i.present(ctx, s)
	if err != nil {
		return fail(err, fmt.Sprintf("could not check for %s", s.Name))
	}
	if present {
		r.Outcome = AlreadySatisfied
		r.Message = fmt.Sprintf("%s already exists", s.Name)
		return i.finish(r, started)
	}

	doc, err := s.Build(ctx, refs)
	if err != nil {
		return fail(err, fmt.Sprintf("could not build %s", s.Name))
	}

	id, err := i.store.InsertOne(ctx, s.Collection, doc)
	switch {
	case err == nil:
		r.Outcome = Created
		r.Message = fmt.Sprintf("%s created", s.Name)
		i.audit(ctx, "seed.insert", s.Collection, map[string]interface{}{"seed": s.Name, "id": fmt.Sprint(id)})
		return i.finish(r, started)
	case errors.Is(err, shared.ErrConflict):
		r.Outcome, r.Err = AlreadySatisfied, err
		r.Message = fmt.Sprintf("%s already exists (duplicate key)", s.Name)
		return i.finish(r, started)
	default:
		return fail(err, fmt.Sprintf("could not insert %s", s.Name))
	}
}

func (i *Initializer) present(ctx context.Context, s seed.Seed) (bool, error) {
	if s.Lookup == nil {
		n, err := i.store.CountDocuments(ctx, s.Collection, nil)
		return n > 0, err
	}
	return repository.Exists(ctx, i.store, s.Collection, s.Lookup)
}

// VerifyWritePath inserts a probe document and deletes it again.
// When the insert fails nothing is deleted.
func (i *Initializer) VerifyWritePath(ctx context.Context) StepResult {
	started := i.now()
	r := StepResult{Step: StepProbe, Target: schema.ReplicationTest}

	now := i.now()
	probe := models.ReplicationProbe{
		TestTime: now,
		TestData: fmt.Sprintf("bootstrap write check %s - %d", i.opts.RunID, now.UnixMilli()),
	}
	id, err := i.store.InsertOne(ctx, schema.ReplicationTest, probe.Document())
	if err != nil {
		r.Outcome, r.Fatal, r.Err = Failed, true, err
		r.Message = "write-path probe insert failed"
		return i.finish(r, started)
	}

	n, err := i.store.DeleteOne(ctx, schema.ReplicationTest, id)
	if err == nil && n == 0 {
		err = fmt.Errorf("probe %v: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		r.Outcome, r.Fatal, r.Err = Failed, true, err
		r.Message = fmt.Sprintf("write-path probe %v could not be removed", id)
		i.audit(ctx, "probe.delete.failed", schema.ReplicationTest, map[string]interface{}{"id": fmt.Sprint(id)})
		return i.finish(r, started)
	}

	r.Outcome = Succeeded
	r.Message = "write-path probe inserted and removed"
	return i.finish(r, started)
}

// ReportStatistics reads storage statistics. Failures are not fatal.
func (i *Initializer) ReportStatistics(ctx context.Context) (StepResult, *repository.Stats) {
	started := i.now()
	r := StepResult{Step: StepStatistics, Target: i.store.DatabaseName()}

	stats, err := i.store.Stats(ctx)
	if err != nil {
		r.Outcome, r.Err = Failed, err
		r.Message = "could not read database statistics"
		return i.finish(r, started), nil
	}

	i.log.WithFields(logrus.Fields{
		"collections": stats.Collections,
		"objects":     stats.Objects,
		"data_size":   stats.DataSize,
		"index_size":  stats.IndexSize,
		"indexes":     stats.Indexes,
	}).Debug("ReportStatistics")
	r.Outcome = Succeeded
	r.Message = fmt.Sprintf("%d collections, %d documents", stats.Collections, stats.Objects)
	return i.finish(r, started), &stats
}

// ReportReplicaStatus reads the replica set status. A standalone deployment
// is a skip; other failures are not fatal.
func (i *Initializer) ReportReplicaStatus(ctx context.Context) (StepResult, *repository.ReplicaStatus) {
	started := i.now()
	r := StepResult{Step: StepReplica, Target: i.store.DatabaseName()}

	status, err := i.store.ReplicaStatus(ctx)
	if errors.Is(err, shared.ErrUnsupported) {
		r.Outcome = Skipped
		r.Message = "not a replica set deployment"
		return i.finish(r, started), nil
	}
	if err != nil {
		r.Outcome, r.Err = Failed, err
		r.Message = "could not read replica set status"
		return i.finish(r, started), nil
	}

	r.Target = status.SetName
	r.Outcome = Succeeded
	if status.Healthy() {
		r.Message = fmt.Sprintf("replica set healthy, primary %s", status.Primary)
	} else {
		r.Message = fmt.Sprintf("replica set degraded: %d member(s)", len(status.Members))
		i.log.WithField("members", status.Members).Warn("Replica set has fewer than two healthy members")
	}
	return i.finish(r, started), &status
}

// CheckReplication writes a probe on the primary and polls a secondary until
// the probe is visible or the timeout passes. The probe is removed in every
// case. Failures are not fatal.
func (i *Initializer) CheckReplication(ctx context.Context) (StepResult, *Replication) {
	started := i.now()
	r := StepResult{Step: StepReplicate, Target: schema.ReplicationTest}

	timeout := i.opts.ReplicationTimeout
	if timeout <= 0 {
		timeout = DefaultReplicationTimeout
	}

	written := i.now()
	probe := models.ReplicationProbe{
		TestTime: written,
		TestData: fmt.Sprintf("replication check %s - %d", i.opts.RunID, written.UnixMilli()),
	}
	id, err := i.store.InsertOne(ctx, schema.ReplicationTest, probe.Document())
	if err != nil {
		r.Outcome, r.Err = Failed, err
		r.Message = "replication probe insert failed"
		return i.finish(r, started), nil
	}

	replication, err := i.awaitSecondary(ctx, id, written, timeout)

	if n, derr := i.store.DeleteOne(ctx, schema.ReplicationTest, id); derr != nil || n == 0 {
		if derr == nil {
			derr = fmt.Errorf("probe %v: %w", id, shared.ErrNotFound)
		}
		i.log.WithError(derr).Warnf("Replication probe %v could not be removed; run recovery to clean up", id)
		i.audit(ctx, "probe.delete.failed", schema.ReplicationTest, map[string]interface{}{"id": fmt.Sprint(id)})
		if err == nil {
			err = derr
		}
	}

	switch {
	case errors.Is(err, shared.ErrUnsupported):
		r.Outcome, r.Message = Skipped, "no secondary to read from"
		return i.finish(r, started), nil
	case err != nil:
		r.Outcome, r.Err = Failed, err
		r.Message = "document written on the primary was not read back from a secondary"
		return i.finish(r, started), nil
	}

	r.Outcome = Succeeded
	r.Message = fmt.Sprintf("replicated in %s", replication.Lag.Round(time.Millisecond))
	i.log.WithFields(logrus.Fields{
		"lag_seconds": replication.Lag.Seconds(),
		"attempts":    replication.Attempts,
	}).Debug("CheckReplication")
	return i.finish(r, started), replication
}

func (i *Initializer) awaitSecondary(ctx context.Context, id interface{}, written time.Time, timeout time.Duration) (*Replication, error) {
	deadline := written.Add(timeout)
	for attempt := 1; ; attempt++ {
		_, err := i.store.FindOneSecondary(ctx, schema.ReplicationTest, models.Filter{"_id": id})
		if err == nil {
			return &Replication{Lag: i.now().Sub(written), Attempts: attempt}, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if !i.now().Before(deadline) {
			return nil, fmt.Errorf("probe %v not visible after %s: %w", id, timeout, shared.ErrNotFound)
		}
		if err := i.sleep(ctx, replicationPollInterval); err != nil {
			return nil, err
		}
	}
}
