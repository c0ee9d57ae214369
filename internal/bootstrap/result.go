// filepath: internal/bootstrap/result.go
package bootstrap

import (
	"errors"
	"fmt"
	"streamdb/internal/repository"
	"time"
)

// Outcome is the result of one bootstrap step.
type Outcome string

const (
	Created          Outcome = "created"
	AlreadySatisfied Outcome = "already_satisfied"
	Succeeded        Outcome = "succeeded"
	Skipped          Outcome = "skipped"
	Failed           Outcome = "failed"
)

// Step kinds
const (
	StepStartup    = "startup"
	StepPing       = "ping"
	StepCollection = "collection"
	StepIndex      = "index"
	StepSeed       = "seed"
	StepProbe      = "probe"
	StepStatistics = "statistics"
	StepReplica    = "replica"
	StepReplicate  = "replication"
)

// StepResult records what a step did. Fatal failures make the whole run fail.
type StepResult struct {
	Step     string        `json:"step"`
	Target   string        `json:"target"`
	Outcome  Outcome       `json:"outcome"`
	Fatal    bool          `json:"fatal,omitempty"`
	Message  string        `json:"message,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

func (s StepResult) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", s.Step, s.Target, s.Outcome, s.Err)
	}
	return fmt.Sprintf("%s %s: %s", s.Step, s.Target, s.Outcome)
}

// Report aggregates the steps of one run.
type Report struct {
	RunID    string
	Database string
	Started  time.Time
	Finished time.Time
	Steps    []StepResult
	Stats    *repository.Stats
	Replica  *repository.ReplicaStatus

	Replication *Replication
}

// Replication is the result of reading a freshly written document back
// from a secondary.
type Replication struct {
	Lag      time.Duration
	Attempts int
}

func (r *Report) add(results ...StepResult) {
	r.Steps = append(r.Steps, results...)
}

// Fatal reports whether any step failed fatally.
func (r *Report) Fatal() bool {
	for _, s := range r.Steps {
		if s.Outcome == Failed && s.Fatal {
			return true
		}
	}
	return false
}

// Failures returns the failed steps, fatal or not.
func (r *Report) Failures() []StepResult {
	var out []StepResult
	for _, s := range r.Steps {
		if s.Outcome == Failed {
			out = append(out, s)
		}
	}
	return out
}

// Err joins the errors of the fatal failures, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Steps {
		if s.Outcome == Failed && s.Fatal {
			errs = append(errs, fmt.Errorf("%s %s: %w", s.Step, s.Target, s.Err))
		}
	}
	return errors.Join(errs...)
}

// Count returns the number of steps with the given outcome.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, s := range r.Steps {
		if s.Outcome == o {
			n++
		}
	}
	return n
}

// CountStep is Count restricted to one step kind.
func (r *Report) CountStep(step string, o Outcome) int {
	n := 0
	for _, s := range r.Steps {
		if s.Step == step && s.Outcome == o {
			n++
		}
	}
	return n
}

func (r *Report) Elapsed() time.Duration {
	return r.Finished.Sub(r.Started)
}
