package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// StepStatus is the reported outcome of one teardown step.
type StepStatus string

const (
	StepCompleted           StepStatus = "completed"
	StepCompletedWithIssues StepStatus = "completed-with-issues"
	StepSkippedNotFound     StepStatus = "skipped-not-found"
	StepFailed              StepStatus = "failed"
	StepDryRun              StepStatus = "dry-run"
)

// Step is one teardown unit, usually a resource family. Steps run
// strictly in order; a failing step is reported and the next one still
// runs.
type Step struct {
	Name    string
	Timeout time.Duration

	// Sections are the generated-state sections this step cleans. They
	// are reset after a clean completion and marked orphaned after a
	// partial one.
	Sections []string

	Run func(ctx context.Context) (Outcome, error)
}

// StepReport is the recorded outcome of one executed step.
type StepReport struct {
	Name     string
	Status   StepStatus
	Detail   string
	Duration time.Duration
}

// Orchestrator sequences teardown steps in reverse-dependency order and
// reconciles the generated state afterwards.
type Orchestrator struct {
	Observer provisioning.Observer
	Store    *config.Store
}

// Run executes every step in order. No step starts before the previous
// one returned, and no failure short-circuits the sequence: a stuck
// gateway must not block IAM cleanup.
func (o *Orchestrator) Run(ctx context.Context, steps []Step) Summary {
	summary := Summary{StartedAt: time.Now()}

	for i, step := range steps {
		o.Observer.Event(provisioning.Event{
			Type:    provisioning.EventStepStarted,
			Step:    step.Name,
			Message: fmt.Sprintf("step %d/%d", i+1, len(steps)),
		})

		report := o.runStep(ctx, step)
		summary.Reports = append(summary.Reports, report)

		switch report.Status {
		case StepFailed:
			o.Observer.Event(provisioning.Event{
				Type:    provisioning.EventStepFailed,
				Step:    step.Name,
				Message: report.Detail,
			})
		default:
			o.Observer.Event(provisioning.Event{
				Type:    provisioning.EventStepCompleted,
				Step:    step.Name,
				Message: fmt.Sprintf("%s in %v", report.Status, report.Duration.Round(time.Millisecond)),
			})
		}

		o.reconcileSections(step, report.Status)
	}

	summary.Preserved = []string{"base settings (" + config.BaseFile + ")"}
	return summary
}

func (o *Orchestrator) runStep(ctx context.Context, step Step) StepReport {
	start := time.Now()

	stepCtx := ctx
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	outcome, err := step.Run(stepCtx)
	report := StepReport{
		Name:     step.Name,
		Duration: time.Since(start),
	}
	if err != nil {
		report.Status = StepFailed
		report.Detail = err.Error()
		return report
	}
	report.Status = outcome.Status
	report.Detail = outcome.Detail
	return report
}

// reconcileSections resets cleanly torn-down sections to their empty
// schema and marks partially cleaned ones orphaned, so a re-run (and
// the operator) can see what is left. Failed steps keep their sections
// untouched.
func (o *Orchestrator) reconcileSections(step Step, status StepStatus) {
	if o.Store == nil || len(step.Sections) == 0 {
		return
	}

	switch status {
	case StepCompleted, StepSkippedNotFound:
		for _, section := range step.Sections {
			if err := o.Store.Reset(section); err != nil {
				o.Observer.Printf("[cleanup] failed to reset config section %s: %v", section, err)
			}
		}
	case StepCompletedWithIssues:
		state, err := o.Store.LoadGenerated()
		if err != nil {
			o.Observer.Printf("[cleanup] failed to load generated state: %v", err)
			return
		}
		for _, section := range step.Sections {
			rec, ok := state.Section(section)
			if !ok || rec.ID == "" {
				continue
			}
			rec.Status = resource.StatusOrphaned
			if err := o.Store.Update(section, rec); err != nil {
				o.Observer.Printf("[cleanup] failed to mark config section %s orphaned: %v", section, err)
			}
		}
	}
}
