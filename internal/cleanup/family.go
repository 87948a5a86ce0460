package cleanup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/resource"
)

// Whole-pass retry bounds for dependency-blocked deletions. Dependents
// deleted by an earlier pass may need a moment to release their hold.
const (
	passAttempts = 3
	passDelay    = 10 * time.Second
)

// FamilyCleaner tears down one resource family: enumerate, bulk delete,
// verify. Only resources whose name carries the prefix are touched, so
// unrelated resources in the same account survive.
type FamilyCleaner struct {
	Engine     *Engine
	Client     agentcore.Client
	Type       resource.Type
	NamePrefix string
	BatchSize  int
	DryRun     bool
}

// Outcome summarizes one family's teardown.
type Outcome struct {
	Status StepStatus
	Detail string
	Result Result
}

// Clean runs the enumerate-delete-verify sequence. Dependency-blocked
// failures trigger a bounded whole-pass retry; anything still failing
// afterwards is reported as a partial failure, not an error.
func (f *FamilyCleaner) Clean(ctx context.Context) (Outcome, error) {
	list := f.listFunc()

	items, truncated, err := f.Engine.EnumerateAll(ctx, list)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to enumerate %s: %w", f.Type, err)
	}
	items = f.filter(items)

	if len(items) == 0 {
		return Outcome{Status: StepSkippedNotFound, Detail: "nothing to delete"}, nil
	}

	f.Engine.Observer.Printf("[cleanup] %s: %d resource(s) to delete", f.Type, len(items))

	if f.DryRun {
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Name)
		}
		return Outcome{
			Status: StepDryRun,
			Detail: fmt.Sprintf("would delete %s", strings.Join(names, ", ")),
		}, nil
	}

	var total Result
	remaining := items
	for pass := 1; pass <= passAttempts; pass++ {
		res := f.Engine.DeleteAll(ctx, remaining, f.deleteFunc(), f.BatchSize)
		total.Deleted += res.Deleted
		total.Failed = res.Failed
		total.FailedItems = res.FailedItems
		total.InUse = res.InUse

		if res.InUse == 0 || pass == passAttempts {
			break
		}

		f.Engine.Observer.Printf("[cleanup] %s: %d resource(s) still in use, retrying whole pass (%d/%d)",
			f.Type, res.InUse, pass+1, passAttempts)
		if err := f.Engine.sleep(ctx, passDelay); err != nil {
			break
		}
		remaining = res.FailedItems
	}

	verification, err := f.Engine.Verify(ctx, list)
	if err != nil {
		f.Engine.Observer.Printf("[cleanup] %s: verification failed: %v", f.Type, err)
	}

	outcome := Outcome{Result: total}
	switch {
	case total.Failed > 0:
		outcome.Status = StepCompletedWithIssues
		outcome.Detail = fmt.Sprintf("deleted %d, failed %d", total.Deleted, total.Failed)
	case truncated:
		outcome.Status = StepCompletedWithIssues
		outcome.Detail = fmt.Sprintf("deleted %d, but enumeration was truncated", total.Deleted)
	case err == nil && verification.Remaining > 0:
		outcome.Status = StepCompletedWithIssues
		outcome.Detail = fmt.Sprintf("deleted %d, but %d resource(s) still listed", total.Deleted, verification.Remaining)
	default:
		outcome.Status = StepCompleted
		outcome.Detail = fmt.Sprintf("deleted %d", total.Deleted)
	}
	return outcome, nil
}

func (f *FamilyCleaner) listFunc() ListFunc {
	return func(ctx context.Context, token string) (agentcore.Page, error) {
		page, err := f.Client.List(ctx, f.Type, token)
		if err != nil {
			return agentcore.Page{}, err
		}
		page.Items = f.filter(page.Items)
		return page, nil
	}
}

func (f *FamilyCleaner) deleteFunc() DeleteFunc {
	return func(ctx context.Context, item resource.Record) error {
		return f.Client.Delete(ctx, f.Type, item.ID)
	}
}

func (f *FamilyCleaner) filter(items []resource.Record) []resource.Record {
	if f.NamePrefix == "" {
		return items
	}
	kept := items[:0:0]
	for _, item := range items {
		if strings.HasPrefix(item.Name, f.NamePrefix) {
			kept = append(kept, item)
		}
	}
	return kept
}
