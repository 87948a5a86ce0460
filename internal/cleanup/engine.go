// Package cleanup implements paginated bulk deletion and the ordered
// teardown orchestrator.
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// ListFunc fetches one page of items. An empty token requests the first
// page.
type ListFunc func(ctx context.Context, token string) (agentcore.Page, error)

// DeleteFunc removes a single item.
type DeleteFunc func(ctx context.Context, item resource.Record) error

// Pacing bounds the burst rate against the control plane.
type Pacing struct {
	PageDelay  time.Duration // between page fetches
	ItemDelay  time.Duration // after every ItemBurst deletions within a batch
	ItemBurst  int
	BatchDelay time.Duration // between batches
}

// DefaultPacing matches the API's documented rate limits with room to
// spare.
func DefaultPacing() Pacing {
	return Pacing{
		PageDelay:  200 * time.Millisecond,
		ItemDelay:  1 * time.Second,
		ItemBurst:  10,
		BatchDelay: 5 * time.Second,
	}
}

// MaxPages is the hard ceiling on pages traversed per enumeration, so a
// misbehaving API that hands out continuation tokens forever cannot
// hang a run.
const MaxPages = 2000

// Engine performs paginated enumeration and batched deletion with
// per-item failure isolation.
type Engine struct {
	Observer provisioning.Observer
	Pacing   Pacing
	MaxPages int

	// Sleep replaces pacing waits in tests. Nil means real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine with default pacing and page ceiling.
func NewEngine(observer provisioning.Observer) *Engine {
	return &Engine{
		Observer: observer,
		Pacing:   DefaultPacing(),
		MaxPages: MaxPages,
	}
}

// Result is the outcome of a bulk deletion pass. Partial failure is
// expected and tolerated: it is reported, never silently dropped.
type Result struct {
	Deleted     int
	Failed      int
	FailedItems []resource.Record

	// InUse counts failures caused by live dependents. When non-zero
	// the caller may re-run the whole pass after a delay.
	InUse int
}

// Verification is the conservative post-deletion signal: only an empty
// first page with no continuation token counts as clean.
type Verification struct {
	Remaining int
	Sample    []resource.Record
	Clean     bool
}

// EnumerateAll collects every item reachable from the listing call,
// following continuation tokens up to the page ceiling. When the
// ceiling is hit it stops early, reports the truncation and returns
// what it has.
func (e *Engine) EnumerateAll(ctx context.Context, list ListFunc) ([]resource.Record, bool, error) {
	maxPages := e.MaxPages
	if maxPages <= 0 {
		maxPages = MaxPages
	}

	var items []resource.Record
	token := ""
	for page := 1; ; page++ {
		if page > maxPages {
			e.Observer.Printf("[cleanup] warning: enumeration stopped at page ceiling (%d pages); results are truncated", maxPages)
			return items, true, nil
		}

		result, err := list(ctx, token)
		if err != nil {
			return nil, false, fmt.Errorf("failed to list page %d: %w", page, err)
		}
		items = append(items, result.Items...)

		if result.NextToken == "" {
			return items, false, nil
		}
		token = result.NextToken

		if err := e.sleep(ctx, e.Pacing.PageDelay); err != nil {
			return nil, false, fmt.Errorf("enumeration interrupted: %w", err)
		}
	}
}

// DeleteAll deletes the items in batches of batchSize, in enumeration
// order. A failing item is recorded and skipped; it never stops the
// batch or the run. "Not found" counts as success: the item was already
// gone.
func (e *Engine) DeleteAll(ctx context.Context, items []resource.Record, del DeleteFunc, batchSize int) Result {
	if batchSize <= 0 {
		batchSize = len(items)
	}

	var res Result
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		for i, item := range batch {
			if err := e.deleteOne(ctx, item, del); err != nil {
				res.Failed++
				res.FailedItems = append(res.FailedItems, item)
				if agentcore.IsInUse(err) {
					res.InUse++
				}
				e.Observer.Printf("[cleanup] failed to delete %s %s: %v", item.Type, item.ID, err)
			} else {
				res.Deleted++
			}

			if e.Pacing.ItemBurst > 0 && (i+1)%e.Pacing.ItemBurst == 0 && i+1 < len(batch) {
				if e.sleep(ctx, e.Pacing.ItemDelay) != nil {
					return res
				}
			}
		}

		e.Observer.Progress("cleanup", res.Deleted+res.Failed, len(items))

		if end < len(items) {
			if e.sleep(ctx, e.Pacing.BatchDelay) != nil {
				return res
			}
		}
	}
	return res
}

func (e *Engine) deleteOne(ctx context.Context, item resource.Record, del DeleteFunc) error {
	err := del(ctx, item)
	if err == nil || agentcore.IsNotFound(err) {
		return nil
	}
	return err
}

// Verify re-checks the first page only: a full re-count would repeat
// the whole enumeration cost for little extra signal.
func (e *Engine) Verify(ctx context.Context, list ListFunc) (Verification, error) {
	page, err := list(ctx, "")
	if err != nil {
		return Verification{}, fmt.Errorf("verification listing failed: %w", err)
	}

	v := Verification{
		Remaining: len(page.Items),
		Sample:    page.Items,
		Clean:     len(page.Items) == 0 && page.NextToken == "",
	}
	if len(v.Sample) > 5 {
		v.Sample = v.Sample[:5]
	}
	return v, nil
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
