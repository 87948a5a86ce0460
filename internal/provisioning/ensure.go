// Package provisioning drives remote resources through a find-or-create
// state machine with bounded readiness polling.
package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/resource"
	"github.com/imamik/agentctl/internal/util/retry"
)

// PollPolicy bounds the readiness poll loop. Every resource family
// supplies its own ready vocabulary; the loop itself is family-agnostic.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
	ReadySet    []string
}

// DefaultPollPolicy returns the poll bounds used by the CLI: worst case
// five minutes per resource.
func DefaultPollPolicy(readySet ...string) PollPolicy {
	return PollPolicy{
		Interval:    5 * time.Second,
		MaxAttempts: 60,
		ReadySet:    readySet,
	}
}

// Ensurer finds or creates a resource, then polls it to readiness.
type Ensurer struct {
	Client   agentcore.Client
	Observer Observer
	Poll     PollPolicy

	// Sleep replaces the inter-poll wait in tests. Nil means real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Ensure reconciles the descriptor against live state:
//
//	ABSENT -> CREATING -> ready | failed
//
// Calling it twice with the same descriptor issues at most one create;
// an already-ready resource is returned untouched.
func (e *Ensurer) Ensure(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	existing, err := e.lookup(ctx, desc)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Ready(e.Poll.ReadySet) {
			e.Observer.Event(Event{
				Type:     EventResourceExists,
				Resource: desc.Name,
				Message:  fmt.Sprintf("%s already provisioned", desc.Type),
				Fields:   map[string]string{"id": existing.ID, "status": string(existing.Status)},
			})
			return existing, nil
		}
		// Present but still converging, e.g. a previous run was
		// interrupted mid-create. Resume polling instead of creating.
		return e.awaitReady(ctx, desc, existing.Status)
	}

	e.Observer.Event(Event{
		Type:     EventResourceCreating,
		Resource: desc.Name,
		Message:  fmt.Sprintf("creating %s", desc.Type),
	})

	created, err := e.Client.Create(ctx, desc)
	if err != nil {
		return nil, &CreationFailedError{Type: desc.Type, Name: desc.Name, Reason: err}
	}

	if created.Ready(e.Poll.ReadySet) {
		e.observeReady(desc, created, 0)
		return created, nil
	}
	return e.awaitReady(ctx, desc, created.Status)
}

// lookup resolves the current remote state of the descriptor. Throttled
// lookups are retried within a small budget; a missing resource is not
// an error here.
func (e *Ensurer) lookup(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	var found *resource.Record
	err := retry.Do(ctx, func() error {
		rec, err := e.Client.Get(ctx, desc.Type, desc.Name)
		if err != nil {
			if agentcore.IsNotFound(err) {
				found = nil
				return nil
			}
			return err
		}
		found = rec
		return nil
	},
		retry.WithMaxAttempts(3),
		retry.WithFixedDelay(2*time.Second),
		retry.WithRetryable(agentcore.IsThrottled),
		retry.WithSleep(e.sleep),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s %q: %w", desc.Type, desc.Name, err)
	}
	return found, nil
}

// awaitReady polls until the resource reaches a ready status or the
// attempt budget is exhausted. Transient poll errors consume an attempt
// and are logged, never escalated early: the budget bounds worst-case
// latency regardless of API weather.
func (e *Ensurer) awaitReady(ctx context.Context, desc resource.Descriptor, lastStatus resource.Status) (*resource.Record, error) {
	for attempt := 1; attempt <= e.Poll.MaxAttempts; attempt++ {
		if err := e.sleep(ctx, e.Poll.Interval); err != nil {
			return nil, fmt.Errorf("polling %s %q interrupted: %w", desc.Type, desc.Name, err)
		}

		rec, err := e.Client.Get(ctx, desc.Type, desc.Name)
		if err != nil {
			e.Observer.Printf("[ensure] poll %d/%d for %s %q failed: %v",
				attempt, e.Poll.MaxAttempts, desc.Type, desc.Name, err)
			continue
		}

		lastStatus = rec.Status
		if rec.Ready(e.Poll.ReadySet) {
			e.observeReady(desc, rec, attempt)
			return rec, nil
		}

		e.Observer.Event(Event{
			Type:     EventResourcePolling,
			Resource: desc.Name,
			Message:  fmt.Sprintf("waiting for %s", desc.Type),
			Fields: map[string]string{
				"status":  string(rec.Status),
				"attempt": fmt.Sprintf("%d/%d", attempt, e.Poll.MaxAttempts),
			},
		})
	}

	return nil, &TimeoutError{
		Type:       desc.Type,
		Name:       desc.Name,
		LastStatus: lastStatus,
		Attempts:   e.Poll.MaxAttempts,
	}
}

func (e *Ensurer) observeReady(desc resource.Descriptor, rec *resource.Record, polls int) {
	e.Observer.Event(Event{
		Type:     EventResourceCreated,
		Resource: desc.Name,
		Message:  fmt.Sprintf("%s ready", desc.Type),
		Fields: map[string]string{
			"id":     rec.ID,
			"status": string(rec.Status),
			"polls":  fmt.Sprintf("%d", polls),
		},
	})
}

func (e *Ensurer) sleep(ctx context.Context, d time.Duration) error {
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
