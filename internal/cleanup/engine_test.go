package cleanup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// newTestEngine returns an engine whose pacing waits record themselves
// instead of sleeping.
func newTestEngine(slept *[]time.Duration) *Engine {
	e := NewEngine(provisioning.NewConsoleObserver())
	e.Sleep = func(_ context.Context, d time.Duration) error {
		if slept != nil {
			*slept = append(*slept, d)
		}
		return nil
	}
	return e
}

func makeRecords(n int, prefix string) []resource.Record {
	records := make([]resource.Record, n)
	for i := range records {
		records[i] = resource.Record{
			ID:   fmt.Sprintf("%s-id-%03d", prefix, i),
			Type: resource.TypeGateway,
			Name: fmt.Sprintf("%s-%03d", prefix, i),
		}
	}
	return records
}

// pagedList serves records in fixed-size pages with continuation
// tokens, the way the control plane does.
func pagedList(records []resource.Record, pageSize int) ListFunc {
	return func(_ context.Context, token string) (agentcore.Page, error) {
		start := 0
		if token != "" {
			if _, err := fmt.Sscanf(token, "page-%d", &start); err != nil {
				return agentcore.Page{}, fmt.Errorf("bad token %q", token)
			}
		}
		end := start + pageSize
		next := ""
		if end < len(records) {
			next = fmt.Sprintf("page-%d", end)
		} else {
			end = len(records)
		}
		return agentcore.Page{Items: records[start:end], NextToken: next}, nil
	}
}

func TestEnumerateAll_FollowsContinuationTokens(t *testing.T) {
	records := makeRecords(25, "gw")
	engine := newTestEngine(nil)

	items, truncated, err := engine.EnumerateAll(context.Background(), pagedList(records, 10))

	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, items, 25)
	assert.Equal(t, records, items)
}

func TestEnumerateAll_EmptyFirstPage(t *testing.T) {
	engine := newTestEngine(nil)

	items, truncated, err := engine.EnumerateAll(context.Background(), pagedList(nil, 10))

	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Empty(t, items)
}

func TestEnumerateAll_TerminatesOnNeverEndingPager(t *testing.T) {
	// A pager that always hands out a token must terminate at the page
	// ceiling instead of spinning forever.
	engine := newTestEngine(nil)
	engine.MaxPages = 5

	calls := 0
	list := func(_ context.Context, _ string) (agentcore.Page, error) {
		calls++
		return agentcore.Page{
			Items:     makeRecords(2, fmt.Sprintf("p%d", calls)),
			NextToken: "more",
		}, nil
	}

	items, truncated, err := engine.EnumerateAll(context.Background(), list)

	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, 5, calls)
	assert.Len(t, items, 10)
}

func TestEnumerateAll_ListErrorStopsRun(t *testing.T) {
	engine := newTestEngine(nil)
	list := func(_ context.Context, token string) (agentcore.Page, error) {
		if token == "" {
			return agentcore.Page{Items: makeRecords(3, "ok"), NextToken: "next"}, nil
		}
		return agentcore.Page{}, fmt.Errorf("listing exploded")
	}

	_, _, err := engine.EnumerateAll(context.Background(), list)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
}

func TestDeleteAll_BatchesInEnumerationOrder(t *testing.T) {
	records := makeRecords(120, "rt")
	var slept []time.Duration
	engine := newTestEngine(&slept)
	engine.Pacing = Pacing{BatchDelay: 5 * time.Second}

	failing := map[string]bool{records[17].ID: true, records[63].ID: true}
	var attempted []string
	del := func(_ context.Context, item resource.Record) error {
		attempted = append(attempted, item.ID)
		if failing[item.ID] {
			return fmt.Errorf("delete refused")
		}
		return nil
	}

	res := engine.DeleteAll(context.Background(), records, del, 50)

	assert.Equal(t, 118, res.Deleted)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.FailedItems, 2)
	assert.Equal(t, records[17].ID, res.FailedItems[0].ID)
	assert.Equal(t, records[63].ID, res.FailedItems[1].ID)
	require.Len(t, attempted, 120)
	for i, id := range attempted {
		assert.Equal(t, records[i].ID, id)
	}
	// Two inter-batch waits for three batches of 50, 50 and 20.
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, slept)
}

func TestDeleteAll_PartialFailureAccounting(t *testing.T) {
	records := makeRecords(10, "gw")
	engine := newTestEngine(nil)
	engine.Pacing = Pacing{}

	failing := map[string]bool{records[2].ID: true, records[7].ID: true}
	del := func(_ context.Context, item resource.Record) error {
		if failing[item.ID] {
			return fmt.Errorf("delete refused")
		}
		return nil
	}

	res := engine.DeleteAll(context.Background(), records, del, 0)

	assert.Equal(t, 8, res.Deleted)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.FailedItems, 2)
	assert.Equal(t, records[2].ID, res.FailedItems[0].ID)
	assert.Equal(t, records[7].ID, res.FailedItems[1].ID)
	assert.Zero(t, res.InUse)
}

func TestDeleteAll_NotFoundCountsAsDeleted(t *testing.T) {
	records := makeRecords(3, "mem")
	engine := newTestEngine(nil)
	engine.Pacing = Pacing{}

	del := func(_ context.Context, item resource.Record) error {
		if item.ID == records[1].ID {
			return &agentcore.NotFoundError{Type: string(item.Type), Name: item.Name}
		}
		return nil
	}

	res := engine.DeleteAll(context.Background(), records, del, 0)

	assert.Equal(t, 3, res.Deleted)
	assert.Zero(t, res.Failed)
}

func TestDeleteAll_CountsInUseFailures(t *testing.T) {
	records := makeRecords(4, "gw")
	engine := newTestEngine(nil)
	engine.Pacing = Pacing{}

	conflict := &smithy.GenericAPIError{Code: "ConflictException", Message: "gateway has targets"}
	del := func(_ context.Context, item resource.Record) error {
		if item.ID == records[0].ID {
			return conflict
		}
		return nil
	}

	res := engine.DeleteAll(context.Background(), records, del, 0)

	assert.Equal(t, 3, res.Deleted)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.InUse)
}

func TestDeleteAll_ItemBurstPacing(t *testing.T) {
	records := makeRecords(25, "rt")
	var slept []time.Duration
	engine := newTestEngine(&slept)
	engine.Pacing = Pacing{ItemDelay: time.Second, ItemBurst: 10}

	res := engine.DeleteAll(context.Background(), records,
		func(context.Context, resource.Record) error { return nil }, 0)

	assert.Equal(t, 25, res.Deleted)
	// Pauses after items 10 and 20, none after the final item.
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestVerify_CleanOnlyWhenEmptyAndTokenless(t *testing.T) {
	engine := newTestEngine(nil)

	v, err := engine.Verify(context.Background(), pagedList(nil, 10))
	require.NoError(t, err)
	assert.True(t, v.Clean)
	assert.Zero(t, v.Remaining)

	// A continuation token means there may be more, even with an empty
	// first page.
	withToken := func(context.Context, string) (agentcore.Page, error) {
		return agentcore.Page{NextToken: "more"}, nil
	}
	v, err = engine.Verify(context.Background(), withToken)
	require.NoError(t, err)
	assert.False(t, v.Clean)
}

func TestVerify_SampleCappedAtFive(t *testing.T) {
	engine := newTestEngine(nil)

	v, err := engine.Verify(context.Background(), pagedList(makeRecords(8, "gw"), 10))

	require.NoError(t, err)
	assert.False(t, v.Clean)
	assert.Equal(t, 8, v.Remaining)
	assert.Len(t, v.Sample, 5)
}
