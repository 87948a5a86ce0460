package cleanup

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/resource"
)

// familyClient is a minimal in-memory control plane for one family. It
// drops deleted items from subsequent listings, so verification sees
// the real post-deletion state.
type familyClient struct {
	mu      sync.Mutex
	items   []resource.Record
	deleted []string

	// failDeletes maps resource ID to the error every delete attempt
	// before the given pass number returns.
	failDeletes map[string]error
	failUntil   map[string]int
	attempts    map[string]int
}

func newFamilyClient(items ...resource.Record) *familyClient {
	return &familyClient{
		items:       items,
		failDeletes: map[string]error{},
		failUntil:   map[string]int{},
		attempts:    map[string]int{},
	}
}

func (c *familyClient) List(_ context.Context, _ resource.Type, token string) (agentcore.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != "" {
		return agentcore.Page{}, fmt.Errorf("unexpected token %q", token)
	}
	remaining := make([]resource.Record, 0, len(c.items))
	for _, item := range c.items {
		if !c.isDeleted(item.ID) {
			remaining = append(remaining, item)
		}
	}
	return agentcore.Page{Items: remaining}, nil
}

func (c *familyClient) Delete(_ context.Context, _ resource.Type, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[id]++
	if err, ok := c.failDeletes[id]; ok && c.attempts[id] <= c.failUntil[id] {
		return err
	}
	c.deleted = append(c.deleted, id)
	return nil
}

func (c *familyClient) isDeleted(id string) bool {
	for _, d := range c.deleted {
		if d == id {
			return true
		}
	}
	return false
}

func (c *familyClient) Get(context.Context, resource.Type, string) (*resource.Record, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *familyClient) Create(context.Context, resource.Descriptor) (*resource.Record, error) {
	return nil, fmt.Errorf("not implemented")
}

func (c *familyClient) Update(context.Context, resource.Type, string, map[string]string) (*resource.Record, error) {
	return nil, fmt.Errorf("not implemented")
}

func newFamilyCleaner(client agentcore.Client, prefix string) *FamilyCleaner {
	return &FamilyCleaner{
		Engine:     newTestEngine(nil),
		Client:     client,
		Type:       resource.TypeGateway,
		NamePrefix: prefix,
		BatchSize:  50,
	}
}

func TestFamilyCleaner_SkipsWhenNothingMatches(t *testing.T) {
	client := newFamilyClient()
	cleaner := newFamilyCleaner(client, "agent")

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepSkippedNotFound, outcome.Status)
	assert.Empty(t, client.deleted)
}

func TestFamilyCleaner_DeletesOnlyPrefixedResources(t *testing.T) {
	client := newFamilyClient(
		resource.Record{ID: "gw-1", Type: resource.TypeGateway, Name: "agent-gateway"},
		resource.Record{ID: "gw-2", Type: resource.TypeGateway, Name: "unrelated-gateway"},
		resource.Record{ID: "gw-3", Type: resource.TypeGateway, Name: "agent-gateway-2"},
	)
	cleaner := newFamilyCleaner(client, "agent")

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.Result.Deleted)
	assert.ElementsMatch(t, []string{"gw-1", "gw-3"}, client.deleted)
	assert.Equal(t, 0, client.attempts["gw-2"])
}

func TestFamilyCleaner_DryRunTouchesNothing(t *testing.T) {
	client := newFamilyClient(
		resource.Record{ID: "gw-1", Type: resource.TypeGateway, Name: "agent-gateway"},
	)
	cleaner := newFamilyCleaner(client, "agent")
	cleaner.DryRun = true

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepDryRun, outcome.Status)
	assert.Contains(t, outcome.Detail, "agent-gateway")
	assert.Empty(t, client.deleted)
}

func TestFamilyCleaner_RetriesWholePassWhenInUse(t *testing.T) {
	// gw-1 is blocked by a dependent on the first pass and deletable on
	// the second, after the rest of the family is gone.
	conflict := &smithy.GenericAPIError{Code: "ResourceInUseException", Message: "has dependents"}
	client := newFamilyClient(
		resource.Record{ID: "gw-1", Type: resource.TypeGateway, Name: "agent-gateway"},
		resource.Record{ID: "gw-2", Type: resource.TypeGateway, Name: "agent-gateway-2"},
	)
	client.failDeletes["gw-1"] = conflict
	client.failUntil["gw-1"] = 1

	cleaner := newFamilyCleaner(client, "agent")

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.Result.Deleted)
	assert.Equal(t, 2, client.attempts["gw-1"])
	assert.Equal(t, 1, client.attempts["gw-2"])
}

func TestFamilyCleaner_PersistentFailureReportsIssues(t *testing.T) {
	client := newFamilyClient(
		resource.Record{ID: "gw-1", Type: resource.TypeGateway, Name: "agent-gateway"},
		resource.Record{ID: "gw-2", Type: resource.TypeGateway, Name: "agent-gateway-2"},
	)
	client.failDeletes["gw-1"] = fmt.Errorf("access denied")
	client.failUntil["gw-1"] = 100

	cleaner := newFamilyCleaner(client, "agent")

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepCompletedWithIssues, outcome.Status)
	assert.Equal(t, 1, outcome.Result.Deleted)
	assert.Equal(t, 1, outcome.Result.Failed)
	// A plain failure is not dependency pressure, so no whole-pass retry.
	assert.Equal(t, 1, client.attempts["gw-1"])
}

func TestFamilyCleaner_InUseExhaustsPassBudget(t *testing.T) {
	conflict := &smithy.GenericAPIError{Code: "ConflictException", Message: "still referenced"}
	client := newFamilyClient(
		resource.Record{ID: "gw-1", Type: resource.TypeGateway, Name: "agent-gateway"},
	)
	client.failDeletes["gw-1"] = conflict
	client.failUntil["gw-1"] = 100

	cleaner := newFamilyCleaner(client, "agent")

	outcome, err := cleaner.Clean(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StepCompletedWithIssues, outcome.Status)
	assert.Equal(t, passAttempts, client.attempts["gw-1"])
	assert.Equal(t, 1, outcome.Result.InUse)
}
