package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/agentctl/internal/cleanup"
	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// injectConfirmer swaps the teardown gate for the test's confirmer.
func injectConfirmer(t *testing.T, c cleanup.Confirmer) {
	t.Helper()
	orig := newConfirmer
	t.Cleanup(func() { newConfirmer = orig })
	newConfirmer = func(provisioning.Observer) cleanup.Confirmer { return c }
}

type refusingConfirmer struct{}

func (refusingConfirmer) Confirm(context.Context, []string) error {
	return cleanup.ErrAborted
}

func seedStack(mock interface{ Seed(resource.Record) }) {
	for _, rec := range []resource.Record{
		{ID: "rt-1", Type: resource.TypeRuntime, Name: "myagent_runtime_diy", Status: "READY"},
		{ID: "gw-1", Type: resource.TypeGateway, Name: "myagent-gateway", Status: "READY"},
		{ID: "fn-1", Type: resource.TypeToolLambda, Name: "myagent-tool", Status: "Active"},
		{ID: "op-1", Type: resource.TypeOAuthProvider, Name: "myagent-oauth-provider", Status: "ACTIVE"},
		{ID: "mem-1", Type: resource.TypeMemory, Name: "myagent-memory", Status: "ACTIVE"},
		{ID: "repo-1", Type: resource.TypeECRRepository, Name: "myagent-agents", Status: "AVAILABLE"},
		{ID: "role-1", Type: resource.TypeIAMRole, Name: "myagent-runtime-role", Status: "AVAILABLE"},
		{ID: "other-1", Type: resource.TypeGateway, Name: "someone-elses-gateway", Status: "READY"},
	} {
		mock.Seed(rec)
	}
}

func TestCleanup_RemovesEveryPrefixedFamily(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)
	injectConfirmer(t, cleanup.AutoConfirmer{})

	require.NoError(t, Cleanup(context.Background(), dir, false))

	// Everything with the prefix is gone; the unrelated gateway stays.
	_, err := mock.Get(context.Background(), resource.TypeGateway, "myagent-gateway")
	require.Error(t, err)
	_, err = mock.Get(context.Background(), resource.TypeMemory, "myagent-memory")
	require.Error(t, err)
	other, err := mock.Get(context.Background(), resource.TypeGateway, "someone-elses-gateway")
	require.NoError(t, err)
	assert.NotNil(t, other)
	assert.Equal(t, 7, mock.Deletes)
}

func TestCleanup_ResetsGeneratedSections(t *testing.T) {
	dir := writeBaseFile(t, "")
	store := config.NewStore(dir)
	require.NoError(t, store.Update(config.SectionGateway, resource.Record{
		ID: "gw-1", Type: resource.TypeGateway, Name: "myagent-gateway", Status: "READY",
	}))
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)
	injectConfirmer(t, cleanup.AutoConfirmer{})

	require.NoError(t, Cleanup(context.Background(), dir, false))

	state, err := store.LoadGenerated()
	require.NoError(t, err)
	assert.Empty(t, state.Gateway.ID)
	assert.Empty(t, state.Client.GatewayURL)

	// Base settings survive teardown untouched.
	base, err := store.LoadBase()
	require.NoError(t, err)
	assert.Equal(t, "myagent", base.NamePrefix)
}

func TestCleanup_AbortedConfirmationTouchesNothing(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)
	injectConfirmer(t, refusingConfirmer{})

	err := Cleanup(context.Background(), dir, false)

	require.ErrorIs(t, err, cleanup.ErrAborted)
	assert.Zero(t, mock.Deletes)
	assert.Zero(t, mock.Lists)
}

func TestCleanup_DryRunSkipsConfirmationAndDeletes(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)
	injectConfirmer(t, refusingConfirmer{})

	require.NoError(t, Cleanup(context.Background(), dir, true))

	assert.Zero(t, mock.Deletes)
}

func TestCleanup_RefusesEmptyPrefix(t *testing.T) {
	dir := t.TempDir()
	writeBase(t, dir, "region: eu-central-1\naccount_id: \"123456789012\"\n")
	injectClient(t, newReadyMock())

	err := Cleanup(context.Background(), dir, false)

	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Reason, "name_prefix")
}

func TestDeleteFamily_RemovesPrefixedOnly(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)

	require.NoError(t, DeleteFamily(context.Background(), dir, "gateways", false))

	_, err := mock.Get(context.Background(), resource.TypeGateway, "myagent-gateway")
	require.Error(t, err)
	other, err := mock.Get(context.Background(), resource.TypeGateway, "someone-elses-gateway")
	require.NoError(t, err)
	assert.NotNil(t, other)
	// Other families are untouched.
	mem, err := mock.Get(context.Background(), resource.TypeMemory, "myagent-memory")
	require.NoError(t, err)
	assert.NotNil(t, mem)
}

func TestDeleteFamily_DryRun(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	seedStack(mock)
	injectClient(t, mock)

	require.NoError(t, DeleteFamily(context.Background(), dir, "runtimes", true))

	assert.Zero(t, mock.Deletes)
}

func TestDeleteFamily_UnknownFamily(t *testing.T) {
	err := DeleteFamily(context.Background(), t.TempDir(), "buckets", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buckets")
}
