package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/resource"
)

// writeBaseFile creates a config directory with valid base settings.
func writeBaseFile(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	writeBase(t, dir, `region: eu-central-1
account_id: "123456789012"
name_prefix: myagent
`+extra)
	return dir
}

func writeBase(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.BaseFile), []byte(content), 0o600))
}

// readyStatus is what the control plane reports for a finished resource
// of each family.
func readyStatus(typ resource.Type) resource.Status {
	switch typ {
	case resource.TypeMemory, resource.TypeOAuthProvider:
		return "ACTIVE"
	case resource.TypeGateway, resource.TypeRuntime:
		return "READY"
	case resource.TypeToolLambda:
		return "Active"
	default:
		return resource.StatusAvailable
	}
}

// newReadyMock returns a mock whose creations come back ready
// immediately and land in the in-memory store, so a second Ensure finds
// them.
func newReadyMock() *agentcore.MockClient {
	mock := &agentcore.MockClient{}
	mock.CreateFunc = func(_ context.Context, desc resource.Descriptor) (*resource.Record, error) {
		rec := resource.Record{
			ID:         string(desc.Type) + "-id-" + desc.Name,
			Type:       desc.Type,
			Name:       desc.Name,
			Status:     readyStatus(desc.Type),
			Attributes: desc.Attributes,
		}
		mock.Seed(rec)
		return &rec, nil
	}
	return mock
}

// injectClient swaps the client factory for the test's mock.
func injectClient(t *testing.T, mock *agentcore.MockClient) {
	t.Helper()
	orig := newClient
	t.Cleanup(func() { newClient = orig })
	newClient = func(context.Context, string) (agentcore.Client, error) {
		return mock, nil
	}
}

func TestProvisionMemory(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	injectClient(t, mock)

	require.NoError(t, ProvisionMemory(context.Background(), dir))

	state, err := config.NewStore(dir).LoadGenerated()
	require.NoError(t, err)
	assert.Equal(t, "myagent-memory", state.Memory.Name)
	assert.NotEmpty(t, state.Memory.ID)
	assert.Equal(t, 1, mock.Creates)

	// Re-running finds the ready resource and creates nothing.
	require.NoError(t, ProvisionMemory(context.Background(), dir))
	assert.Equal(t, 1, mock.Creates)
}

func TestProvisionMemory_MissingBaseConfig(t *testing.T) {
	injectClient(t, newReadyMock())

	err := ProvisionMemory(context.Background(), t.TempDir())

	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
}

func TestProvisionOAuthProvider_SecretNeverPersisted(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	injectClient(t, mock)

	opts := OAuthOptions{
		ClientID:     "client-abc",
		ClientSecret: "s3cret-value",
		DiscoveryURL: "https://auth.example.com/.well-known/openid-configuration",
	}
	require.NoError(t, ProvisionOAuthProvider(context.Background(), dir, opts))

	state, err := config.NewStore(dir).LoadGenerated()
	require.NoError(t, err)
	assert.Equal(t, "myagent-oauth-provider", state.OAuthProvider.Name)
	assert.Equal(t, "client-abc", state.OAuthProvider.Attributes["client_id"])

	raw, err := os.ReadFile(filepath.Join(dir, config.GeneratedFile))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret-value")
}

func TestProvisionOAuthProvider_RequiresCredentials(t *testing.T) {
	err := ProvisionOAuthProvider(context.Background(), t.TempDir(), OAuthOptions{
		DiscoveryURL: "https://auth.example.com/.well-known/openid-configuration",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAUTH_CLIENT_ID")
}

func TestProvisionGateway(t *testing.T) {
	dir := writeBaseFile(t, "")
	mock := newReadyMock()
	injectClient(t, mock)

	opts := GatewayOptions{
		DiscoveryURL:   "https://auth.example.com/.well-known/openid-configuration",
		AllowedClients: []string{"client-abc"},
	}
	require.NoError(t, ProvisionGateway(context.Background(), dir, opts))

	state, err := config.NewStore(dir).LoadGenerated()
	require.NoError(t, err)
	assert.Equal(t, "myagent-gateway", state.Gateway.Name)

	// The execution role is ensured before the gateway.
	role, err := mock.Get(context.Background(), resource.TypeIAMRole, "myagent-gateway-role")
	require.NoError(t, err)
	assert.NotNil(t, role)

	// Client endpoints derive from the created gateway.
	assert.Contains(t, state.Client.GatewayURL, state.Gateway.ID)
	assert.Contains(t, state.Client.GatewayURL, "eu-central-1")
	assert.Equal(t, state.Client.GatewayURL+"/mcp", state.Client.MCPEndpoint)
	assert.Equal(t, "https://auth.example.com/oauth2/token", state.Client.TokenEndpoint)
}

func TestProvisionGateway_UsesConfiguredRoleName(t *testing.T) {
	dir := writeBaseFile(t, "roles:\n  gateway_execution: custom-gw-role\n")
	mock := newReadyMock()
	injectClient(t, mock)

	opts := GatewayOptions{
		DiscoveryURL:   "https://auth.example.com/.well-known/openid-configuration",
		AllowedClients: []string{"client-abc"},
	}
	require.NoError(t, ProvisionGateway(context.Background(), dir, opts))

	role, err := mock.Get(context.Background(), resource.TypeIAMRole, "custom-gw-role")
	require.NoError(t, err)
	assert.NotNil(t, role)
}
