package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// ProvisionMemory ensures the conversation memory resource exists and is
// ready, then records it in the generated state.
func ProvisionMemory(ctx context.Context, configDir string) error {
	store, base, err := loadStore(configDir)
	if err != nil {
		return err
	}
	observer := newObserver()
	client, err := newClient(ctx, base.Region)
	if err != nil {
		return err
	}

	ensurer := newEnsurer(client, observer, memoryReadySet)
	rec, err := ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeMemory,
		Name:   resourceName(base, "memory"),
		Region: base.Region,
		Attributes: map[string]string{
			"event_expiry_days": "90",
		},
	})
	if err != nil {
		return fmt.Errorf("memory provisioning failed: %w", err)
	}

	return store.Update(config.SectionMemory, stamped(rec))
}

// OAuthOptions carries the credential provider inputs. The secret comes
// from the environment, never from a flag.
type OAuthOptions struct {
	ClientID     string
	ClientSecret string
	DiscoveryURL string
}

// Validate checks the required provider inputs.
func (o OAuthOptions) Validate() error {
	if o.ClientID == "" || o.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET must be set")
	}
	if o.DiscoveryURL == "" {
		return fmt.Errorf("--discovery-url is required")
	}
	return nil
}

// ProvisionOAuthProvider ensures the OAuth2 credential provider exists
// and records it in the generated state.
func ProvisionOAuthProvider(ctx context.Context, configDir string, opts OAuthOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	store, base, err := loadStore(configDir)
	if err != nil {
		return err
	}
	observer := newObserver()
	client, err := newClient(ctx, base.Region)
	if err != nil {
		return err
	}

	ensurer := newEnsurer(client, observer, oauthReadySet)
	rec, err := ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeOAuthProvider,
		Name:   resourceName(base, "oauth-provider"),
		Region: base.Region,
		Attributes: map[string]string{
			"client_id":     opts.ClientID,
			"client_secret": opts.ClientSecret,
			"discovery_url": opts.DiscoveryURL,
		},
	})
	if err != nil {
		return fmt.Errorf("oauth provider provisioning failed: %w", err)
	}

	// The secret is write-only; it must not land in the generated file.
	delete(rec.Attributes, "client_secret")

	return store.Update(config.SectionOAuthProvider, stamped(rec))
}

// GatewayOptions carries the MCP gateway inputs.
type GatewayOptions struct {
	DiscoveryURL   string
	AllowedClients []string
}

// Validate checks the required gateway inputs.
func (o GatewayOptions) Validate() error {
	if o.DiscoveryURL == "" {
		return fmt.Errorf("--discovery-url is required")
	}
	if len(o.AllowedClients) == 0 {
		return fmt.Errorf("at least one --allowed-client is required")
	}
	return nil
}

// ProvisionGateway ensures the gateway execution role and the MCP
// gateway, records both the gateway and the client endpoints derived
// from it.
func ProvisionGateway(ctx context.Context, configDir string, opts GatewayOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	store, base, err := loadStore(configDir)
	if err != nil {
		return err
	}
	observer := newObserver()
	client, err := newClient(ctx, base.Region)
	if err != nil {
		return err
	}

	roleName := base.Roles.GatewayExecution
	if roleName == "" {
		roleName = resourceName(base, "gateway-role")
	}
	role, err := ensureRole(ctx, client, observer, base, roleName, agentCoreTrustPolicy)
	if err != nil {
		return fmt.Errorf("gateway role provisioning failed: %w", err)
	}

	ensurer := newEnsurer(client, observer, gatewayReadySet)
	rec, err := ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeGateway,
		Name:   resourceName(base, "gateway"),
		Region: base.Region,
		Attributes: map[string]string{
			"role_arn":        roleAttr(role, base, roleName),
			"discovery_url":   opts.DiscoveryURL,
			"allowed_clients": strings.Join(opts.AllowedClients, ","),
		},
	})
	if err != nil {
		return fmt.Errorf("gateway provisioning failed: %w", err)
	}

	if err := store.Update(config.SectionGateway, stamped(rec)); err != nil {
		return err
	}

	gatewayURL := fmt.Sprintf("https://%s.gateway.bedrock-agentcore.%s.amazonaws.com", rec.ID, base.Region)
	return store.UpdateClient(config.ClientEndpoints{
		GatewayURL:    gatewayURL,
		MCPEndpoint:   gatewayURL + "/mcp",
		TokenEndpoint: tokenEndpoint(opts.DiscoveryURL),
	})
}

// ensureRole find-or-creates an IAM execution role with the given trust
// policy. IAM is synchronous, so the ready poll settles immediately.
func ensureRole(ctx context.Context, client agentcore.Client, observer provisioning.Observer, base *config.BaseSettings, name, trustPolicy string) (*resource.Record, error) {
	ensurer := newEnsurer(client, observer, roleReadySet)
	return ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeIAMRole,
		Name:   name,
		Region: base.Region,
		Attributes: map[string]string{
			"trust_policy": trustPolicy,
		},
	})
}

// roleAttr prefers the ARN the control plane reported, falling back to
// the deterministic account-local form.
func roleAttr(role *resource.Record, base *config.BaseSettings, name string) string {
	if arn := role.Attributes["arn"]; arn != "" {
		return arn
	}
	return roleARN(base, name)
}

// tokenEndpoint derives the OAuth token URL from the discovery document
// location.
func tokenEndpoint(discoveryURL string) string {
	issuer := strings.TrimSuffix(discoveryURL, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/") + "/oauth2/token"
}

// stamped marks the record with the observation time just before it is
// persisted.
func stamped(rec *resource.Record) resource.Record {
	out := *rec
	out.LastObservedAt = time.Now().UTC()
	return out
}
