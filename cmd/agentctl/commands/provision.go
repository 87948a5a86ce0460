package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/imamik/agentctl/cmd/agentctl/handlers"
)

// Provision returns the parent command for the long-lived agent
// resources: memory, OAuth2 credential provider and MCP gateway.
//
// Every subcommand is idempotent: an existing ready resource is left
// alone, an in-flight one is polled to readiness, a missing one is
// created.
func Provision() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision long-lived agent resources",
	}

	cmd.AddCommand(provisionMemory())
	cmd.AddCommand(provisionOAuthProvider())
	cmd.AddCommand(provisionGateway())

	return cmd
}

func provisionMemory() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Provision the conversation memory store",
		Long: `Provision the conversation memory store.

Creates the memory resource if it does not exist, waits until it is
ready, and records it in generated.yaml.

Example:
  agentctl provision memory -c ./config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ProvisionMemory(cmd.Context(), configDir)
		},
	}

	addConfigDirFlag(cmd, &configDir)
	return cmd
}

func provisionOAuthProvider() *cobra.Command {
	var (
		configDir    string
		discoveryURL string
	)

	cmd := &cobra.Command{
		Use:   "oauth-provider",
		Short: "Provision the OAuth2 credential provider",
		Long: `Provision the OAuth2 credential provider used for outbound auth.

The client credentials are read from the environment so they never end
up in shell history:

  OAUTH_CLIENT_ID      OAuth2 client id (required)
  OAUTH_CLIENT_SECRET  OAuth2 client secret (required)

Example:
  agentctl provision oauth-provider -c ./config \
    --discovery-url https://auth.example.com/.well-known/openid-configuration`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ProvisionOAuthProvider(cmd.Context(), configDir, handlers.OAuthOptions{
				ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
				ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
				DiscoveryURL: discoveryURL,
			})
		},
	}

	addConfigDirFlag(cmd, &configDir)
	cmd.Flags().StringVar(&discoveryURL, "discovery-url", "", "OIDC discovery document URL (required)")
	_ = cmd.MarkFlagRequired("discovery-url")
	return cmd
}

func provisionGateway() *cobra.Command {
	var (
		configDir      string
		discoveryURL   string
		allowedClients []string
	)

	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Provision the MCP gateway",
		Long: `Provision the MCP gateway with JWT inbound auth.

Ensures the gateway execution role exists first, then the gateway
itself, and records the resulting client endpoints in generated.yaml.

Example:
  agentctl provision gateway -c ./config \
    --discovery-url https://auth.example.com/.well-known/openid-configuration \
    --allowed-client my-client-id`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ProvisionGateway(cmd.Context(), configDir, handlers.GatewayOptions{
				DiscoveryURL:   discoveryURL,
				AllowedClients: allowedClients,
			})
		},
	}

	addConfigDirFlag(cmd, &configDir)
	cmd.Flags().StringVar(&discoveryURL, "discovery-url", "", "OIDC discovery document URL (required)")
	cmd.Flags().StringSliceVar(&allowedClients, "allowed-client", nil, "OAuth2 client id allowed through the gateway (repeatable)")
	_ = cmd.MarkFlagRequired("discovery-url")
	return cmd
}

// addConfigDirFlag binds the shared configuration directory flag.
func addConfigDirFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config-dir", "c", ".", "Directory holding base.yaml and generated.yaml")
}
