// Package main is the entry point for the agentctl CLI.
//
// agentctl provisions and tears down the AWS resources behind an
// AI-agent deployment on Bedrock AgentCore: conversation memory, an
// OAuth2 credential provider, a tool Lambda function, an MCP gateway
// and the agent runtimes, plus the execution roles and container
// repository they need. Provisioning is idempotent; teardown is
// dependency-ordered with partial-failure accounting.
//
// Commands: provision, deploy, delete, cleanup, version.
//
// For detailed usage information, run:
//
//	agentctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/agentctl/cmd/agentctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
