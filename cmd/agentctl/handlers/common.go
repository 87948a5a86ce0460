// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/provisioning"
)

// Readiness statuses per resource family. The control plane reports
// different vocabularies per service, so each family names its own.
var (
	memoryReadySet   = []string{"ACTIVE", "AVAILABLE"}
	oauthReadySet    = []string{"ACTIVE"}
	gatewayReadySet  = []string{"READY"}
	runtimeReadySet  = []string{"READY"}
	functionReadySet = []string{"Active"}
	repoReadySet     = []string{"AVAILABLE"}
	roleReadySet     = []string{"AVAILABLE"}
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newClient creates the control-plane client.
	newClient = func(ctx context.Context, region string) (agentcore.Client, error) {
		return agentcore.NewAWSClient(ctx, region)
	}

	// newObserver creates the run observer.
	newObserver = func() provisioning.Observer {
		return provisioning.NewConsoleObserver()
	}
)

// loadStore opens the configuration directory and validates the base
// settings.
func loadStore(configDir string) (*config.Store, *config.BaseSettings, error) {
	store := config.NewStore(configDir)
	base, err := store.LoadBase()
	if err != nil {
		return nil, nil, err
	}
	return store, base, nil
}

// newEnsurer builds a provisioner for one family's readiness vocabulary.
func newEnsurer(client agentcore.Client, observer provisioning.Observer, readySet []string) *provisioning.Ensurer {
	return &provisioning.Ensurer{
		Client:   client,
		Observer: observer,
		Poll:     provisioning.DefaultPollPolicy(readySet...),
	}
}

// resourceName joins the operator's prefix with a family suffix,
// e.g. "myagent" + "gateway" -> "myagent-gateway".
func resourceName(base *config.BaseSettings, suffix string) string {
	if base.NamePrefix == "" {
		return suffix
	}
	return base.NamePrefix + "-" + suffix
}

// runtimeName is resourceName with hyphens replaced, since agent runtime
// names only allow letters, digits and underscores.
func runtimeName(base *config.BaseSettings, suffix string) string {
	return strings.ReplaceAll(resourceName(base, suffix), "-", "_")
}

// Trust policies for the execution roles provisioning ensures.
const (
	agentCoreTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"Service": "bedrock-agentcore.amazonaws.com"},
    "Action": "sts:AssumeRole"
  }]
}`

	lambdaTrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"Service": "lambda.amazonaws.com"},
    "Action": "sts:AssumeRole"
  }]
}`
)

// roleARN constructs the ARN for an account-local IAM role.
func roleARN(base *config.BaseSettings, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", base.AccountID, roleName)
}
