package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/agentctl/internal/cleanup"
	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// newConfirmer builds the teardown gate - replaced in tests.
var newConfirmer = func(observer provisioning.Observer) cleanup.Confirmer {
	return cleanup.NewInteractiveConfirmer(observer)
}

// cleanupOrder is the reverse-dependency teardown sequence. Runtimes
// and gateways hold the other families, so they go first; IAM roles go
// last because everything else executes under them.
var cleanupOrder = []family{
	deletableFamilies["runtimes"],
	deletableFamilies["gateways"],
	deletableFamilies["tool"],
	{name: "oauth-providers", typ: resource.TypeOAuthProvider, sections: []string{config.SectionOAuthProvider}},
	deletableFamilies["memory"],
	{name: "ecr-repositories", typ: resource.TypeECRRepository},
	{name: "iam-roles", typ: resource.TypeIAMRole},
}

// Cleanup tears down every resource family carrying the configured name
// prefix, in dependency order, after interactive confirmation. Base
// settings are never touched.
func Cleanup(ctx context.Context, configDir string, dryRun bool) error {
	store, base, err := loadStore(configDir)
	if err != nil {
		return err
	}
	if base.NamePrefix == "" {
		return &config.MissingError{
			File:   config.BaseFile,
			Reason: "name_prefix is required for cleanup; refusing to match every resource in the account",
		}
	}

	observer := newObserver()

	if !dryRun {
		scope := make([]string, 0, len(cleanupOrder))
		for _, fam := range cleanupOrder {
			scope = append(scope, fmt.Sprintf("%s matching prefix %q", fam.name, base.NamePrefix))
		}
		if err := newConfirmer(observer).Confirm(ctx, scope); err != nil {
			return err
		}
	}

	client, err := newClient(ctx, base.Region)
	if err != nil {
		return err
	}

	steps := make([]cleanup.Step, 0, len(cleanupOrder))
	for _, fam := range cleanupOrder {
		steps = append(steps, familyStep(client, observer, base, fam, dryRun))
	}

	orch := &cleanup.Orchestrator{Observer: observer, Store: store}
	summary := orch.Run(ctx, steps)

	fmt.Print(cleanup.RenderSummary(summary))
	if !summary.Clean() {
		return fmt.Errorf("cleanup finished partially; re-run to retry the remaining families")
	}
	return nil
}
