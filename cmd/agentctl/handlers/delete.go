package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/agentctl/internal/cleanup"
	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/platform/agentcore"
	"github.com/imamik/agentctl/internal/provisioning"
	"github.com/imamik/agentctl/internal/resource"
)

// familyStepTimeout bounds one family's teardown, polling included.
const familyStepTimeout = 15 * time.Minute

// family describes one deletable resource family and the generated
// sections it owns.
type family struct {
	name     string
	typ      resource.Type
	sections []string

	// underscored is set for families whose resource names replace
	// hyphens, so the prefix filter has to match that form.
	underscored bool
}

var deletableFamilies = map[string]family{
	"runtimes": {
		name:        "runtimes",
		typ:         resource.TypeRuntime,
		sections:    []string{config.SectionRuntimeDIY, config.SectionRuntimeSDK},
		underscored: true,
	},
	"gateways": {
		name:     "gateways",
		typ:      resource.TypeGateway,
		sections: []string{config.SectionGateway, config.SectionClient},
	},
	"tool": {
		name:     "tool",
		typ:      resource.TypeToolLambda,
		sections: []string{config.SectionToolLambda},
	},
	"memory": {
		name:     "memory",
		typ:      resource.TypeMemory,
		sections: []string{config.SectionMemory},
	},
}

// DeleteFamily tears down every resource of one family carrying the
// configured name prefix.
func DeleteFamily(ctx context.Context, configDir, familyName string, dryRun bool) error {
	fam, ok := deletableFamilies[familyName]
	if !ok {
		return fmt.Errorf("unknown resource family %q", familyName)
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

	orch := &cleanup.Orchestrator{Observer: observer, Store: store}
	summary := orch.Run(ctx, []cleanup.Step{
		familyStep(client, observer, base, fam, dryRun),
	})

	fmt.Print(cleanup.RenderSummary(summary))
	if !summary.Clean() {
		return fmt.Errorf("%s teardown left resources behind", fam.name)
	}
	return nil
}

// familyStep builds the orchestrator step that cleans one family.
func familyStep(client agentcore.Client, observer provisioning.Observer, base *config.BaseSettings, fam family, dryRun bool) cleanup.Step {
	prefix := base.NamePrefix
	if fam.underscored {
		prefix = strings.ReplaceAll(prefix, "-", "_")
	}
	cleaner := &cleanup.FamilyCleaner{
		Engine:     cleanup.NewEngine(observer),
		Client:     client,
		Type:       fam.typ,
		NamePrefix: prefix,
		BatchSize:  50,
		DryRun:     dryRun,
	}

	sections := fam.sections
	if dryRun {
		sections = nil
	}
	return cleanup.Step{
		Name:     fam.name,
		Timeout:  familyStepTimeout,
		Sections: sections,
		Run:      cleaner.Clean,
	}
}
