package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/agentctl/cmd/agentctl/handlers"
)

// Cleanup returns the full-teardown command.
func Cleanup() *cobra.Command {
	var (
		configDir string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Tear down every agent resource in dependency order",
		Long: `Tear down every resource carrying the configured name_prefix.

Families are deleted in reverse-dependency order: runtimes, gateways,
the tool function, OAuth providers, memory, container repositories and
finally IAM roles. A failing family is reported and the rest still run.

The command asks for a typed confirmation phrase plus an explicit
yes/no, then waits five seconds before the first destructive call.
There is no flag to skip the confirmation; use --dry-run to preview.

Base settings (base.yaml) are never touched. Cleanly removed families
have their generated.yaml sections reset; partially removed ones are
marked ORPHANED for the next run.

Example:
  agentctl cleanup -c ./config --dry-run
  agentctl cleanup -c ./config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), configDir, dryRun)
		},
	}

	addConfigDirFlag(cmd, &configDir)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matching resources without deleting anything")
	return cmd
}
