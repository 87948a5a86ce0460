package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/agentctl/cmd/agentctl/handlers"
)

// Delete returns the parent command for single-family teardown.
//
// Each subcommand enumerates every resource of one family whose name
// carries the configured prefix, bulk-deletes them with pacing, and
// verifies afterwards. Partial failures are reported, not hidden.
func Delete() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one resource family",
	}

	cmd.AddCommand(deleteFamily("runtimes", "Delete all agent runtimes"))
	cmd.AddCommand(deleteFamily("gateways", "Delete all MCP gateways"))
	cmd.AddCommand(deleteFamily("tool", "Delete the tool Lambda function"))
	cmd.AddCommand(deleteFamily("memory", "Delete the conversation memory store"))

	return cmd
}

func deleteFamily(name, short string) *cobra.Command {
	var (
		configDir string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: short + `.

Only resources whose name carries the configured name_prefix are
touched. Use --dry-run to list what would be deleted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DeleteFamily(cmd.Context(), configDir, name, dryRun)
		},
	}

	addConfigDirFlag(cmd, &configDir)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matching resources without deleting anything")
	return cmd
}
