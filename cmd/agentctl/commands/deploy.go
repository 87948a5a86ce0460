package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/agentctl/cmd/agentctl/handlers"
)

// Deploy returns the parent command for the compute resources: the tool
// Lambda function and the two agent runtimes.
func Deploy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy agent compute resources",
	}

	cmd.AddCommand(deployTool())
	cmd.AddCommand(deployRuntime())

	return cmd
}

func deployTool() *cobra.Command {
	var (
		configDir string
		image     string
	)

	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Deploy the tool Lambda function",
		Long: `Deploy the tool Lambda function from a container image.

Ensures the tool execution role exists, creates the function if absent,
and updates the function code when the image changed.

Example:
  agentctl deploy tool -c ./config \
    --image 123456789012.dkr.ecr.eu-central-1.amazonaws.com/myagent-agents:tool-v3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DeployTool(cmd.Context(), configDir, image)
		},
	}

	addConfigDirFlag(cmd, &configDir)
	cmd.Flags().StringVar(&image, "image", "", "Container image URI for the function (required)")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func deployRuntime() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Deploy an agent runtime variant",
	}

	cmd.AddCommand(deployRuntimeVariant(handlers.RuntimeDIY,
		"Deploy the hand-rolled agent runtime",
		"Uses the images.diy_agent URI from base.yaml."))
	cmd.AddCommand(deployRuntimeVariant(handlers.RuntimeSDK,
		"Deploy the SDK-based agent runtime",
		"Uses the images.sdk_agent URI from base.yaml."))

	return cmd
}

func deployRuntimeVariant(variant handlers.RuntimeVariant, short, long string) *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   string(variant),
		Short: short,
		Long:  short + ".\n\n" + long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DeployRuntime(cmd.Context(), configDir, variant)
		},
	}

	addConfigDirFlag(cmd, &configDir)
	return cmd
}
