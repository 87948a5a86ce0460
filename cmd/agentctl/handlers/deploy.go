package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/agentctl/internal/config"
	"github.com/imamik/agentctl/internal/resource"
)

// DeployTool ensures the tool Lambda function exists, is ready and runs
// the given container image, then records it in the generated state.
func DeployTool(ctx context.Context, configDir, image string) error {
	if image == "" {
		return fmt.Errorf("--image is required")
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

	roleName := base.Roles.ToolExecution
	if roleName == "" {
		roleName = resourceName(base, "tool-role")
	}
	role, err := ensureRole(ctx, client, observer, base, roleName, lambdaTrustPolicy)
	if err != nil {
		return fmt.Errorf("tool role provisioning failed: %w", err)
	}

	ensurer := newEnsurer(client, observer, functionReadySet)
	rec, err := ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeToolLambda,
		Name:   resourceName(base, "tool"),
		Region: base.Region,
		Attributes: map[string]string{
			"image_uri": image,
			"role_arn":  roleAttr(role, base, roleName),
		},
	})
	if err != nil {
		return fmt.Errorf("tool deployment failed: %w", err)
	}

	// An existing function stays on its old image until the code is
	// updated explicitly.
	if rec.Attributes["image_uri"] != image {
		observer.Printf("[deploy] updating %s to image %s", rec.Name, image)
		rec, err = client.Update(ctx, resource.TypeToolLambda, rec.ID, map[string]string{
			"image_uri": image,
		})
		if err != nil {
			return fmt.Errorf("tool image update failed: %w", err)
		}
	}

	return store.Update(config.SectionToolLambda, stamped(rec))
}

// RuntimeVariant selects which agent runtime a deploy targets.
type RuntimeVariant string

const (
	RuntimeDIY RuntimeVariant = "diy"
	RuntimeSDK RuntimeVariant = "sdk"
)

// DeployRuntime ensures the container repository, the runtime execution
// role and the agent runtime for one variant, then records the runtime
// in the generated state.
func DeployRuntime(ctx context.Context, configDir string, variant RuntimeVariant) error {
	store, base, err := loadStore(configDir)
	if err != nil {
		return err
	}

	var image, section string
	switch variant {
	case RuntimeDIY:
		image, section = base.Images.DIYAgent, config.SectionRuntimeDIY
	case RuntimeSDK:
		image, section = base.Images.SDKAgent, config.SectionRuntimeSDK
	default:
		return fmt.Errorf("unknown runtime variant %q", variant)
	}
	if image == "" {
		return &config.MissingError{
			File:   config.BaseFile,
			Reason: fmt.Sprintf("images.%s_agent is required for this deploy", variant),
		}
	}

	observer := newObserver()
	client, err := newClient(ctx, base.Region)
	if err != nil {
		return err
	}

	repoEnsurer := newEnsurer(client, observer, repoReadySet)
	if _, err := repoEnsurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeECRRepository,
		Name:   resourceName(base, "agents"),
		Region: base.Region,
	}); err != nil {
		return fmt.Errorf("container repository provisioning failed: %w", err)
	}

	roleName := base.Roles.RuntimeExecution
	if roleName == "" {
		roleName = resourceName(base, "runtime-role")
	}
	role, err := ensureRole(ctx, client, observer, base, roleName, agentCoreTrustPolicy)
	if err != nil {
		return fmt.Errorf("runtime role provisioning failed: %w", err)
	}

	ensurer := newEnsurer(client, observer, runtimeReadySet)
	rec, err := ensurer.Ensure(ctx, resource.Descriptor{
		Type:   resource.TypeRuntime,
		Name:   runtimeName(base, "runtime-"+string(variant)),
		Region: base.Region,
		Attributes: map[string]string{
			"image_uri": image,
			"role_arn":  roleAttr(role, base, roleName),
		},
	})
	if err != nil {
		return fmt.Errorf("runtime deployment failed: %w", err)
	}

	return store.Update(section, stamped(rec))
}
