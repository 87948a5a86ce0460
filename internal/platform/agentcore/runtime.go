package agentcore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol/types"

	"github.com/imamik/agentctl/internal/resource"
)

func (c *AWSClient) listRuntimes(ctx context.Context, token string) (Page, error) {
	input := &bedrockagentcorecontrol.ListAgentRuntimesInput{
		MaxResults: aws.Int32(50),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := c.control.ListAgentRuntimes(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list agent runtimes: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextToken)}
	for _, rt := range out.AgentRuntimes {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(rt.AgentRuntimeId),
			Type:           resource.TypeRuntime,
			Name:           aws.ToString(rt.AgentRuntimeName),
			Status:         resource.Status(rt.Status),
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

// createRuntime creates a containerized agent runtime. The descriptor
// attributes carry image_uri and role_arn; the image must already be
// pushed to ECR.
func (c *AWSClient) createRuntime(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	imageURI := desc.Attributes["image_uri"]
	roleArn := desc.Attributes["role_arn"]
	if imageURI == "" || roleArn == "" {
		return nil, fmt.Errorf("runtime %s: image_uri and role_arn attributes are required", desc.Name)
	}

	input := &bedrockagentcorecontrol.CreateAgentRuntimeInput{
		AgentRuntimeName: aws.String(desc.Name),
		RoleArn:          aws.String(roleArn),
		AgentRuntimeArtifact: &types.AgentRuntimeArtifactMemberContainerConfiguration{
			Value: types.ContainerConfiguration{
				ContainerUri: aws.String(imageURI),
			},
		},
		NetworkConfiguration: &types.NetworkConfiguration{
			NetworkMode: types.NetworkModePublic,
		},
	}

	out, err := c.control.CreateAgentRuntime(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent runtime %s: %w", desc.Name, err)
	}

	return &resource.Record{
		ID:     aws.ToString(out.AgentRuntimeId),
		Type:   resource.TypeRuntime,
		Name:   desc.Name,
		Status: resource.Status(out.Status),
		Attributes: map[string]string{
			"arn":       aws.ToString(out.AgentRuntimeArn),
			"image_uri": imageURI,
		},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) deleteRuntime(ctx context.Context, id string) error {
	_, err := c.control.DeleteAgentRuntime(ctx, &bedrockagentcorecontrol.DeleteAgentRuntimeInput{
		AgentRuntimeId: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete agent runtime %s: %w", id, err)
	}
	return nil
}
