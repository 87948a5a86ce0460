package agentcore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol/types"

	"github.com/imamik/agentctl/internal/resource"
)

func (c *AWSClient) listGateways(ctx context.Context, token string) (Page, error) {
	input := &bedrockagentcorecontrol.ListGatewaysInput{
		MaxResults: aws.Int32(50),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := c.control.ListGateways(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list gateways: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextToken)}
	for _, g := range out.Items {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(g.GatewayId),
			Type:           resource.TypeGateway,
			Name:           aws.ToString(g.Name),
			Status:         resource.Status(g.Status),
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

// createGateway creates an MCP gateway authorized by the OAuth provider
// described in the descriptor attributes (discovery_url, allowed_clients,
// role_arn).
func (c *AWSClient) createGateway(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	roleArn := desc.Attributes["role_arn"]
	discoveryURL := desc.Attributes["discovery_url"]
	if roleArn == "" || discoveryURL == "" {
		return nil, fmt.Errorf("gateway %s: role_arn and discovery_url attributes are required", desc.Name)
	}

	var allowedClients []string
	if v := desc.Attributes["allowed_clients"]; v != "" {
		allowedClients = strings.Split(v, ",")
	}

	input := &bedrockagentcorecontrol.CreateGatewayInput{
		Name:           aws.String(desc.Name),
		RoleArn:        aws.String(roleArn),
		ProtocolType:   types.GatewayProtocolTypeMcp,
		AuthorizerType: types.AuthorizerTypeCustomJwt,
		AuthorizerConfiguration: &types.AuthorizerConfigurationMemberCustomJWTAuthorizer{
			Value: types.CustomJWTAuthorizerConfiguration{
				DiscoveryUrl:   aws.String(discoveryURL),
				AllowedClients: allowedClients,
			},
		},
	}

	out, err := c.control.CreateGateway(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway %s: %w", desc.Name, err)
	}

	return &resource.Record{
		ID:     aws.ToString(out.GatewayId),
		Type:   resource.TypeGateway,
		Name:   desc.Name,
		Status: resource.Status(out.Status),
		Attributes: map[string]string{
			"arn": aws.ToString(out.GatewayArn),
			"url": aws.ToString(out.GatewayUrl),
		},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) deleteGateway(ctx context.Context, id string) error {
	_, err := c.control.DeleteGateway(ctx, &bedrockagentcorecontrol.DeleteGatewayInput{
		GatewayIdentifier: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete gateway %s: %w", id, err)
	}
	return nil
}
