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

// OAuth2 credential providers are synchronous: once created they are
// usable, so records report an ACTIVE status on existence.
const oauthProviderStatus = resource.Status("ACTIVE")

func (c *AWSClient) listOAuthProviders(ctx context.Context, token string) (Page, error) {
	input := &bedrockagentcorecontrol.ListOauth2CredentialProvidersInput{
		MaxResults: aws.Int32(50),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := c.control.ListOauth2CredentialProviders(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list oauth2 credential providers: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextToken)}
	for _, p := range out.CredentialProviders {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(p.Name),
			Type:           resource.TypeOAuthProvider,
			Name:           aws.ToString(p.Name),
			Status:         oauthProviderStatus,
			Attributes:     map[string]string{"arn": aws.ToString(p.CredentialProviderArn)},
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

func (c *AWSClient) getOAuthProvider(ctx context.Context, name string) (*resource.Record, error) {
	out, err := c.control.GetOauth2CredentialProvider(ctx, &bedrockagentcorecontrol.GetOauth2CredentialProviderInput{
		Name: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth2 credential provider %s: %w", name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.Name),
		Type:           resource.TypeOAuthProvider,
		Name:           aws.ToString(out.Name),
		Status:         oauthProviderStatus,
		Attributes:     map[string]string{"arn": aws.ToString(out.CredentialProviderArn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// createOAuthProvider registers a custom OAuth2 provider. Descriptor
// attributes: client_id, client_secret, discovery_url.
func (c *AWSClient) createOAuthProvider(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	clientID := desc.Attributes["client_id"]
	clientSecret := desc.Attributes["client_secret"]
	discoveryURL := desc.Attributes["discovery_url"]
	if clientID == "" || clientSecret == "" || discoveryURL == "" {
		return nil, fmt.Errorf("oauth provider %s: client_id, client_secret and discovery_url attributes are required", desc.Name)
	}

	input := &bedrockagentcorecontrol.CreateOauth2CredentialProviderInput{
		Name:                     aws.String(desc.Name),
		CredentialProviderVendor: types.CredentialProviderVendorTypeCustomOauth2,
		Oauth2ProviderConfigInput: &types.Oauth2ProviderConfigInputMemberCustomOauth2ProviderConfig{
			Value: types.CustomOauth2ProviderConfigInput{
				ClientId:     aws.String(clientID),
				ClientSecret: aws.String(clientSecret),
				OauthDiscovery: &types.Oauth2DiscoveryMemberDiscoveryUrl{
					Value: discoveryURL,
				},
			},
		},
	}

	out, err := c.control.CreateOauth2CredentialProvider(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 credential provider %s: %w", desc.Name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.Name),
		Type:           resource.TypeOAuthProvider,
		Name:           desc.Name,
		Status:         oauthProviderStatus,
		Attributes:     map[string]string{"arn": aws.ToString(out.CredentialProviderArn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) deleteOAuthProvider(ctx context.Context, name string) error {
	_, err := c.control.DeleteOauth2CredentialProvider(ctx, &bedrockagentcorecontrol.DeleteOauth2CredentialProviderInput{
		Name: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete oauth2 credential provider %s: %w", name, err)
	}
	return nil
}
