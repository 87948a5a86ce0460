package agentcore

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/imamik/agentctl/internal/resource"
)

// AWSClient implements Client against the AWS control plane: Bedrock
// AgentCore for memory, gateways, runtimes and credential providers,
// plus Lambda, ECR and IAM for the supporting families.
type AWSClient struct {
	control *bedrockagentcorecontrol.Client
	lambda  *lambda.Client
	ecr     *ecr.Client
	iam     *iam.Client
	region  string
}

var _ Client = (*AWSClient)(nil)

// NewAWSClient builds a client from the default credential chain.
func NewAWSClient(ctx context.Context, region string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSClient{
		control: bedrockagentcorecontrol.NewFromConfig(cfg),
		lambda:  lambda.NewFromConfig(cfg),
		ecr:     ecr.NewFromConfig(cfg),
		iam:     iam.NewFromConfig(cfg),
		region:  region,
	}, nil
}

// List implements Client.
func (c *AWSClient) List(ctx context.Context, typ resource.Type, token string) (Page, error) {
	switch typ {
	case resource.TypeMemory:
		return c.listMemories(ctx, token)
	case resource.TypeOAuthProvider:
		return c.listOAuthProviders(ctx, token)
	case resource.TypeGateway:
		return c.listGateways(ctx, token)
	case resource.TypeRuntime:
		return c.listRuntimes(ctx, token)
	case resource.TypeToolLambda:
		return c.listFunctions(ctx, token)
	case resource.TypeECRRepository:
		return c.listRepositories(ctx, token)
	case resource.TypeIAMRole:
		return c.listRoles(ctx, token)
	default:
		return Page{}, fmt.Errorf("list: unsupported resource type %q", typ)
	}
}

// Get implements Client. Families without a native get-by-name fall
// back to listing and exact name matching.
func (c *AWSClient) Get(ctx context.Context, typ resource.Type, name string) (*resource.Record, error) {
	switch typ {
	case resource.TypeOAuthProvider:
		return c.getOAuthProvider(ctx, name)
	case resource.TypeToolLambda:
		return c.getFunction(ctx, name)
	case resource.TypeECRRepository:
		return c.getRepository(ctx, name)
	case resource.TypeIAMRole:
		return c.getRole(ctx, name)
	case resource.TypeMemory, resource.TypeGateway, resource.TypeRuntime:
		return c.getByListing(ctx, typ, name)
	default:
		return nil, fmt.Errorf("get: unsupported resource type %q", typ)
	}
}

// Create implements Client.
func (c *AWSClient) Create(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	switch desc.Type {
	case resource.TypeMemory:
		return c.createMemory(ctx, desc)
	case resource.TypeOAuthProvider:
		return c.createOAuthProvider(ctx, desc)
	case resource.TypeGateway:
		return c.createGateway(ctx, desc)
	case resource.TypeRuntime:
		return c.createRuntime(ctx, desc)
	case resource.TypeToolLambda:
		return c.createFunction(ctx, desc)
	case resource.TypeECRRepository:
		return c.createRepository(ctx, desc)
	case resource.TypeIAMRole:
		return c.createRole(ctx, desc)
	default:
		return nil, fmt.Errorf("create: unsupported resource type %q", desc.Type)
	}
}

// Delete implements Client.
func (c *AWSClient) Delete(ctx context.Context, typ resource.Type, id string) error {
	switch typ {
	case resource.TypeMemory:
		return c.deleteMemory(ctx, id)
	case resource.TypeOAuthProvider:
		return c.deleteOAuthProvider(ctx, id)
	case resource.TypeGateway:
		return c.deleteGateway(ctx, id)
	case resource.TypeRuntime:
		return c.deleteRuntime(ctx, id)
	case resource.TypeToolLambda:
		return c.deleteFunction(ctx, id)
	case resource.TypeECRRepository:
		return c.deleteRepository(ctx, id)
	case resource.TypeIAMRole:
		return c.deleteRole(ctx, id)
	default:
		return fmt.Errorf("delete: unsupported resource type %q", typ)
	}
}

// Update implements Client. Only the families whose attributes are
// mutable in place support it.
func (c *AWSClient) Update(ctx context.Context, typ resource.Type, id string, attrs map[string]string) (*resource.Record, error) {
	switch typ {
	case resource.TypeToolLambda:
		return c.updateFunction(ctx, id, attrs)
	default:
		return nil, fmt.Errorf("update: unsupported resource type %q", typ)
	}
}

// getByListing walks pages of List until it finds an exact name match.
func (c *AWSClient) getByListing(ctx context.Context, typ resource.Type, name string) (*resource.Record, error) {
	token := ""
	for {
		page, err := c.List(ctx, typ, token)
		if err != nil {
			return nil, err
		}
		for i := range page.Items {
			if page.Items[i].Name == name {
				return &page.Items[i], nil
			}
		}
		if page.NextToken == "" {
			return nil, &NotFoundError{Type: string(typ), Name: name}
		}
		token = page.NextToken
	}
}
