package agentcore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"

	"github.com/imamik/agentctl/internal/resource"
)

// Repositories have no asynchronous lifecycle; existing ones report
// AVAILABLE.
func (c *AWSClient) listRepositories(ctx context.Context, token string) (Page, error) {
	input := &ecr.DescribeRepositoriesInput{
		MaxResults: aws.Int32(50),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := c.ecr.DescribeRepositories(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list repositories: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextToken)}
	for _, repo := range out.Repositories {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(repo.RepositoryName),
			Type:           resource.TypeECRRepository,
			Name:           aws.ToString(repo.RepositoryName),
			Status:         resource.StatusAvailable,
			Attributes:     map[string]string{"uri": aws.ToString(repo.RepositoryUri)},
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

func (c *AWSClient) getRepository(ctx context.Context, name string) (*resource.Record, error) {
	out, err := c.ecr.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", name, err)
	}
	if len(out.Repositories) == 0 {
		return nil, &NotFoundError{Type: string(resource.TypeECRRepository), Name: name}
	}

	repo := out.Repositories[0]
	return &resource.Record{
		ID:             aws.ToString(repo.RepositoryName),
		Type:           resource.TypeECRRepository,
		Name:           aws.ToString(repo.RepositoryName),
		Status:         resource.StatusAvailable,
		Attributes:     map[string]string{"uri": aws.ToString(repo.RepositoryUri)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) createRepository(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	out, err := c.ecr.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(desc.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", desc.Name, err)
	}

	repo := out.Repository
	return &resource.Record{
		ID:             aws.ToString(repo.RepositoryName),
		Type:           resource.TypeECRRepository,
		Name:           desc.Name,
		Status:         resource.StatusAvailable,
		Attributes:     map[string]string{"uri": aws.ToString(repo.RepositoryUri)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// deleteRepository force-deletes: images left in the repository do not
// block teardown.
func (c *AWSClient) deleteRepository(ctx context.Context, name string) error {
	_, err := c.ecr.DeleteRepository(ctx, &ecr.DeleteRepositoryInput{
		RepositoryName: aws.String(name),
		Force:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete repository %s: %w", name, err)
	}
	return nil
}
