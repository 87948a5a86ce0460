package agentcore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/imamik/agentctl/internal/resource"
)

func (c *AWSClient) listFunctions(ctx context.Context, token string) (Page, error) {
	input := &lambda.ListFunctionsInput{
		MaxItems: aws.Int32(50),
	}
	if token != "" {
		input.Marker = aws.String(token)
	}

	out, err := c.lambda.ListFunctions(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list functions: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextMarker)}
	for _, fn := range out.Functions {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(fn.FunctionName),
			Type:           resource.TypeToolLambda,
			Name:           aws.ToString(fn.FunctionName),
			Status:         resource.Status(fn.State),
			Attributes:     map[string]string{"arn": aws.ToString(fn.FunctionArn)},
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

func (c *AWSClient) getFunction(ctx context.Context, name string) (*resource.Record, error) {
	out, err := c.lambda.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get function %s: %w", name, err)
	}

	cfg := out.Configuration
	return &resource.Record{
		ID:             aws.ToString(cfg.FunctionName),
		Type:           resource.TypeToolLambda,
		Name:           aws.ToString(cfg.FunctionName),
		Status:         resource.Status(cfg.State),
		Attributes:     map[string]string{"arn": aws.ToString(cfg.FunctionArn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// createFunction deploys the tool Lambda from a container image.
// Descriptor attributes: image_uri, role_arn.
func (c *AWSClient) createFunction(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	imageURI := desc.Attributes["image_uri"]
	roleArn := desc.Attributes["role_arn"]
	if imageURI == "" || roleArn == "" {
		return nil, fmt.Errorf("function %s: image_uri and role_arn attributes are required", desc.Name)
	}

	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(desc.Name),
		Role:         aws.String(roleArn),
		PackageType:  types.PackageTypeImage,
		Code: &types.FunctionCode{
			ImageUri: aws.String(imageURI),
		},
		Timeout:    aws.Int32(60),
		MemorySize: aws.Int32(512),
	}

	out, err := c.lambda.CreateFunction(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create function %s: %w", desc.Name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.FunctionName),
		Type:           resource.TypeToolLambda,
		Name:           desc.Name,
		Status:         resource.Status(out.State),
		Attributes:     map[string]string{"arn": aws.ToString(out.FunctionArn), "image_uri": imageURI},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// updateFunction points an existing function at a new image.
func (c *AWSClient) updateFunction(ctx context.Context, name string, attrs map[string]string) (*resource.Record, error) {
	imageURI := attrs["image_uri"]
	if imageURI == "" {
		return nil, fmt.Errorf("function %s: image_uri attribute is required for update", name)
	}

	out, err := c.lambda.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(name),
		ImageUri:     aws.String(imageURI),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update function %s: %w", name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.FunctionName),
		Type:           resource.TypeToolLambda,
		Name:           aws.ToString(out.FunctionName),
		Status:         resource.Status(out.State),
		Attributes:     map[string]string{"arn": aws.ToString(out.FunctionArn), "image_uri": imageURI},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) deleteFunction(ctx context.Context, name string) error {
	_, err := c.lambda.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to delete function %s: %w", name, err)
	}
	return nil
}
