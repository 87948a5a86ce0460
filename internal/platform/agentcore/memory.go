package agentcore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcorecontrol"

	"github.com/imamik/agentctl/internal/resource"
)

// Default event expiry for conversation memory, in days.
const defaultMemoryExpiryDays = 90

func (c *AWSClient) listMemories(ctx context.Context, token string) (Page, error) {
	input := &bedrockagentcorecontrol.ListMemoriesInput{
		MaxResults: aws.Int32(50),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	out, err := c.control.ListMemories(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list memories: %w", err)
	}

	page := Page{NextToken: aws.ToString(out.NextToken)}
	for _, m := range out.Memories {
		id := aws.ToString(m.Id)
		page.Items = append(page.Items, resource.Record{
			ID:             id,
			Type:           resource.TypeMemory,
			Name:           memoryName(id),
			Status:         resource.Status(m.Status),
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

func (c *AWSClient) createMemory(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	expiry := int32(defaultMemoryExpiryDays)
	if v, ok := desc.Attributes["event_expiry_days"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid event_expiry_days %q: %w", v, err)
		}
		expiry = int32(n)
	}

	input := &bedrockagentcorecontrol.CreateMemoryInput{
		Name:                aws.String(desc.Name),
		EventExpiryDuration: aws.Int32(expiry),
	}
	if d, ok := desc.Attributes["description"]; ok {
		input.Description = aws.String(d)
	}

	out, err := c.control.CreateMemory(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory %s: %w", desc.Name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.Memory.Id),
		Type:           resource.TypeMemory,
		Name:           desc.Name,
		Status:         resource.Status(out.Memory.Status),
		Attributes:     map[string]string{"arn": aws.ToString(out.Memory.Arn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

func (c *AWSClient) deleteMemory(ctx context.Context, id string) error {
	_, err := c.control.DeleteMemory(ctx, &bedrockagentcorecontrol.DeleteMemoryInput{
		MemoryId: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete memory %s: %w", id, err)
	}
	return nil
}

// memoryName recovers the creation name from a memory ID. The control
// plane suffixes the name with a generated token after a dash.
func memoryName(id string) string {
	if i := strings.LastIndex(id, "-"); i > 0 {
		return id[:i]
	}
	return id
}
