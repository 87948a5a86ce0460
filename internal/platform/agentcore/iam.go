package agentcore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/imamik/agentctl/internal/resource"
)

func (c *AWSClient) listRoles(ctx context.Context, token string) (Page, error) {
	input := &iam.ListRolesInput{
		MaxItems: aws.Int32(100),
	}
	if token != "" {
		input.Marker = aws.String(token)
	}

	out, err := c.iam.ListRoles(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("failed to list roles: %w", err)
	}

	page := Page{}
	if out.IsTruncated {
		page.NextToken = aws.ToString(out.Marker)
	}
	for _, role := range out.Roles {
		page.Items = append(page.Items, resource.Record{
			ID:             aws.ToString(role.RoleName),
			Type:           resource.TypeIAMRole,
			Name:           aws.ToString(role.RoleName),
			Status:         resource.StatusAvailable,
			Attributes:     map[string]string{"arn": aws.ToString(role.Arn)},
			LastObservedAt: time.Now().UTC(),
		})
	}
	return page, nil
}

func (c *AWSClient) getRole(ctx context.Context, name string) (*resource.Record, error) {
	out, err := c.iam.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get role %s: %w", name, err)
	}

	return &resource.Record{
		ID:             aws.ToString(out.Role.RoleName),
		Type:           resource.TypeIAMRole,
		Name:           aws.ToString(out.Role.RoleName),
		Status:         resource.StatusAvailable,
		Attributes:     map[string]string{"arn": aws.ToString(out.Role.Arn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// createRole creates an execution role. Descriptor attributes:
// trust_policy (required assume-role document), policy and policy_name
// (optional inline permissions).
func (c *AWSClient) createRole(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	trustPolicy := desc.Attributes["trust_policy"]
	if trustPolicy == "" {
		return nil, fmt.Errorf("role %s: trust_policy attribute is required", desc.Name)
	}

	out, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(desc.Name),
		AssumeRolePolicyDocument: aws.String(trustPolicy),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", desc.Name, err)
	}

	if policy := desc.Attributes["policy"]; policy != "" {
		policyName := desc.Attributes["policy_name"]
		if policyName == "" {
			policyName = desc.Name + "-policy"
		}
		_, err := c.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(desc.Name),
			PolicyName:     aws.String(policyName),
			PolicyDocument: aws.String(policy),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to attach policy to role %s: %w", desc.Name, err)
		}
	}

	return &resource.Record{
		ID:             aws.ToString(out.Role.RoleName),
		Type:           resource.TypeIAMRole,
		Name:           desc.Name,
		Status:         resource.StatusAvailable,
		Attributes:     map[string]string{"arn": aws.ToString(out.Role.Arn)},
		LastObservedAt: time.Now().UTC(),
	}, nil
}

// deleteRole removes inline and attached policies first; IAM refuses to
// delete a role that still has either.
func (c *AWSClient) deleteRole(ctx context.Context, name string) error {
	inline, err := c.iam.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{
		RoleName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to list inline policies for role %s: %w", name, err)
	}
	for _, policyName := range inline.PolicyNames {
		_, err := c.iam.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
			RoleName:   aws.String(name),
			PolicyName: aws.String(policyName),
		})
		if err != nil {
			return fmt.Errorf("failed to delete inline policy %s from role %s: %w", policyName, name, err)
		}
	}

	attached, err := c.iam.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("failed to list attached policies for role %s: %w", name, err)
	}
	for _, policy := range attached.AttachedPolicies {
		_, err := c.iam.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
			RoleName:  aws.String(name),
			PolicyArn: policy.PolicyArn,
		})
		if err != nil {
			return fmt.Errorf("failed to detach policy %s from role %s: %w", aws.ToString(policy.PolicyArn), name, err)
		}
	}

	if _, err := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(name)}); err != nil {
		return fmt.Errorf("failed to delete role %s: %w", name, err)
	}
	return nil
}
