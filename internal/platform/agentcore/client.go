// Package agentcore wraps the cloud control plane behind one resource
// API. Provisioning and cleanup only see this interface; the AWS client
// and the mock client are interchangeable behind it.
package agentcore

import (
	"context"

	"github.com/imamik/agentctl/internal/resource"
)

// Page is one page of a listing call.
type Page struct {
	Items []resource.Record

	// NextToken is the opaque continuation token, empty on the last page.
	NextToken string
}

// Client is the remote resource API consumed by provisioning and
// cleanup. Every implementation must treat names as exact and
// case-sensitive.
type Client interface {
	// List returns one page of resources of the given type. An empty
	// token requests the first page.
	List(ctx context.Context, typ resource.Type, token string) (Page, error)

	// Get retrieves a resource by name. Returns an error satisfying
	// IsNotFound when no such resource exists.
	Get(ctx context.Context, typ resource.Type, name string) (*resource.Record, error)

	// Create submits the descriptor. Creation is asynchronous: the
	// returned record usually carries a non-ready status and callers
	// poll until ready.
	Create(ctx context.Context, desc resource.Descriptor) (*resource.Record, error)

	// Delete removes a resource by ID. "Not found" is returned as an
	// error satisfying IsNotFound; callers decide whether that counts
	// as success.
	Delete(ctx context.Context, typ resource.Type, id string) error

	// Update patches mutable attributes of an existing resource.
	Update(ctx context.Context, typ resource.Type, id string, attrs map[string]string) (*resource.Record, error)
}
