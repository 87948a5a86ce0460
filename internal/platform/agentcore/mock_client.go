package agentcore

import (
	"context"
	"sync"

	"github.com/imamik/agentctl/internal/resource"
)

// MockClient is a scriptable implementation of Client for tests. Each
// method delegates to its Func field when set; otherwise it falls back
// to a simple in-memory store keyed by type and name.
type MockClient struct {
	ListFunc   func(ctx context.Context, typ resource.Type, token string) (Page, error)
	GetFunc    func(ctx context.Context, typ resource.Type, name string) (*resource.Record, error)
	CreateFunc func(ctx context.Context, desc resource.Descriptor) (*resource.Record, error)
	DeleteFunc func(ctx context.Context, typ resource.Type, id string) error
	UpdateFunc func(ctx context.Context, typ resource.Type, id string, attrs map[string]string) (*resource.Record, error)

	mu      sync.Mutex
	store   map[resource.Type]map[string]resource.Record
	Creates int
	Deletes int
	Lists   int
	Gets    int
}

var _ Client = (*MockClient)(nil)

// Seed puts a record into the in-memory store.
func (m *MockClient) Seed(rec resource.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(rec)
}

func (m *MockClient) put(rec resource.Record) {
	if m.store == nil {
		m.store = make(map[resource.Type]map[string]resource.Record)
	}
	if m.store[rec.Type] == nil {
		m.store[rec.Type] = make(map[string]resource.Record)
	}
	m.store[rec.Type][rec.Name] = rec
}

// List mocks paginated listing. The fallback returns everything in one
// page.
func (m *MockClient) List(ctx context.Context, typ resource.Type, token string) (Page, error) {
	m.mu.Lock()
	m.Lists++
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, typ, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var page Page
	for _, rec := range m.store[typ] {
		page.Items = append(page.Items, rec)
	}
	return page, nil
}

// Get mocks retrieval by name.
func (m *MockClient) Get(ctx context.Context, typ resource.Type, name string) (*resource.Record, error) {
	m.mu.Lock()
	m.Gets++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, typ, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.store[typ][name]; ok {
		return &rec, nil
	}
	return nil, &NotFoundError{Type: string(typ), Name: name}
}

// Create mocks resource creation. The fallback stores the record with a
// pending status.
func (m *MockClient) Create(ctx context.Context, desc resource.Descriptor) (*resource.Record, error) {
	m.mu.Lock()
	m.Creates++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, desc)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec := resource.Record{
		ID:         string(desc.Type) + "-" + desc.Name,
		Type:       desc.Type,
		Name:       desc.Name,
		Status:     resource.StatusPending,
		Attributes: desc.Attributes,
	}
	m.put(rec)
	return &rec, nil
}

// Delete mocks deletion by ID.
func (m *MockClient) Delete(ctx context.Context, typ resource.Type, id string) error {
	m.mu.Lock()
	m.Deletes++
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, typ, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, rec := range m.store[typ] {
		if rec.ID == id {
			delete(m.store[typ], name)
			return nil
		}
	}
	return &NotFoundError{Type: string(typ), Name: id}
}

// Update mocks attribute patching.
func (m *MockClient) Update(ctx context.Context, typ resource.Type, id string, attrs map[string]string) (*resource.Record, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, typ, id, attrs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, rec := range m.store[typ] {
		if rec.ID != id {
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]string)
		}
		for k, v := range attrs {
			rec.Attributes[k] = v
		}
		m.store[typ][name] = rec
		return &rec, nil
	}
	return nil, &NotFoundError{Type: string(typ), Name: id}
}
