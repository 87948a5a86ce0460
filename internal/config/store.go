package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/agentctl/internal/resource"
)

// Store is the single writer of the generated state document. It is
// passed explicitly to every component that needs configuration; there
// is no ambient/global access.
type Store struct {
	dir string

	// now is replaceable in tests so backup names are deterministic.
	now func() time.Time
}

// NewStore creates a store rooted at the given configuration directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the configuration directory.
func (s *Store) Dir() string { return s.dir }

// LoadBase reads the base settings. It fails with [MissingError] when
// the file is absent or required keys are missing.
func (s *Store) LoadBase() (*BaseSettings, error) {
	return loadBaseFile(filepath.Join(s.dir, BaseFile))
}

// LoadGenerated reads the generated state, returning a zero-valued
// document when the file does not exist yet. It never fails on missing
// optional sections.
func (s *Store) LoadGenerated() (*GeneratedState, error) {
	path := filepath.Join(s.dir, GeneratedFile)
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GeneratedState{}, nil
		}
		return nil, fmt.Errorf("failed to read generated state: %w", err)
	}

	var state GeneratedState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generated state: %w", err)
	}
	return &state, nil
}

// Update merges the record into the named section of the generated
// document, leaving every other section untouched, and persists
// atomically.
func (s *Store) Update(section string, record resource.Record) error {
	return s.mutate(section, record)
}

// UpdateClient writes the client endpoints section.
func (s *Store) UpdateClient(endpoints ClientEndpoints) error {
	return s.mutate(SectionClient, endpoints)
}

// Reset replaces the named section with its empty-valued schema. The
// base document is never touched.
func (s *Store) Reset(section string) error {
	if section == SectionClient {
		return s.mutate(section, ClientEndpoints{})
	}
	return s.mutate(section, resource.Record{})
}

// mutate performs a read-modify-write of a single section. The document
// is edited at the node level so sibling sections survive verbatim,
// including keys this version of the tool does not know about.
func (s *Store) mutate(section string, value interface{}) error {
	path := filepath.Join(s.dir, GeneratedFile)

	doc, err := s.loadDocument(path)
	if err != nil {
		return err
	}

	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return fmt.Errorf("failed to encode section %s: %w", section, err)
	}

	if err := setSection(doc.Content[0], strings.Split(section, "."), &valueNode); err != nil {
		return fmt.Errorf("failed to set section %s: %w", section, err)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal generated state: %w", err)
	}

	return s.writeAtomic(path, out)
}

// loadDocument parses the generated document, or builds the default
// schema when the file does not exist so every section is present from
// the first write.
func (s *Store) loadDocument(path string) (*yaml.Node, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read generated state: %w", err)
	}

	if err == nil && len(data) > 0 {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse generated state: %w", err)
		}
		if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode {
			return &doc, nil
		}
	}

	var mapping yaml.Node
	if err := mapping.Encode(&GeneratedState{}); err != nil {
		return nil, fmt.Errorf("failed to build default state: %w", err)
	}
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{&mapping},
	}, nil
}

// setSection walks the dotted path through mapping nodes, creating
// intermediate mappings as needed, and replaces the final value node.
func setSection(mapping *yaml.Node, path []string, value *yaml.Node) error {
	if mapping.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping node, got kind %d", mapping.Kind)
	}

	key := path[0]
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value != key {
			continue
		}
		if len(path) == 1 {
			mapping.Content[i+1] = value
			return nil
		}
		return setSection(mapping.Content[i+1], path[1:], value)
	}

	// Key absent: append it (and intermediate mappings for nested paths).
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	if len(path) == 1 {
		mapping.Content = append(mapping.Content, keyNode, value)
		return nil
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	mapping.Content = append(mapping.Content, keyNode, child)
	return setSection(child, path[1:], value)
}

// writeAtomic persists the document: temp file in the same directory,
// then rename over the old file, keeping one timestamped backup of the
// prior contents.
func (s *Store) writeAtomic(path string, data []byte) error {
	if prior, err := os.ReadFile(path); err == nil { // #nosec G304
		if err := s.rotateBackup(path, prior); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(s.dir, ".generated-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace generated state: %w", err)
	}
	return nil
}

// rotateBackup writes the prior document to a timestamped .bak file and
// drops older backups so exactly one is kept.
func (s *Store) rotateBackup(path string, prior []byte) error {
	old, _ := filepath.Glob(path + ".*.bak")

	backup := fmt.Sprintf("%s.%s.bak", path, s.now().Format("20060102-150405"))
	if err := os.WriteFile(backup, prior, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	for _, name := range old {
		if name != backup {
			os.Remove(name)
		}
	}
	return nil
}
