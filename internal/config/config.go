// Package config implements the two-layer configuration store: immutable
// base settings edited by the operator, and generated state written back
// by provisioning and cleanup.
//
// The generated document is the only shared mutable state in the system.
// Every mutation goes through [Store.Update] or [Store.Reset]; nothing
// else writes it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imamik/agentctl/internal/resource"
)

// File names inside the configuration directory.
const (
	BaseFile      = "base.yaml"
	GeneratedFile = "generated.yaml"
)

// BaseSettings holds the operator-edited configuration. It is never
// written by this tool.
type BaseSettings struct {
	Region     string        `yaml:"region"`
	AccountID  string        `yaml:"account_id"`
	NamePrefix string        `yaml:"name_prefix"`
	Roles      RoleSettings  `yaml:"roles"`
	Images     ImageSettings `yaml:"images"`
}

// RoleSettings names the IAM roles provisioning ensures.
type RoleSettings struct {
	RuntimeExecution string `yaml:"runtime_execution"`
	GatewayExecution string `yaml:"gateway_execution"`
	ToolExecution    string `yaml:"tool_execution"`
}

// ImageSettings holds pre-pushed container image URIs consumed by runtime
// deployment. Building and pushing images is outside this tool.
type ImageSettings struct {
	DIYAgent string `yaml:"diy_agent"`
	SDKAgent string `yaml:"sdk_agent"`
}

// Validate checks that required base settings are present.
func (b *BaseSettings) Validate() error {
	if b.Region == "" {
		return &MissingError{File: BaseFile, Reason: "region is required"}
	}
	if b.AccountID == "" {
		return &MissingError{File: BaseFile, Reason: "account_id is required"}
	}
	return nil
}

// GeneratedState mirrors one record-shaped entry per managed resource
// family. Every section is always present, zero-valued before
// provisioning, so downstream steps can read it unconditionally.
type GeneratedState struct {
	Memory        resource.Record `yaml:"memory"`
	OAuthProvider resource.Record `yaml:"oauth_provider"`
	ToolLambda    resource.Record `yaml:"tool_lambda"`
	Gateway       resource.Record `yaml:"gateway"`
	Runtime       RuntimeState    `yaml:"runtime"`
	Client        ClientEndpoints `yaml:"client"`
}

// Section returns the record stored under a record-shaped section name.
// The client section holds endpoints, not a record, so it reports false.
func (s *GeneratedState) Section(name string) (resource.Record, bool) {
	switch name {
	case SectionMemory:
		return s.Memory, true
	case SectionOAuthProvider:
		return s.OAuthProvider, true
	case SectionToolLambda:
		return s.ToolLambda, true
	case SectionGateway:
		return s.Gateway, true
	case SectionRuntimeDIY:
		return s.Runtime.DIYAgent, true
	case SectionRuntimeSDK:
		return s.Runtime.SDKAgent, true
	default:
		return resource.Record{}, false
	}
}

// RuntimeState holds the two agent runtime variants.
type RuntimeState struct {
	DIYAgent resource.Record `yaml:"diy_agent"`
	SDKAgent resource.Record `yaml:"sdk_agent"`
}

// ClientEndpoints holds the endpoints a client needs to talk to the
// deployed agent stack.
type ClientEndpoints struct {
	GatewayURL    string `yaml:"gateway_url"`
	MCPEndpoint   string `yaml:"mcp_endpoint"`
	TokenEndpoint string `yaml:"token_endpoint"`
}

// Section names accepted by Store.Update and Store.Reset. Nested
// sections use a dotted path.
const (
	SectionMemory        = "memory"
	SectionOAuthProvider = "oauth_provider"
	SectionToolLambda    = "tool_lambda"
	SectionGateway       = "gateway"
	SectionRuntimeDIY    = "runtime.diy_agent"
	SectionRuntimeSDK    = "runtime.sdk_agent"
	SectionClient        = "client"
)

// ResettableSections lists every generated section cleanup resets.
var ResettableSections = []string{
	SectionMemory,
	SectionOAuthProvider,
	SectionToolLambda,
	SectionGateway,
	SectionRuntimeDIY,
	SectionRuntimeSDK,
	SectionClient,
}

// MissingError reports absent or malformed required configuration.
// It is fatal: callers surface it immediately and never retry.
type MissingError struct {
	File   string
	Reason string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("config %s: %s", e.File, e.Reason)
}

// loadBaseFile reads and validates the base settings document.
func loadBaseFile(path string) (*BaseSettings, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingError{File: path, Reason: "file not found"}
		}
		return nil, fmt.Errorf("failed to read base config: %w", err)
	}

	var base BaseSettings
	if err := yaml.Unmarshal(data, &base); err != nil {
		return nil, &MissingError{File: path, Reason: fmt.Sprintf("invalid yaml: %v", err)}
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &base, nil
}
