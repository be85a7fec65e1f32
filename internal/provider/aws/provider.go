// Package aws declares typed AWS resource descriptors on top of the construct
// model. Each constructor validates its literal configuration, records any
// problem on the stack and returns a handle exposing the attributes other
// resources may reference.
package aws

import (
	"github.com/json-to-terraform/stacks/internal/construct"
)

// RequiredProvider pins the AWS provider plugin.
var RequiredProvider = construct.RequiredProvider{
	Name:    "aws",
	Source:  "hashicorp/aws",
	Version: "~> 5.0",
}

// ProviderConfig configures the AWS provider.
type ProviderConfig struct {
	Region      string
	Profile     string
	DefaultTags map[string]string
}

// NewProvider declares the AWS provider for a stack.
func NewProvider(s *construct.Stack, id string, cfg *ProviderConfig) *construct.Provider {
	c := checker{s, id}
	c.required("region", cfg.Region, "Set ProviderConfig.Region (e.g. eu-west-1)")

	body := construct.NewBody()
	body.SetString("region", cfg.Region)
	body.SetString("profile", cfg.Profile)
	if len(cfg.DefaultTags) > 0 {
		body.AppendBlock("default_tags").SetStringMap("tags", cfg.DefaultTags)
	}
	return s.AddProvider(id, RequiredProvider, body)
}

// Region returns the literal region configured on the stack's AWS provider.
func Region(s *construct.Stack) string {
	for _, p := range s.Providers() {
		if p.Name != RequiredProvider.Name {
			continue
		}
		if v, ok := p.Body.Attribute("region"); ok {
			return v.AsString()
		}
	}
	return ""
}

func setTags(body *construct.Body, tags map[string]string) {
	body.SetStringMap("tags", tags)
}
