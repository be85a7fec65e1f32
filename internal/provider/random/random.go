// Package random declares resources of the hashicorp/random provider.
package random

import (
	"github.com/json-to-terraform/stacks/internal/construct"
)

// RequiredProvider pins the random provider plugin.
var RequiredProvider = construct.RequiredProvider{
	Name:    "random",
	Source:  "hashicorp/random",
	Version: "~> 3.5",
}

// NewProvider declares the random provider. It takes no configuration.
func NewProvider(s *construct.Stack, id string) *construct.Provider {
	return s.AddProvider(id, RequiredProvider, nil)
}

// PetConfig configures random_pet.
type PetConfig struct {
	Length    int
	Prefix    string
	Separator string
}

// Pet is a random_pet.
type Pet struct{ *construct.Resource }

// ID references the generated name.
func (p *Pet) ID() string { return p.Get("id") }

// NewPet declares a random pet name.
func NewPet(s *construct.Stack, id string, cfg *PetConfig) *Pet {
	if cfg.Length < 0 {
		s.Report(id, "length must not be negative", "Leave Length at 0 for the provider default of 2")
	}

	body := construct.NewBody()
	if cfg.Length > 0 {
		body.SetInt("length", cfg.Length)
	}
	body.SetString("prefix", cfg.Prefix)
	body.SetString("separator", cfg.Separator)
	return &Pet{s.AddResource(id, "random_pet", body)}
}
