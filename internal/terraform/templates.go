package terraform

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// VersionsTF returns content for versions.tf: the terraform block with
// required providers and backend, followed by provider configurations.
func VersionsTF(s *construct.Stack) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	tfBlock := body.AppendNewBlock("terraform", nil)
	tfBody := tfBlock.Body()
	if req := s.RequiredProviders(); len(req) > 0 {
		reqProv := tfBody.AppendNewBlock("required_providers", nil)
		for _, p := range req {
			reqProv.Body().SetAttributeValue(p.Name, requiredProviderValue(p))
		}
	}
	backend := s.Backend()
	backendBlock := tfBody.AppendNewBlock("backend", []string{backend.Type})
	if err := writeBody(backendBlock.Body(), backend.Body); err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}

	for _, p := range s.Providers() {
		body.AppendNewline()
		provBlock := body.AppendNewBlock("provider", []string{p.Name})
		if err := writeBody(provBlock.Body(), p.Body); err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
	}
	return f.Bytes(), nil
}

func requiredProviderValue(p construct.RequiredProvider) cty.Value {
	attrs := map[string]cty.Value{"source": cty.StringVal(p.Source)}
	if p.Version != "" {
		attrs["version"] = cty.StringVal(p.Version)
	}
	return cty.ObjectVal(attrs)
}

// OutputsTF returns content for outputs.tf, or nil when the stack has no outputs.
func OutputsTF(s *construct.Stack) ([]byte, error) {
	if len(s.Outputs()) == 0 {
		return nil, nil
	}
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, o := range s.Outputs() {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("output", []string{o.Name})
		toks, err := TokensForValue(cty.StringVal(o.Value))
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", o.ID, err)
		}
		block.Body().SetAttributeRaw("value", toks)
		if o.Description != "" {
			block.Body().SetAttributeValue("description", cty.StringVal(o.Description))
		}
		if o.Sensitive {
			block.Body().SetAttributeValue("sensitive", cty.True)
		}
	}
	return f.Bytes(), nil
}

// HCL renders a stack as native syntax files keyed by file name. Resources are
// written in the given order, normally the dependency order from the resolver.
func HCL(s *construct.Stack, ordered []*construct.Resource) (map[string][]byte, error) {
	b := NewBuilder()

	versions, err := VersionsTF(s)
	if err != nil {
		return nil, err
	}
	b.SetVersions(versions)

	for _, r := range ordered {
		block, err := ResourceBlock(r)
		if err != nil {
			return nil, err
		}
		b.AddResource(BlockToBytes(block))
	}

	outputs, err := OutputsTF(s)
	if err != nil {
		return nil, err
	}
	b.SetOutputs(outputs)
	return b.Build(), nil
}
