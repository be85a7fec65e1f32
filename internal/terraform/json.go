package terraform

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// JSONFile is the Terraform JSON syntax manifest written for each stack.
const JSONFile = "cdk.tf.json"

// JSON renders a stack as a Terraform JSON syntax document. Keys are sorted,
// so identical stacks always produce identical bytes.
func JSON(s *construct.Stack, version string) ([]byte, error) {
	backend := s.Backend()
	root := map[string]cty.Value{
		"//": cty.ObjectVal(map[string]cty.Value{
			"metadata": cty.ObjectVal(map[string]cty.Value{
				"backend":   cty.StringVal(backend.Type),
				"stackName": cty.StringVal(s.Name),
				"version":   cty.StringVal(version),
			}),
		}),
	}

	tf := map[string]cty.Value{
		"backend": cty.ObjectVal(map[string]cty.Value{backend.Type: backend.Body.Value()}),
	}
	if req := s.RequiredProviders(); len(req) > 0 {
		reqs := make(map[string]cty.Value, len(req))
		for _, p := range req {
			reqs[p.Name] = requiredProviderValue(p)
		}
		tf["required_providers"] = cty.ObjectVal(reqs)
	}
	root["terraform"] = cty.ObjectVal(tf)

	if providers, ok := providersValue(s); ok {
		root["provider"] = providers
	}

	managed := make(map[string]map[string]cty.Value)
	data := make(map[string]map[string]cty.Value)
	for _, r := range s.Resources() {
		section := managed
		if r.Mode == construct.DataMode {
			section = data
		}
		if section[r.Type] == nil {
			section[r.Type] = make(map[string]cty.Value)
		}
		section[r.Type][r.Name] = resourceValue(r)
	}
	if len(managed) > 0 {
		root["resource"] = nestedObject(managed)
	}
	if len(data) > 0 {
		root["data"] = nestedObject(data)
	}

	if len(s.Outputs()) > 0 {
		outputs := make(map[string]cty.Value, len(s.Outputs()))
		for _, o := range s.Outputs() {
			attrs := map[string]cty.Value{"value": cty.StringVal(o.Value)}
			if o.Description != "" {
				attrs["description"] = cty.StringVal(o.Description)
			}
			if o.Sensitive {
				attrs["sensitive"] = cty.True
			}
			outputs[o.Name] = cty.ObjectVal(attrs)
		}
		root["output"] = cty.ObjectVal(outputs)
	}

	doc := cty.ObjectVal(root)
	raw, err := ctyjson.Marshal(doc, doc.Type())
	if err != nil {
		return nil, fmt.Errorf("encode stack %s: %w", s.Name, err)
	}
	return indent(raw)
}

// indent pretty-prints cty's compact JSON without the HTML escaping it
// applies, so constraints such as "~> 5.0" stay readable.
func indent(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("indent manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// providersValue groups provider blocks by name; JSON syntax lists each
// provider as an array so aliased configurations can sit side by side.
func providersValue(s *construct.Stack) (cty.Value, bool) {
	if len(s.Providers()) == 0 {
		return cty.NilVal, false
	}
	grouped := make(map[string][]cty.Value)
	for _, p := range s.Providers() {
		grouped[p.Name] = append(grouped[p.Name], p.Body.Value())
	}
	out := make(map[string]cty.Value, len(grouped))
	for name, vals := range grouped {
		out[name] = cty.TupleVal(vals)
	}
	return cty.ObjectVal(out), true
}

func resourceValue(r *construct.Resource) cty.Value {
	v := r.Body.Value()
	deps := r.DependsOn()
	if len(deps) == 0 {
		return v
	}
	attrs := v.AsValueMap()
	if attrs == nil {
		attrs = make(map[string]cty.Value)
	}
	list := make([]cty.Value, len(deps))
	for i, d := range deps {
		list[i] = cty.StringVal(d)
	}
	attrs["depends_on"] = cty.ListVal(list)
	return cty.ObjectVal(attrs)
}

func nestedObject(m map[string]map[string]cty.Value) cty.Value {
	out := make(map[string]cty.Value, len(m))
	for typ, byName := range m {
		out[typ] = cty.ObjectVal(byName)
	}
	return cty.ObjectVal(out)
}
