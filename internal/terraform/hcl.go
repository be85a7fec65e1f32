package terraform

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// refTraversal builds hcl.Traversal for a resource address and attribute (e.g. aws_vpc.vpc.id).
func refTraversal(addr, attr string) hcl.Traversal {
	var t hcl.Traversal
	for _, part := range strings.Split(addr, ".") {
		if part == "" {
			continue
		}
		if len(t) == 0 {
			t = append(t, hcl.TraverseRoot{Name: part})
		} else {
			t = append(t, hcl.TraverseAttr{Name: part})
		}
	}
	if attr != "" {
		t = append(t, hcl.TraverseAttr{Name: attr})
	}
	return t
}

// TokensForValue renders a value as native syntax. Interpolation strings
// become expressions: "${aws_vpc.vpc.id}" is written as aws_vpc.vpc.id and
// "arn/${x.y.z}/*" keeps its template form.
func TokensForValue(v cty.Value) (hclwrite.Tokens, error) {
	if !hasToken(v) {
		return hclwrite.TokensForValue(v), nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return tokensForTemplate(v.AsString())
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		var elems []hclwrite.Tokens
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			toks, err := TokensForValue(ev)
			if err != nil {
				return nil, err
			}
			elems = append(elems, toks)
		}
		return hclwrite.TokensForTuple(elems), nil
	case ty.IsMapType() || ty.IsObjectType():
		var attrs []hclwrite.ObjectAttrTokens
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			toks, err := TokensForValue(ev)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, hclwrite.ObjectAttrTokens{Name: keyTokens(k.AsString()), Value: toks})
		}
		return hclwrite.TokensForObject(attrs), nil
	}
	return hclwrite.TokensForValue(v), nil
}

func keyTokens(k string) hclwrite.Tokens {
	if hclsyntax.ValidIdentifier(k) {
		return hclwrite.TokensForIdentifier(k)
	}
	return hclwrite.TokensForValue(cty.StringVal(k))
}

func tokensForTemplate(s string) (hclwrite.Tokens, error) {
	src, ok := construct.IsWholeToken(s)
	if !ok {
		src = `"` + escapeTemplate(s) + `"`
	}
	f, diags := hclwrite.ParseConfig([]byte("v = "+src+"\n"), "", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid expression %q: %w", s, diags)
	}
	return f.Body().GetAttribute("v").Expr().BuildTokens(nil), nil
}

// escapeTemplate escapes a JSON-syntax template string for a quoted native template.
func escapeTemplate(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func hasToken(v cty.Value) bool {
	if v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return construct.IsToken(v.AsString())
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType() || ty.IsMapType() || ty.IsObjectType():
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			if hasToken(ev) {
				return true
			}
		}
	}
	return false
}

// writeBody copies a construct body into an hclwrite body.
func writeBody(dst *hclwrite.Body, src *construct.Body) error {
	for _, a := range src.Attributes() {
		toks, err := TokensForValue(a.Value)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		dst.SetAttributeRaw(a.Name, toks)
	}
	for _, blk := range src.Blocks() {
		nb := dst.AppendNewBlock(blk.Type, nil)
		if err := writeBody(nb.Body(), blk.Body); err != nil {
			return fmt.Errorf("%s: %w", blk.Type, err)
		}
	}
	return nil
}

// ResourceBlock creates a resource (or data) "type" "name" { } block for a declaration.
func ResourceBlock(r *construct.Resource) (*hclwrite.Block, error) {
	kind := "resource"
	if r.Mode == construct.DataMode {
		kind = "data"
	}
	block := hclwrite.NewBlock(kind, []string{r.Type, r.Name})
	body := block.Body()
	if err := writeBody(body, r.Body); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Address(), err)
	}
	if deps := r.DependsOn(); len(deps) > 0 {
		tokens := make([]hclwrite.Tokens, len(deps))
		for i, addr := range deps {
			tokens[i] = hclwrite.TokensForTraversal(refTraversal(addr, ""))
		}
		body.SetAttributeRaw("depends_on", hclwrite.TokensForTuple(tokens))
	}
	return block, nil
}

// BlockToBytes formats a block and returns its bytes (with newline).
func BlockToBytes(block *hclwrite.Block) []byte {
	f := hclwrite.NewEmptyFile()
	f.Body().AppendBlock(block)
	return hclwrite.Format(f.Bytes())
}
