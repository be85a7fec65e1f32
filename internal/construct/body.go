package construct

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Attribute is a single name = value pair of a body.
type Attribute struct {
	Name  string
	Value cty.Value
}

// Block is a nested block (ingress, filter, environment, ...).
type Block struct {
	Type string
	Body *Body
}

// Body is the ordered configuration of a resource, provider or nested block.
// Attribute order is kept so the native syntax output follows declaration order.
type Body struct {
	attrs  []Attribute
	blocks []*Block
}

// NewBody returns an empty body.
func NewBody() *Body {
	return &Body{}
}

// Set sets an attribute, replacing a previous value of the same name.
func (b *Body) Set(name string, v cty.Value) {
	for i := range b.attrs {
		if b.attrs[i].Name == name {
			b.attrs[i].Value = v
			return
		}
	}
	b.attrs = append(b.attrs, Attribute{Name: name, Value: v})
}

// SetString sets a string attribute; empty values are skipped.
func (b *Body) SetString(name, value string) {
	if value != "" {
		b.Set(name, cty.StringVal(value))
	}
}

// SetBool sets a bool attribute when true. Terraform defaults these to false.
func (b *Body) SetBool(name string, value bool) {
	if value {
		b.Set(name, cty.BoolVal(true))
	}
}

// SetInt sets a number attribute.
func (b *Body) SetInt(name string, value int) {
	b.Set(name, cty.NumberIntVal(int64(value)))
}

// SetStringList sets a list(string) attribute; empty lists are skipped.
func (b *Body) SetStringList(name string, values []string) {
	if len(values) == 0 {
		return
	}
	list := make([]cty.Value, len(values))
	for i, v := range values {
		list[i] = cty.StringVal(v)
	}
	b.Set(name, cty.ListVal(list))
}

// SetStringMap sets a map(string) attribute (e.g. tags); empty maps are skipped.
func (b *Body) SetStringMap(name string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	ctyMap := make(map[string]cty.Value, len(m))
	for k, v := range m {
		ctyMap[k] = cty.StringVal(v)
	}
	b.Set(name, cty.MapVal(ctyMap))
}

// AppendBlock appends a nested block and returns its body.
func (b *Body) AppendBlock(blockType string) *Body {
	nb := &Block{Type: blockType, Body: NewBody()}
	b.blocks = append(b.blocks, nb)
	return nb.Body
}

// Attributes returns the attributes in declaration order.
func (b *Body) Attributes() []Attribute {
	return b.attrs
}

// Attribute returns the value of the named attribute.
func (b *Body) Attribute(name string) (cty.Value, bool) {
	for _, a := range b.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return cty.NilVal, false
}

// Blocks returns nested blocks in declaration order.
func (b *Body) Blocks() []*Block {
	return b.blocks
}

// BlocksOfType returns nested blocks with the given type.
func (b *Body) BlocksOfType(blockType string) []*Block {
	var out []*Block
	for _, blk := range b.blocks {
		if blk.Type == blockType {
			out = append(out, blk)
		}
	}
	return out
}

// IsEmpty reports whether the body has neither attributes nor blocks.
func (b *Body) IsEmpty() bool {
	return b == nil || (len(b.attrs) == 0 && len(b.blocks) == 0)
}

// Strings returns every string leaf of the body, nested blocks included.
func (b *Body) Strings() []string {
	var out []string
	for _, a := range b.attrs {
		out = appendStrings(out, a.Value)
	}
	for _, blk := range b.blocks {
		out = append(out, blk.Body.Strings()...)
	}
	return out
}

func appendStrings(out []string, v cty.Value) []string {
	if v.IsNull() || !v.IsKnown() {
		return out
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return append(out, v.AsString())
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType() || ty.IsMapType() || ty.IsObjectType():
		if v.LengthInt() == 0 {
			return out
		}
		// Map and object iteration is already key-ordered; keep it that way.
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = appendStrings(out, ev)
		}
	}
	return out
}

// Value converts the body into a cty object. Nested blocks are grouped by type
// into tuples of objects, which is how Terraform JSON syntax expresses them.
func (b *Body) Value() cty.Value {
	if b.IsEmpty() {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(b.attrs)+len(b.blocks))
	for _, a := range b.attrs {
		attrs[a.Name] = a.Value
	}
	grouped := make(map[string][]cty.Value)
	var order []string
	for _, blk := range b.blocks {
		if _, seen := grouped[blk.Type]; !seen {
			order = append(order, blk.Type)
		}
		grouped[blk.Type] = append(grouped[blk.Type], blk.Body.Value())
	}
	sort.Strings(order)
	for _, t := range order {
		attrs[t] = cty.TupleVal(grouped[t])
	}
	return cty.ObjectVal(attrs)
}
