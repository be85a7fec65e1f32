package dependency

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// ErrCycle is returned when the dependency graph contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// UnresolvedError reports a reference to an address the stack does not declare.
type UnresolvedError struct {
	From string // construct id holding the reference
	To   string // referenced address
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s references undeclared %s", e.From, e.To)
}

// roots that are not resource references (var.x, local.y, path.module, ...)
var nonResourceRoots = map[string]bool{
	"var":       true,
	"local":     true,
	"module":    true,
	"path":      true,
	"terraform": true,
	"each":      true,
	"count":     true,
	"self":      true,
}

// References returns the resource addresses referenced by a template string,
// in order of first appearance.
func References(s string) ([]string, error) {
	if !construct.IsToken(s) {
		return nil, nil
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(s), "", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %q: %w", s, diags)
	}
	var out []string
	seen := make(map[string]bool)
	for _, tr := range expr.Variables() {
		addr, ok := address(tr)
		if !ok || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out, nil
}

// address reduces a traversal to the resource address it starts with.
func address(tr hcl.Traversal) (string, bool) {
	root := tr.RootName()
	if nonResourceRoots[root] {
		return "", false
	}
	var names []string
steps:
	for _, step := range tr[1:] {
		switch attr := step.(type) {
		case hcl.TraverseAttr:
			names = append(names, attr.Name)
		case *hcl.TraverseAttr:
			names = append(names, attr.Name)
		default:
			break steps
		}
	}
	if root == "data" {
		if len(names) < 2 {
			return "", false
		}
		return "data." + names[0] + "." + names[1], true
	}
	if len(names) < 1 {
		return "", false
	}
	return root + "." + names[0], true
}

// Edges returns the addresses a resource depends on: references in its body
// followed by explicit depends_on entries.
func Edges(r *construct.Resource) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(addr string) {
		if addr != r.Address() && !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}
	for _, s := range r.Body.Strings() {
		refs, err := References(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.ID, err)
		}
		for _, addr := range refs {
			add(addr)
		}
	}
	for _, addr := range r.DependsOn() {
		add(addr)
	}
	return out, nil
}

// Resolve builds the dependency graph of a stack and returns:
// - ordered: resources in topological order (dependencies first, declaration order breaks ties)
// - tiers: resources grouped by depth (tier 0 = no deps, tier 1 = depends only on tier 0, etc.)
func Resolve(s *construct.Stack) (ordered []*construct.Resource, tiers [][]*construct.Resource, err error) {
	resources := s.Resources()
	if len(resources) == 0 {
		return nil, nil, checkOutputs(s)
	}

	index := make(map[string]int, len(resources))
	for i, r := range resources {
		index[r.Address()] = i
	}

	// dependents[u] lists resources that depend on u; inDegree counts unique dependencies.
	dependents := make([][]int, len(resources))
	inDegree := make([]int, len(resources))
	for i, r := range resources {
		edges, err := Edges(r)
		if err != nil {
			return nil, nil, err
		}
		for _, addr := range edges {
			j, ok := index[addr]
			if !ok {
				return nil, nil, &UnresolvedError{From: r.ID, To: addr}
			}
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	var queue []int
	for i := range resources {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered = make([]*construct.Resource, 0, len(resources))
	for len(queue) > 0 {
		tier := make([]*construct.Resource, len(queue))
		for k, i := range queue {
			tier[k] = resources[i]
		}
		tiers = append(tiers, tier)

		next := make([]bool, len(resources))
		for _, u := range queue {
			ordered = append(ordered, resources[u])
			for _, v := range dependents[u] {
				inDegree[v]--
				if inDegree[v] == 0 {
					next[v] = true
				}
			}
		}
		queue = queue[:0]
		for i, ok := range next {
			if ok {
				queue = append(queue, i)
			}
		}
	}

	if len(ordered) != len(resources) {
		return nil, nil, ErrCycle
	}
	return ordered, tiers, checkOutputs(s)
}

func checkOutputs(s *construct.Stack) error {
	for _, o := range s.Outputs() {
		refs, err := References(o.Value)
		if err != nil {
			return fmt.Errorf("%s: %w", o.ID, err)
		}
		for _, addr := range refs {
			if s.Lookup(addr) == nil {
				return &UnresolvedError{From: o.ID, To: addr}
			}
		}
	}
	return nil
}
