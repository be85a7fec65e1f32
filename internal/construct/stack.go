package construct

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/json-to-terraform/stacks/internal/result"
)

// RequiredProvider pins a provider plugin in the terraform block.
type RequiredProvider struct {
	Name    string
	Source  string
	Version string
}

// Provider is a provider configuration block.
type Provider struct {
	ID   string
	Name string
	Body *Body
}

// Backend is the terraform backend block of a stack.
type Backend struct {
	Type string
	Body *Body
}

// LocalBackend keeps state next to the synthesized stack.
func LocalBackend(path string) Backend {
	b := NewBody()
	b.SetString("path", path)
	return Backend{Type: "local", Body: b}
}

// S3Backend keeps state in an S3 bucket.
func S3Backend(bucket, key, region string) Backend {
	b := NewBody()
	b.SetString("bucket", bucket)
	b.SetString("key", key)
	b.SetString("region", region)
	return Backend{Type: "s3", Body: b}
}

// stackNamePattern keeps a stack name usable as the single path segment
// stacks/<name> under the output directory.
var stackNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidStackName reports whether name can be used as a stack name.
func ValidStackName(name string) bool {
	return stackNamePattern.MatchString(name)
}

// Stack is a named collection of resource declarations synthesized together.
type Stack struct {
	Name string

	app       *App
	providers []*Provider
	required  map[string]RequiredProvider
	resources []*Resource
	outputs   []*Output
	assets    []*Asset
	backend   *Backend
	ids       map[string]bool
	diags     []result.Error
}

// NewStack creates a stack and adds it to the app.
func NewStack(app *App, name string) *Stack {
	s := &Stack{
		Name:     name,
		app:      app,
		required: make(map[string]RequiredProvider),
		ids:      make(map[string]bool),
	}
	switch {
	case name == "":
		s.Report("", "stack name is required", "Pass a non-empty name to NewStack")
	case !ValidStackName(name):
		s.Report("", fmt.Sprintf("stack name %q is not a valid directory name", name),
			"Use only letters, digits, '-' and '_' in stack names")
	}
	app.addStack(s)
	return s
}

// App returns the app the stack belongs to.
func (s *Stack) App() *App {
	return s.app
}

// Report records a validation problem for the construct with the given id.
func (s *Stack) Report(id, message, suggestion string) {
	s.diags = append(s.diags, result.Validation(s.Name, id, message, suggestion))
}

// Diagnostics returns the problems recorded while building the stack.
func (s *Stack) Diagnostics() []result.Error {
	return s.diags
}

// claim registers a construct id, reporting duplicates.
func (s *Stack) claim(id string) {
	if id == "" {
		s.diags = append(s.diags, result.Error{
			Type: "schema_error", Severity: "error", Stack: s.Name,
			Message: "construct id is required", Suggestion: "Pass a non-empty id",
		})
		return
	}
	if s.ids[id] {
		s.diags = append(s.diags, result.Error{
			Type: "schema_error", Severity: "error", Stack: s.Name, ConstructID: id,
			Message: "duplicate construct id: " + id, Suggestion: "Use unique ids within a stack",
		})
		return
	}
	s.ids[id] = true
}

// AddProvider declares a provider configuration and its plugin requirement.
func (s *Stack) AddProvider(id string, req RequiredProvider, body *Body) *Provider {
	s.claim(id)
	if body == nil {
		body = NewBody()
	}
	p := &Provider{ID: id, Name: req.Name, Body: body}
	s.providers = append(s.providers, p)
	s.required[req.Name] = req
	return p
}

// Providers returns provider blocks in declaration order.
func (s *Stack) Providers() []*Provider {
	return s.providers
}

// RequiredProviders returns the plugin requirements sorted by name.
func (s *Stack) RequiredProviders() []RequiredProvider {
	out := make([]RequiredProvider, 0, len(s.required))
	for _, r := range s.required {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddResource declares a managed resource.
func (s *Stack) AddResource(id, resourceType string, body *Body) *Resource {
	return s.add(id, resourceType, ManagedMode, body)
}

// AddData declares a data source.
func (s *Stack) AddData(id, dataType string, body *Body) *Resource {
	return s.add(id, dataType, DataMode, body)
}

func (s *Stack) add(id, typ string, mode Mode, body *Body) *Resource {
	s.claim(id)
	if body == nil {
		body = NewBody()
	}
	r := &Resource{
		ID:    id,
		Type:  typ,
		Mode:  mode,
		Name:  SanitizeName(id),
		Body:  body,
		stack: s,
	}
	if prev := s.Lookup(r.Address()); prev != nil && prev.ID != id {
		s.Report(id, "address "+r.Address()+" collides with construct "+prev.ID,
			"Pick ids that differ after replacing '.' and spaces with '_'")
	}
	s.resources = append(s.resources, r)
	return r
}

// Resources returns resources and data sources in declaration order.
func (s *Stack) Resources() []*Resource {
	return s.resources
}

// Lookup returns the resource or data source with the given address.
func (s *Stack) Lookup(address string) *Resource {
	for _, r := range s.resources {
		if r.Address() == address {
			return r
		}
	}
	return nil
}

// Outputs returns the outputs in declaration order.
func (s *Stack) Outputs() []*Output {
	return s.outputs
}

// Assets returns the assets in declaration order.
func (s *Stack) Assets() []*Asset {
	return s.assets
}

// SetBackend overrides the stack's state backend.
func (s *Stack) SetBackend(b Backend) {
	s.backend = &b
}

// Backend returns the configured backend, defaulting to a local state file
// named after the stack.
func (s *Stack) Backend() Backend {
	if s.backend != nil {
		return *s.backend
	}
	return LocalBackend("terraform." + s.Name + ".tfstate")
}
