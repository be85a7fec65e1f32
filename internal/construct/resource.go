package construct

// Mode distinguishes managed resources from data sources.
type Mode int

const (
	ManagedMode Mode = iota
	DataMode
)

// Dependable is anything that can appear in depends_on.
type Dependable interface {
	Address() string
}

// Resource is one resource or data source declaration.
type Resource struct {
	ID   string // construct id as given by the stack author
	Type string // e.g. aws_vpc
	Mode Mode
	Name string // Terraform-safe name derived from ID
	Body *Body

	dependsOn []string
	stack     *Stack
}

// Address returns the Terraform address (aws_vpc.vpc or data.aws_ami.latest_ami).
func (r *Resource) Address() string {
	if r.Mode == DataMode {
		return "data." + r.Type + "." + r.Name
	}
	return r.Type + "." + r.Name
}

// Get returns a token referencing one of the resource's attributes.
func (r *Resource) Get(attr string) string {
	return Token(r.Address() + "." + attr)
}

// Stack returns the stack the resource was declared in.
func (r *Resource) Stack() *Stack {
	return r.stack
}

// AddDependency adds explicit depends_on edges.
func (r *Resource) AddDependency(deps ...Dependable) {
	for _, d := range deps {
		if d == nil {
			continue
		}
		addr := d.Address()
		if !contains(r.dependsOn, addr) {
			r.dependsOn = append(r.dependsOn, addr)
		}
	}
}

// DependsOn returns the explicit dependency addresses.
func (r *Resource) DependsOn() []string {
	return r.dependsOn
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
