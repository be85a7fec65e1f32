package construct

// OutputConfig configures a stack output.
type OutputConfig struct {
	Value       string
	Description string
	Sensitive   bool
}

// Output exposes a value of the stack after apply.
type Output struct {
	ID          string
	Name        string
	Value       string
	Description string
	Sensitive   bool
}

// AddOutput declares an output.
func (s *Stack) AddOutput(id string, cfg OutputConfig) *Output {
	s.claim(id)
	if cfg.Value == "" {
		s.Report(id, "output value is required", "Set OutputConfig.Value to a literal or a resource attribute token")
	}
	o := &Output{
		ID:          id,
		Name:        SanitizeName(id),
		Value:       cfg.Value,
		Description: cfg.Description,
		Sensitive:   cfg.Sensitive,
	}
	s.outputs = append(s.outputs, o)
	return o
}
