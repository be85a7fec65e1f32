package result

import "fmt"

// Error represents a validation or synthesis error attached to a construct.
type Error struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Stack       string `json:"stack,omitempty"`
	ConstructID string `json:"construct_id,omitempty"`
	Message     string `json:"message"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// Error implements the error interface so a single diagnostic can be returned as one.
func (e Error) Error() string {
	if e.ConstructID == "" {
		return fmt.Sprintf("[%s] %s", e.Stack, e.Message)
	}
	return fmt.Sprintf("[%s/%s] %s", e.Stack, e.ConstructID, e.Message)
}

// Warning represents a best-practice or non-fatal warning.
type Warning struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Stack       string `json:"stack,omitempty"`
	ConstructID string `json:"construct_id,omitempty"`
	Message     string `json:"message"`
	Suggestion  string `json:"suggestion,omitempty"`
}

// StackSummary describes one synthesized stack.
type StackSummary struct {
	Name             string `json:"name"`
	SynthesizedPath  string `json:"synthesized_path"`
	WorkingDirectory string `json:"working_directory"`
	Resources        int    `json:"resources"`
	Outputs          int    `json:"outputs"`
}

// SynthResult is the result of synthesizing an app.
type SynthResult struct {
	Success  bool              `json:"success"`
	Files    map[string][]byte `json:"-"` // path relative to the output directory -> content
	Stacks   []StackSummary    `json:"stacks,omitempty"`
	Errors   []Error           `json:"errors,omitempty"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// Validation builds a validation_error diagnostic.
func Validation(stack, id, message, suggestion string) Error {
	return Error{
		Type: "validation_error", Severity: "error",
		Stack: stack, ConstructID: id,
		Message: message, Suggestion: suggestion,
	}
}
