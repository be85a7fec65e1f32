// Package construct holds the in-memory model of an infrastructure app:
// stacks of resource descriptors, outputs and assets, cross-referenced
// through interpolation tokens. Nothing here talks to a cloud; the model is
// rendered by the terraform package and consumed by the Terraform engine.
package construct

import (
	"github.com/json-to-terraform/stacks/internal/result"
)

// DefaultOutdir is where synthesized manifests go when no directory is given.
const DefaultOutdir = "cdktf.out"

// App is the root of the construct tree.
type App struct {
	Outdir string

	stacks []*Stack
	names  map[string]bool
	diags  []result.Error
}

// NewApp returns an empty app writing to outdir.
func NewApp(outdir string) *App {
	if outdir == "" {
		outdir = DefaultOutdir
	}
	return &App{Outdir: outdir, names: make(map[string]bool)}
}

// Stacks returns the stacks in construction order.
func (a *App) Stacks() []*Stack {
	return a.stacks
}

// Stack returns the stack with the given name, or nil.
func (a *App) Stack(name string) *Stack {
	for _, s := range a.stacks {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Diagnostics returns app-level problems followed by each stack's.
func (a *App) Diagnostics() []result.Error {
	return a.DiagnosticsFor(a.stacks)
}

// DiagnosticsFor returns app-level problems followed by those of the given stacks.
func (a *App) DiagnosticsFor(stacks []*Stack) []result.Error {
	out := append([]result.Error(nil), a.diags...)
	for _, s := range stacks {
		out = append(out, s.Diagnostics()...)
	}
	return out
}

func (a *App) addStack(s *Stack) {
	if a.names[s.Name] {
		a.diags = append(a.diags, result.Error{
			Type: "schema_error", Severity: "error", Stack: s.Name,
			Message:    "duplicate stack name: " + s.Name,
			Suggestion: "Use a unique name for each stack",
		})
	}
	a.names[s.Name] = true
	a.stacks = append(a.stacks, s)
}
