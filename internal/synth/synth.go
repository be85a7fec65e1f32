// Package synth turns an app's stacks into Terraform manifests: it checks the
// diagnostics recorded while the stacks were built, orders every stack's
// resources by their references, renders the manifests and stages assets.
package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sort"
	"sync"

	"github.com/json-to-terraform/stacks/internal/construct"
	"github.com/json-to-terraform/stacks/internal/dependency"
	"github.com/json-to-terraform/stacks/internal/logger"
	"github.com/json-to-terraform/stacks/internal/result"
	"github.com/json-to-terraform/stacks/internal/terraform"
)

// ManifestFile is the app-level index of synthesized stacks.
const ManifestFile = "manifest.json"

// Synthesizer renders apps into manifest files.
type Synthesizer struct {
	opts Options
}

// New returns a new synthesizer with the given options.
func New(opts Options) *Synthesizer {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default
	}
	return &Synthesizer{opts: opts}
}

type stackResult struct {
	files   map[string][]byte
	summary result.StackSummary
	errs    []result.Error
	warns   []result.Warning
}

// Synth validates and renders the app. Problems with the app itself are
// reported in the result; the error return is for invalid options.
func (p *Synthesizer) Synth(app *construct.App) (*result.SynthResult, error) {
	if !p.opts.json() && !p.opts.hcl() {
		return nil, fmt.Errorf("unknown format %q", p.opts.Format)
	}
	log := p.opts.Logger
	out := &result.SynthResult{Success: true, Files: make(map[string][]byte)}

	// 1. Stack selection
	stacks, errs := p.selectStacks(app)
	if len(errs) > 0 {
		out.Success = false
		out.Errors = append(out.Errors, errs...)
		return out, nil
	}

	// 2. Construction diagnostics of the app and the selected stacks
	if diags := app.DiagnosticsFor(stacks); len(diags) > 0 {
		out.Success = false
		out.Errors = append(out.Errors, diags...)
		for _, d := range diags {
			log.Warn("invalid construct", "stack", d.Stack, "construct", d.ConstructID, "message", d.Message)
		}
		return out, nil
	}

	// 3. Render stacks in parallel, collecting results in app order
	results := make([]stackResult, len(stacks))
	sem := make(chan struct{}, p.opts.MaxParallel)
	var wg sync.WaitGroup
	for i, s := range stacks {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, s *construct.Stack) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.synthStack(s)
		}(i, s)
	}
	wg.Wait()

	for _, res := range results {
		out.Errors = append(out.Errors, res.errs...)
		out.Warnings = append(out.Warnings, res.warns...)
		if len(res.errs) > 0 {
			out.Success = false
			continue
		}
		for name, data := range res.files {
			out.Files[name] = data
		}
		out.Stacks = append(out.Stacks, res.summary)
	}

	if !out.Success {
		out.Files = nil
		out.Stacks = nil
		return out, nil
	}

	// 4. App manifest
	manifest, err := p.manifest(out.Stacks)
	if err != nil {
		return nil, err
	}
	out.Files[ManifestFile] = manifest
	log.Info("app synthesized", "stacks", len(out.Stacks), "files", len(out.Files))
	return out, nil
}

func (p *Synthesizer) selectStacks(app *construct.App) ([]*construct.Stack, []result.Error) {
	if len(p.opts.Stacks) == 0 {
		return app.Stacks(), nil
	}
	var (
		selected []*construct.Stack
		errs     []result.Error
	)
	for _, name := range p.opts.Stacks {
		s := app.Stack(name)
		if s == nil {
			errs = append(errs, result.Error{
				Type: "schema_error", Severity: "error", Stack: name,
				Message:    "unknown stack: " + name,
				Suggestion: fmt.Sprintf("Use one of: %v", stackNames(app)),
			})
			continue
		}
		selected = append(selected, s)
	}
	return selected, errs
}

func stackNames(app *construct.App) []string {
	names := make([]string, 0, len(app.Stacks()))
	for _, s := range app.Stacks() {
		names = append(names, s.Name)
	}
	return names
}

// WorkingDirectory is the directory Terraform runs in for the named stack,
// relative to the output directory.
func WorkingDirectory(stack string) string {
	return path.Join("stacks", stack)
}

func (p *Synthesizer) synthStack(s *construct.Stack) stackResult {
	log := p.opts.Logger.With("stack", s.Name)
	dir := WorkingDirectory(s.Name)
	res := stackResult{
		files: make(map[string][]byte),
		summary: result.StackSummary{
			Name:             s.Name,
			WorkingDirectory: dir,
			Resources:        len(s.Resources()),
			Outputs:          len(s.Outputs()),
		},
	}
	fail := func(typ, msg, suggestion string) stackResult {
		res.errs = append(res.errs, result.Error{
			Type: typ, Severity: "error", Stack: s.Name,
			Message: msg, Suggestion: suggestion,
		})
		log.Error("stack synthesis failed", "error", msg)
		return res
	}

	ordered, _, err := dependency.Resolve(s)
	if err != nil {
		var unresolved *dependency.UnresolvedError
		switch {
		case errors.Is(err, dependency.ErrCycle):
			return fail("dependency_error", err.Error(), "Remove the circular references or depends_on edges")
		case errors.As(err, &unresolved):
			res.errs = append(res.errs, result.Error{
				Type: "dependency_error", Severity: "error", Stack: s.Name, ConstructID: unresolved.From,
				Message:    err.Error(),
				Suggestion: "Declare " + unresolved.To + " in the same stack or pass a literal value",
			})
			log.Error("stack synthesis failed", "error", err)
			return res
		default:
			return fail("dependency_error", err.Error(), "Fix the interpolation syntax")
		}
	}

	if len(s.Resources()) == 0 {
		res.warns = append(res.warns, result.Warning{
			Type: "best_practice", Severity: "warning", Stack: s.Name,
			Message:    "stack declares no resources",
			Suggestion: "Remove the stack or add resources to it",
		})
	}

	if p.opts.json() {
		data, err := terraform.JSON(s, p.opts.Version)
		if err != nil {
			return fail("generation_error", err.Error(), "")
		}
		res.files[path.Join(dir, terraform.JSONFile)] = data
		res.summary.SynthesizedPath = path.Join(dir, terraform.JSONFile)
	}
	if p.opts.hcl() {
		files, err := terraform.HCL(s, ordered)
		if err != nil {
			return fail("generation_error", err.Error(), "")
		}
		for name, data := range files {
			res.files[path.Join(dir, name)] = data
		}
		if res.summary.SynthesizedPath == "" {
			res.summary.SynthesizedPath = path.Join(dir, terraform.MainFile)
		}
	}

	for _, a := range s.Assets() {
		staged, err := a.Stage()
		if err != nil {
			return fail("asset_error", err.Error(), "Build the asset before synthesizing")
		}
		for name, data := range staged {
			res.files[path.Join(dir, name)] = data
		}
	}

	log.Debug("stack synthesized", "resources", res.summary.Resources, "files", len(res.files))
	return res
}

type manifestStack struct {
	Name                 string   `json:"name"`
	ConstructPath        string   `json:"constructPath"`
	WorkingDirectory     string   `json:"workingDirectory"`
	SynthesizedStackPath string   `json:"synthesizedStackPath"`
	Dependencies         []string `json:"dependencies"`
}

type manifestDoc struct {
	Version string                   `json:"version"`
	Stacks  map[string]manifestStack `json:"stacks"`
}

func (p *Synthesizer) manifest(stacks []result.StackSummary) ([]byte, error) {
	doc := manifestDoc{Version: p.opts.Version, Stacks: make(map[string]manifestStack, len(stacks))}
	for _, s := range stacks {
		doc.Stacks[s.Name] = manifestStack{
			Name:                 s.Name,
			ConstructPath:        s.Name,
			WorkingDirectory:     s.WorkingDirectory,
			SynthesizedStackPath: s.SynthesizedPath,
			Dependencies:         []string{},
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// SortedPaths returns the file paths of a result in lexical order.
func SortedPaths(res *result.SynthResult) []string {
	paths := make([]string, 0, len(res.Files))
	for p := range res.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
