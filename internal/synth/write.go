package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/json-to-terraform/stacks/internal/result"
)

// Write writes the synthesized files under outdir. Each synthesized stack's
// working directory is cleared first so assets from earlier runs do not linger.
// Nothing is removed or written unless every target lies inside outdir.
func Write(outdir string, res *result.SynthResult) error {
	if res == nil || !res.Success {
		return fmt.Errorf("refusing to write an unsuccessful synthesis")
	}

	dirs := make([]string, 0, len(res.Stacks))
	for _, s := range res.Stacks {
		dir, err := inside(outdir, s.WorkingDirectory)
		if err != nil {
			return err
		}
		if dir == filepath.Clean(outdir) {
			return fmt.Errorf("working directory of stack %s is the output directory itself", s.Name)
		}
		dirs = append(dirs, dir)
	}
	paths := SortedPaths(res)
	targets := make([]string, len(paths))
	for i, rel := range paths {
		dst, err := inside(outdir, rel)
		if err != nil {
			return err
		}
		targets[i] = dst
	}

	for i, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", res.Stacks[i].WorkingDirectory, err)
		}
	}
	for i, rel := range paths {
		dst := targets[i]
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(dst, res.Files[rel], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

// inside joins rel onto outdir and fails when the result escapes outdir.
func inside(outdir, rel string) (string, error) {
	if filepath.IsAbs(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("path %q must be relative to the output directory", rel)
	}
	dst := filepath.Join(outdir, filepath.FromSlash(rel))
	r, err := filepath.Rel(filepath.Clean(outdir), dst)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the output directory", rel)
	}
	return dst, nil
}
