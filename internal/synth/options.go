package synth

import (
	"log/slog"

	"github.com/json-to-terraform/stacks/internal/logger"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatHCL  = "hcl"
	FormatBoth = "both"
)

// Options configures the synthesizer behavior.
type Options struct {
	// Format selects Terraform JSON, native HCL files, or both.
	Format string
	// Stacks limits synthesis to the named stacks. Empty means every stack.
	Stacks []string
	// Version is recorded in each manifest's metadata.
	Version string
	// MaxParallel is the max number of stacks rendered at once (0 = default).
	MaxParallel int
	// Logger receives progress and problem reports.
	Logger *slog.Logger
}

// DefaultOptions returns default synthesizer options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatJSON,
		Version:     "dev",
		MaxParallel: 0, // use runtime.NumCPU in synthesizer
		Logger:      logger.Default,
	}
}

func (o Options) json() bool { return o.Format == FormatJSON || o.Format == FormatBoth }
func (o Options) hcl() bool  { return o.Format == FormatHCL || o.Format == FormatBoth }
