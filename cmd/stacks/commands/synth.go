package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/registry"
	"github.com/json-to-terraform/stacks/internal/result"
	"github.com/json-to-terraform/stacks/internal/synth"
)

// errSynthFailed is returned after the individual problems have been printed.
var errSynthFailed = errors.New("synthesis failed")

type synthFlags struct {
	format   string
	stacks   []string
	parallel int
	jsonOut  bool
}

// Synth returns the synth command.
//
// The synth command builds one app and writes a Terraform JSON manifest per
// stack plus manifest.json to the output directory.
func Synth(g *globalFlags) *cobra.Command {
	f := &synthFlags{}
	cmd := &cobra.Command{
		Use:   "synth <app>",
		Short: "Synthesize an app into Terraform manifests",
		Long: `Synth builds the named app and writes one manifest per stack:

  <outdir>/manifest.json
  <outdir>/stacks/<stack>/cdk.tf.json
  <outdir>/stacks/<stack>/assets/...

Example:
  stacks synth full-webstack
  stacks synth lambda-example --stack lambda-hello-world --format both`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			res, err := runSynth(cfg, log, args[0], f)
			if err != nil {
				return err
			}
			if !res.Success {
				printProblems(cmd, res, f.jsonOut)
				return errSynthFailed
			}
			if err := synth.Write(cfg.Outdir, res); err != nil {
				return err
			}
			if f.jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printWarnings(cmd.ErrOrStderr(), res)
			fmt.Fprintln(cmd.OutOrStdout(), "App synth complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&f.format, "format", "", "Output format: json, hcl or both (default from config)")
	cmd.Flags().StringSliceVar(&f.stacks, "stack", nil, "Only synthesize the named stack (repeatable)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "Max stacks rendered in parallel (0 = auto)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the synthesis result as JSON")
	return cmd
}

func runSynth(cfg *config.Config, log *slog.Logger, appName string, f *synthFlags) (*result.SynthResult, error) {
	app, err := registry.Default.Build(appName, cfg)
	if err != nil {
		return nil, err
	}
	opts := synth.DefaultOptions()
	opts.Format = cfg.Format
	if f.format != "" {
		opts.Format = f.format
	}
	opts.Stacks = f.stacks
	opts.MaxParallel = f.parallel
	opts.Version = version
	opts.Logger = log.With("app", appName)
	return synth.New(opts).Synth(app)
}

func printProblems(cmd *cobra.Command, res *result.SynthResult, jsonOut bool) {
	if jsonOut {
		_ = writeJSON(cmd.OutOrStdout(), res)
		return
	}
	w := cmd.ErrOrStderr()
	for _, e := range res.Errors {
		fmt.Fprintf(w, "ERROR %s\n", e.Error())
		if e.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
		}
	}
	printWarnings(w, res)
}

func printWarnings(w io.Writer, res *result.SynthResult) {
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "WARN [%s] %s\n", warn.Stack, warn.Message)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
