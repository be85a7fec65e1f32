package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/stacks/internal/publish"
)

type publishFlags struct {
	synthFlags
	bucket    string
	prefix    string
	region    string
	endpoint  string
	pathStyle bool
}

// Publish returns the publish command.
//
// The publish command synthesizes an app and uploads the result to S3,
// creating the bucket when it does not exist.
func Publish(g *globalFlags) *cobra.Command {
	f := &publishFlags{}
	cmd := &cobra.Command{
		Use:   "publish <app>",
		Short: "Synthesize an app and upload the manifests to S3",
		Long: `Publish synthesizes the named app and uploads every file to
s3://<bucket>/<prefix>/, creating the bucket if needed.

Example:
  stacks publish full-webstack --bucket my-synth-output --prefix builds/42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			bucket := firstNonEmpty(f.bucket, cfg.Publish.Bucket)
			if bucket == "" {
				return fmt.Errorf("--bucket or publish.bucket is required")
			}
			prefix := firstNonEmpty(f.prefix, cfg.Publish.Prefix)
			region := firstNonEmpty(f.region, cfg.Publish.Region, cfg.Region)

			res, err := runSynth(cfg, log, args[0], &f.synthFlags)
			if err != nil {
				return err
			}
			if !res.Success {
				printProblems(cmd, res, false)
				return errSynthFailed
			}

			client, err := publish.NewClient(cmd.Context(), publish.ClientOptions{
				Region:       region,
				Endpoint:     f.endpoint,
				UsePathStyle: f.pathStyle,
			})
			if err != nil {
				return err
			}
			keys, err := publish.Publish(cmd.Context(), client, log, res, bucket, prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d files to s3://%s/%s\n", len(keys), bucket, prefix)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.bucket, "bucket", "", "Destination bucket (default publish.bucket)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Key prefix (default publish.prefix)")
	cmd.Flags().StringVar(&f.region, "region", "", "Bucket region (default publish.region, then region)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Custom S3 endpoint for S3-compatible storage")
	cmd.Flags().BoolVar(&f.pathStyle, "path-style", false, "Use path-style bucket addressing")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: json, hcl or both (default from config)")
	cmd.Flags().StringSliceVar(&f.stacks, "stack", nil, "Only publish the named stack (repeatable)")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
