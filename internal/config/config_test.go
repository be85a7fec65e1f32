package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stacks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "cdktf.out", cfg.Outdir)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "local", cfg.Backend.Type)
	assert.Equal(t, "t3.micro", cfg.EC2.InstanceType)
	require.Len(t, cfg.Lambda.Functions, 2)
	assert.Equal(t, "lambda-hello-world", cfg.Lambda.Functions[0].Stack)
	assert.Equal(t, "v0.0.3", cfg.Lambda.Functions[0].Version)
	assert.Equal(t, "nodejs14.x", cfg.Lambda.Functions[1].Runtime)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
outdir: build
format: both
backend:
  type: s3
  bucket: tf-state
  key_prefix: demo/
lambda:
  functions:
    - stack: only
      path: ./dist
      handler: main
      runtime: provided.al2023
      stage: prod
      version: v1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "build", cfg.Outdir)
	assert.Equal(t, "both", cfg.Format)
	assert.Equal(t, "tf-state", cfg.Backend.Bucket)
	// untouched keys keep their defaults
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.VpcCIDR)
	require.Len(t, cfg.Lambda.Functions, 1)
	assert.Equal(t, "provided.al2023", cfg.Lambda.Functions[0].Runtime)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv(EnvOutdir, "/tmp/out")
	t.Setenv(EnvRegion, "us-east-1")
	t.Setenv(EnvPublicKeyPath, "/home/me/.ssh/id_ed25519.pub")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Outdir)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "/home/me/.ssh/id_ed25519.pub", cfg.EC2.PublicKeyPath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "outdir: [unclosed"))
	assert.ErrorContains(t, err, "failed to unmarshal yaml")
}

func TestLoad_RejectsUnsafeStackName(t *testing.T) {
	_, err := Load(writeConfig(t, `
lambda:
  functions:
    - stack: "../.."
      path: dist
      handler: index.handler
      runtime: nodejs14.x
      stage: x
      version: v1
`))
	assert.ErrorContains(t, err, "configuration validation failed")
	assert.ErrorContains(t, err, `stack "../.."`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"no outdir", func(c *Config) { c.Outdir = "" }, "outdir is required"},
		{"no region", func(c *Config) { c.Region = "" }, "region is required"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"bad format", func(c *Config) { c.Format = "yaml" }, "format"},
		{"bad backend", func(c *Config) { c.Backend.Type = "gcs" }, "backend validation failed"},
		{"s3 without bucket", func(c *Config) { c.Backend.Type = "s3" }, "bucket is required"},
		{"duplicate function", func(c *Config) {
			c.Lambda.Functions[1].Stack = c.Lambda.Functions[0].Stack
		}, "duplicate stack"},
		{"function without path", func(c *Config) { c.Lambda.Functions[0].Path = "" }, "path is required"},
		{"parent stack", func(c *Config) { c.Lambda.Functions[0].Stack = "../.." }, "may only contain"},
		{"dot stack", func(c *Config) { c.Lambda.Functions[0].Stack = ".." }, "may only contain"},
		{"nested stack", func(c *Config) { c.Lambda.Functions[0].Stack = "a/b" }, "may only contain"},
		{"backslash stack", func(c *Config) { c.Lambda.Functions[0].Stack = `a\b` }, "may only contain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
