// Package config defines the settings the stack definitions and the CLI read.
// Defaults reproduce the literal values the stacks were first written with;
// a YAML file and a few environment variables can override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// Environment variables read by Load.
const (
	EnvConfig        = "STACKS_CONFIG"
	EnvOutdir        = "STACKS_OUTDIR"
	EnvRegion        = "STACKS_REGION"
	EnvPublicKeyPath = "EC2_PUBLIC_KEY_PATH"
)

// Config holds the application configuration.
type Config struct {
	Outdir   string `yaml:"outdir"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	Format   string `yaml:"format"`    // json, hcl or both
	Region   string `yaml:"region"`

	Backend BackendConfig `yaml:"backend"`
	Network NetworkConfig `yaml:"network"`
	EC2     EC2Config     `yaml:"ec2"`
	Lambda  LambdaConfig  `yaml:"lambda"`
	Publish PublishConfig `yaml:"publish"`
}

// BackendConfig selects where Terraform keeps state for every stack.
type BackendConfig struct {
	Type      string `yaml:"type"` // local or s3
	Bucket    string `yaml:"bucket"`
	KeyPrefix string `yaml:"key_prefix"`
	Region    string `yaml:"region"`
}

// NetworkConfig holds the addressing of the web stack VPC.
type NetworkConfig struct {
	VpcCIDR           string `yaml:"vpc_cidr"`
	PublicSubnetCIDR  string `yaml:"public_subnet_cidr"`
	PublicSubnet2CIDR string `yaml:"public_subnet2_cidr"`
	PrivateSubnetCIDR string `yaml:"private_subnet_cidr"`
}

// EC2Config configures the single-instance stack.
type EC2Config struct {
	InstanceType  string `yaml:"instance_type"`
	PrivateIP     string `yaml:"private_ip"`
	PublicKeyPath string `yaml:"public_key_path"`
}

// LambdaConfig lists the functions of the lambda app, one stack each.
type LambdaConfig struct {
	BucketPrefix string           `yaml:"bucket_prefix"`
	Functions    []FunctionConfig `yaml:"functions"`
}

// FunctionConfig describes one deployed function.
type FunctionConfig struct {
	Stack   string `yaml:"stack"`
	Path    string `yaml:"path"`
	Handler string `yaml:"handler"`
	Runtime string `yaml:"runtime"`
	Stage   string `yaml:"stage"`
	Version string `yaml:"version"`
}

// PublishConfig is the S3 destination of the publish command.
type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Outdir:   "cdktf.out",
		LogLevel: "info",
		Format:   "json",
		Region:   "eu-west-1",
		Backend:  BackendConfig{Type: "local"},
		Network: NetworkConfig{
			VpcCIDR:           "10.0.0.0/16",
			PublicSubnetCIDR:  "10.0.10.0/24",
			PublicSubnet2CIDR: "10.0.20.0/24",
			PrivateSubnetCIDR: "10.0.11.0/24",
		},
		EC2: EC2Config{
			InstanceType: "t3.micro",
			PrivateIP:    "10.0.10.100",
		},
		Lambda: LambdaConfig{
			BucketPrefix: "lambda-example-",
			Functions: []FunctionConfig{
				{
					Stack:   "lambda-hello-world",
					Path:    "../lambda-hello-world/dist",
					Handler: "index.handler",
					Runtime: "nodejs14.x",
					Stage:   "hello-world",
					Version: "v0.0.3",
				},
				{
					Stack:   "lambda-hello-name",
					Path:    "../lambda-hello-name/dist",
					Handler: "index.handler",
					Runtime: "nodejs14.x",
					Stage:   "hello-name",
					Version: "v0.0.1",
				},
			},
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOutdir); v != "" {
		c.Outdir = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvPublicKeyPath); v != "" {
		c.EC2.PublicKeyPath = v
	}
}

// Validate checks the configuration for errors a synthesis run cannot recover from.
func (c *Config) Validate() error {
	if c.Outdir == "" {
		return errors.New("outdir is required")
	}
	if c.Region == "" {
		return errors.New("region is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	switch c.Format {
	case "json", "hcl", "both":
	default:
		return fmt.Errorf("format %q must be one of json, hcl, both", c.Format)
	}

	if err := c.Backend.validate(); err != nil {
		return fmt.Errorf("backend validation failed: %w", err)
	}
	if err := c.Lambda.validate(); err != nil {
		return fmt.Errorf("lambda validation failed: %w", err)
	}
	return nil
}

func (b BackendConfig) validate() error {
	switch b.Type {
	case "local":
		return nil
	case "s3":
		if b.Bucket == "" {
			return errors.New("bucket is required for the s3 backend")
		}
		return nil
	default:
		return fmt.Errorf("type %q must be local or s3", b.Type)
	}
}

func (l LambdaConfig) validate() error {
	seen := make(map[string]bool)
	for i, fn := range l.Functions {
		if fn.Stack == "" {
			return fmt.Errorf("functions[%d]: stack is required", i)
		}
		if !construct.ValidStackName(fn.Stack) {
			return fmt.Errorf("functions[%d]: stack %q may only contain letters, digits, '-' and '_'", i, fn.Stack)
		}
		if seen[fn.Stack] {
			return fmt.Errorf("functions[%d]: duplicate stack %q", i, fn.Stack)
		}
		seen[fn.Stack] = true
		if fn.Path == "" {
			return fmt.Errorf("functions[%d]: path is required", i)
		}
		if fn.Stage == "" || fn.Version == "" {
			return fmt.Errorf("functions[%d]: stage and version are required", i)
		}
	}
	return nil
}
