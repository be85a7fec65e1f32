// Package stacks defines the apps this repository ships: a VPC with a public
// load balancer, a single EC2 instance, and a set of API Gateway backed
// Lambda functions. Each app registers itself with registry.Default.
package stacks

import (
	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/construct"
	"github.com/json-to-terraform/stacks/internal/provider/aws"
)

// newStack creates a stack with the AWS provider and the configured backend.
func newStack(app *construct.App, name, providerID string, cfg *config.Config) *construct.Stack {
	s := construct.NewStack(app, name)
	aws.NewProvider(s, providerID, &aws.ProviderConfig{Region: cfg.Region})
	if cfg.Backend.Type == "s3" {
		region := cfg.Backend.Region
		if region == "" {
			region = cfg.Region
		}
		s.SetBackend(construct.S3Backend(cfg.Backend.Bucket, cfg.Backend.KeyPrefix+name+".tfstate", region))
	}
	return s
}

func tags(name string) map[string]string {
	return map[string]string{"Name": name}
}
