package stacks

import (
	"errors"
	"path"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/construct"
	"github.com/json-to-terraform/stacks/internal/provider/aws"
	"github.com/json-to-terraform/stacks/internal/provider/random"
	"github.com/json-to-terraform/stacks/internal/registry"
)

const (
	lambdaBasicExecutionPolicy = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"

	lambdaAssumeRolePolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Action": "sts:AssumeRole",
      "Principal": {
        "Service": "lambda.amazonaws.com"
      },
      "Effect": "Allow",
      "Sid": ""
    }
  ]
}`
)

type lambdaApp struct{}

func init() {
	registry.Default.Register(lambdaApp{})
}

func (lambdaApp) Name() string { return "lambda-example" }

func (lambdaApp) Description() string {
	return "One stack per function: S3-hosted Lambda code behind an HTTP API"
}

func (lambdaApp) Define(app *construct.App, cfg *config.Config) error {
	if len(cfg.Lambda.Functions) == 0 {
		return errors.New("no lambda functions configured")
	}
	for _, fn := range cfg.Lambda.Functions {
		NewLambdaStack(app, fn, cfg)
	}
	return nil
}

// NewLambdaStack declares a function whose code is uploaded from fn.Path as a
// zip archive and which is invoked through an HTTP API.
func NewLambdaStack(app *construct.App, fn config.FunctionConfig, cfg *config.Config) *construct.Stack {
	s := newStack(app, fn.Stack, "aws", cfg)
	random.NewProvider(s, "random")

	pet := random.NewPet(s, "random-name", &random.PetConfig{Length: 2})

	asset := construct.NewAsset(s, "lambda-asset", construct.AssetConfig{
		Path: fn.Path,
		Type: construct.AssetArchive,
	})

	bucket := aws.NewS3Bucket(s, "bucket", &aws.S3BucketConfig{
		BucketPrefix: cfg.Lambda.BucketPrefix,
	})

	archive := aws.NewS3Object(s, "lambda-archive", &aws.S3ObjectConfig{
		Bucket: bucket.Bucket(),
		Key:    path.Join(fn.Version, asset.FileName()),
		Source: asset.Path(),
	})

	role := aws.NewIamRole(s, "lambda-exec", &aws.IamRoleConfig{
		Name:             construct.Join(cfg.Lambda.BucketPrefix, pet.ID()),
		AssumeRolePolicy: lambdaAssumeRolePolicy,
	})

	aws.NewIamRolePolicyAttachment(s, "lambda-managed-policy", &aws.IamRolePolicyAttachmentConfig{
		PolicyArn: lambdaBasicExecutionPolicy,
		Role:      role.Name(),
	})

	function := aws.NewLambdaFunction(s, "lambda-example-lambda", &aws.LambdaFunctionConfig{
		FunctionName: construct.Join(cfg.Lambda.BucketPrefix, pet.ID()),
		S3Bucket:     bucket.Bucket(),
		S3Key:        archive.Key(),
		Handler:      fn.Handler,
		Runtime:      fn.Runtime,
		Role:         role.ARN(),
		Environment: &aws.LambdaFunctionEnvironment{
			Variables: map[string]string{"table": "dyndb123"},
		},
	})

	api := aws.NewApigatewayv2API(s, "api-gw", &aws.Apigatewayv2APIConfig{
		Name:         pet.ID(),
		ProtocolType: "HTTP",
		Target:       function.ARN(),
	})

	aws.NewLambdaPermission(s, "apigw-lambda", &aws.LambdaPermissionConfig{
		FunctionName: function.FunctionName(),
		Action:       "lambda:InvokeFunction",
		Principal:    "apigateway.amazonaws.com",
		SourceArn:    construct.Join(api.ExecutionARN(), "/*/*"),
	})

	s.AddOutput("url-"+fn.Stage, construct.OutputConfig{Value: api.APIEndpoint()})
	return s
}
