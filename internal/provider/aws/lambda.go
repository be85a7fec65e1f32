package aws

import (
	"fmt"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// LambdaFunctionEnvironment holds function environment variables.
type LambdaFunctionEnvironment struct {
	Variables map[string]string
}

// LambdaFunctionConfig configures aws_lambda_function.
type LambdaFunctionConfig struct {
	FunctionName string
	S3Bucket     string
	S3Key        string
	Handler      string
	Runtime      string
	Role         string
	MemorySize   int
	Timeout      int
	Environment  *LambdaFunctionEnvironment
	Tags         map[string]string
}

// LambdaFunction is an aws_lambda_function.
type LambdaFunction struct{ *construct.Resource }

// ARN references the function ARN.
func (f *LambdaFunction) ARN() string { return f.Get("arn") }

// FunctionName references the function name.
func (f *LambdaFunction) FunctionName() string { return f.Get("function_name") }

// InvokeARN references the ARN used by API Gateway integrations.
func (f *LambdaFunction) InvokeARN() string { return f.Get("invoke_arn") }

// NewLambdaFunction declares a function deployed from an S3 object.
func NewLambdaFunction(s *construct.Stack, id string, cfg *LambdaFunctionConfig) *LambdaFunction {
	c := checker{s, id}
	c.required("function_name", cfg.FunctionName, "Set LambdaFunctionConfig.FunctionName")
	c.required("role", cfg.Role, "Reference the execution role ARN, e.g. role.ARN()")
	c.required("handler", cfg.Handler, "Set the handler (e.g. index.handler)")
	c.required("runtime", cfg.Runtime, "Set the runtime (e.g. nodejs20.x)")
	if (cfg.S3Bucket == "") != (cfg.S3Key == "") {
		s.Report(id, "s3_bucket and s3_key must be set together", "Set both S3Bucket and S3Key")
	}
	if cfg.MemorySize != 0 && (cfg.MemorySize < 128 || cfg.MemorySize > 10240) {
		s.Report(id, fmt.Sprintf("memory_size %d is outside 128-10240", cfg.MemorySize), "Use 128 to 10240 MB")
	}
	if cfg.Timeout < 0 || cfg.Timeout > 900 {
		s.Report(id, fmt.Sprintf("timeout %d is outside 1-900", cfg.Timeout), "Use 1 to 900 seconds")
	}

	body := construct.NewBody()
	body.SetString("function_name", cfg.FunctionName)
	body.SetString("s3_bucket", cfg.S3Bucket)
	body.SetString("s3_key", cfg.S3Key)
	body.SetString("handler", cfg.Handler)
	body.SetString("runtime", cfg.Runtime)
	body.SetString("role", cfg.Role)
	if cfg.MemorySize > 0 {
		body.SetInt("memory_size", cfg.MemorySize)
	}
	if cfg.Timeout > 0 {
		body.SetInt("timeout", cfg.Timeout)
	}
	if cfg.Environment != nil && len(cfg.Environment.Variables) > 0 {
		body.AppendBlock("environment").SetStringMap("variables", cfg.Environment.Variables)
	}
	setTags(body, cfg.Tags)
	return &LambdaFunction{s.AddResource(id, "aws_lambda_function", body)}
}

// LambdaPermissionConfig configures aws_lambda_permission.
type LambdaPermissionConfig struct {
	StatementID  string
	FunctionName string
	Action       string
	Principal    string
	SourceArn    string
}

// NewLambdaPermission allows a principal to invoke a function.
func NewLambdaPermission(s *construct.Stack, id string, cfg *LambdaPermissionConfig) *construct.Resource {
	c := checker{s, id}
	c.required("function_name", cfg.FunctionName, "Reference the function, e.g. fn.FunctionName()")
	c.required("action", cfg.Action, "Set the action, e.g. lambda:InvokeFunction")
	c.required("principal", cfg.Principal, "Set the principal, e.g. apigateway.amazonaws.com")

	body := construct.NewBody()
	body.SetString("statement_id", cfg.StatementID)
	body.SetString("function_name", cfg.FunctionName)
	body.SetString("action", cfg.Action)
	body.SetString("principal", cfg.Principal)
	body.SetString("source_arn", cfg.SourceArn)
	return s.AddResource(id, "aws_lambda_permission", body)
}
