package aws

import (
	"github.com/json-to-terraform/stacks/internal/construct"
)

// Apigatewayv2APIConfig configures aws_apigatewayv2_api. Target enables quick
// create: API Gateway wires a default route and stage to the target function.
type Apigatewayv2APIConfig struct {
	Name         string
	ProtocolType string
	Target       string
	Description  string
	Tags         map[string]string
}

// Apigatewayv2API is an aws_apigatewayv2_api.
type Apigatewayv2API struct{ *construct.Resource }

// ID references the API id.
func (a *Apigatewayv2API) ID() string { return a.Get("id") }

// APIEndpoint references the invoke URL.
func (a *Apigatewayv2API) APIEndpoint() string { return a.Get("api_endpoint") }

// ExecutionARN references the execution ARN used in Lambda permissions.
func (a *Apigatewayv2API) ExecutionARN() string { return a.Get("execution_arn") }

// NewApigatewayv2API declares an HTTP or WebSocket API.
func NewApigatewayv2API(s *construct.Stack, id string, cfg *Apigatewayv2APIConfig) *Apigatewayv2API {
	c := checker{s, id}
	c.required("name", cfg.Name, "Set the API name")
	if c.required("protocol_type", cfg.ProtocolType, `Set ProtocolType to "HTTP" or "WEBSOCKET"`) {
		c.oneOf("protocol_type", cfg.ProtocolType, "HTTP", "WEBSOCKET")
	}
	if cfg.Target != "" && cfg.ProtocolType == "WEBSOCKET" {
		s.Report(id, "target is only supported for HTTP APIs", "Drop Target or use ProtocolType HTTP")
	}

	body := construct.NewBody()
	body.SetString("name", cfg.Name)
	body.SetString("protocol_type", cfg.ProtocolType)
	body.SetString("target", cfg.Target)
	body.SetString("description", cfg.Description)
	setTags(body, cfg.Tags)
	return &Apigatewayv2API{s.AddResource(id, "aws_apigatewayv2_api", body)}
}
