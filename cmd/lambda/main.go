// Command lambda serves synthesis behind API Gateway: a request names a
// registered app and the response carries the synthesized files.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/logger"
	"github.com/json-to-terraform/stacks/internal/registry"
	"github.com/json-to-terraform/stacks/internal/result"
	_ "github.com/json-to-terraform/stacks/internal/stacks" // register apps
	"github.com/json-to-terraform/stacks/internal/synth"
)

// SynthRequest is the JSON body of an invocation.
type SynthRequest struct {
	App    string   `json:"app"`
	Stacks []string `json:"stacks,omitempty"`
	Format string   `json:"format,omitempty"` // json, hcl or both
	Region string   `json:"region,omitempty"`
}

// SynthResponse is returned to the client as the proxy response body.
type SynthResponse struct {
	Success  bool                  `json:"success"`
	Stacks   []result.StackSummary `json:"stacks,omitempty"`
	Errors   []result.Error        `json:"errors,omitempty"`
	Warnings []result.Warning      `json:"warnings,omitempty"`
	Files    map[string]string     `json:"files,omitempty"` // path -> content (base64)
}

type server struct {
	loadConfig func() (*config.Config, error)
}

func (s *server) handle(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.Default.With("request_id", requestID)
	resp := s.synth(log, req)
	resp.Headers["X-Request-Id"] = requestID
	log.Info("request handled", "status", resp.StatusCode)
	return resp, nil
}

func (s *server) synth(log *slog.Logger, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := req.Body
	if req.IsBase64Encoded {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return fail(http.StatusBadRequest, "invalid_input", "invalid base64 body: "+err.Error())
		}
		body = string(dec)
	}

	var in SynthRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return fail(http.StatusBadRequest, "invalid_json", "invalid request JSON: "+err.Error())
	}
	if in.App == "" {
		return fail(http.StatusBadRequest, "invalid_input", "app is required")
	}

	cfg, err := s.loadConfig()
	if err != nil {
		return fail(http.StatusInternalServerError, "config_error", err.Error())
	}
	if in.Region != "" {
		cfg.Region = in.Region
	}

	app, err := registry.Default.Build(in.App, cfg)
	if errors.Is(err, registry.ErrUnknownApp) {
		return fail(http.StatusNotFound, "unknown_app", err.Error())
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "define_error", err.Error())
	}

	opts := synth.DefaultOptions()
	opts.Format = cfg.Format
	if in.Format != "" {
		opts.Format = in.Format
	}
	opts.Stacks = in.Stacks
	opts.Logger = log.With("app", in.App)
	res, err := synth.New(opts).Synth(app)
	if err != nil {
		return fail(http.StatusBadRequest, "invalid_input", err.Error())
	}

	out := SynthResponse{
		Success:  res.Success,
		Stacks:   res.Stacks,
		Errors:   res.Errors,
		Warnings: res.Warnings,
	}
	if !res.Success {
		return wrap(http.StatusUnprocessableEntity, out)
	}
	out.Files = make(map[string]string, len(res.Files))
	for name, content := range res.Files {
		out.Files[name] = base64.StdEncoding.EncodeToString(content)
	}
	return wrap(http.StatusOK, out)
}

func fail(status int, typ, message string) events.APIGatewayProxyResponse {
	return wrap(status, SynthResponse{
		Errors: []result.Error{{Type: typ, Severity: "error", Message: message}},
	})
}

func wrap(status int, out SynthResponse) events.APIGatewayProxyResponse {
	bodyBytes, _ := json.Marshal(out)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	s := &server{loadConfig: func() (*config.Config, error) {
		return config.Load(os.Getenv(config.EnvConfig))
	}}
	logger.Default.Info("starting synth handler")
	lambda.Start(s.handle)
}
