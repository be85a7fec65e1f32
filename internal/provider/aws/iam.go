package aws

import (
	"encoding/json"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// IamRoleConfig configures aws_iam_role.
type IamRoleConfig struct {
	Name             string
	AssumeRolePolicy string
	Description      string
	Tags             map[string]string
}

// IamRole is an aws_iam_role.
type IamRole struct{ *construct.Resource }

// Name references the role name.
func (r *IamRole) Name() string { return r.Get("name") }

// ARN references the role ARN.
func (r *IamRole) ARN() string { return r.Get("arn") }

// NewIamRole declares a role. A literal trust policy must be valid JSON.
func NewIamRole(s *construct.Stack, id string, cfg *IamRoleConfig) *IamRole {
	c := checker{s, id}
	if c.required("assume_role_policy", cfg.AssumeRolePolicy, "Provide a trust policy document") &&
		!construct.IsToken(cfg.AssumeRolePolicy) && !json.Valid([]byte(cfg.AssumeRolePolicy)) {
		s.Report(id, "assume_role_policy is not valid JSON", "Fix the policy document")
	}
	if len(cfg.Name) > 64 {
		s.Report(id, "name is longer than 64 characters", "Shorten the role name")
	}

	body := construct.NewBody()
	body.SetString("name", cfg.Name)
	body.SetString("assume_role_policy", cfg.AssumeRolePolicy)
	body.SetString("description", cfg.Description)
	setTags(body, cfg.Tags)
	return &IamRole{s.AddResource(id, "aws_iam_role", body)}
}

// IamRolePolicyAttachmentConfig configures aws_iam_role_policy_attachment.
type IamRolePolicyAttachmentConfig struct {
	PolicyArn string
	Role      string
}

// NewIamRolePolicyAttachment attaches a managed policy to a role.
func NewIamRolePolicyAttachment(s *construct.Stack, id string, cfg *IamRolePolicyAttachmentConfig) *construct.Resource {
	c := checker{s, id}
	c.required("policy_arn", cfg.PolicyArn, "Set the managed policy ARN")
	c.required("role", cfg.Role, "Reference the role name, e.g. role.Name()")

	body := construct.NewBody()
	body.SetString("policy_arn", cfg.PolicyArn)
	body.SetString("role", cfg.Role)
	return s.AddResource(id, "aws_iam_role_policy_attachment", body)
}
