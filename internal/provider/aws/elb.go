package aws

import (
	"fmt"
	"regexp"

	"github.com/json-to-terraform/stacks/internal/construct"
)

var lbNamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,30}[a-zA-Z0-9])?$`)

// LbConfig configures aws_lb.
type LbConfig struct {
	Name             string
	Internal         bool
	LoadBalancerType string
	SecurityGroups   []string
	Subnets          []string
	Tags             map[string]string
}

// Lb is an aws_lb.
type Lb struct{ *construct.Resource }

// ARN references the load balancer ARN.
func (l *Lb) ARN() string { return l.Get("arn") }

// DNSName references the load balancer DNS name.
func (l *Lb) DNSName() string { return l.Get("dns_name") }

// NewLb declares a load balancer.
func NewLb(s *construct.Stack, id string, cfg *LbConfig) *Lb {
	c := checker{s, id}
	if cfg.Name != "" && !construct.IsToken(cfg.Name) && !lbNamePattern.MatchString(cfg.Name) {
		s.Report(id, fmt.Sprintf("name %q is not a valid load balancer name", cfg.Name),
			"Use at most 32 letters, digits and hyphens, not starting or ending with a hyphen")
	}
	c.oneOf("load_balancer_type", cfg.LoadBalancerType, "application", "network", "gateway")
	if (cfg.LoadBalancerType == "" || cfg.LoadBalancerType == "application") && len(cfg.Subnets) < 2 {
		s.Report(id, "application load balancers need subnets in at least two availability zones",
			"Pass two or more subnet ids")
	}

	body := construct.NewBody()
	body.SetString("name", cfg.Name)
	body.SetBool("internal", cfg.Internal)
	body.SetString("load_balancer_type", cfg.LoadBalancerType)
	body.SetStringList("security_groups", cfg.SecurityGroups)
	body.SetStringList("subnets", cfg.Subnets)
	setTags(body, cfg.Tags)
	return &Lb{s.AddResource(id, "aws_lb", body)}
}
