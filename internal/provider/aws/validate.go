package aws

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// checker records validation problems for one construct.
type checker struct {
	s  *construct.Stack
	id string
}

func (c checker) required(field, value, suggestion string) bool {
	if value == "" {
		c.s.Report(c.id, field+" is required", suggestion)
		return false
	}
	return true
}

// cidr validates a literal IPv4/IPv6 prefix. Tokens are left to Terraform.
func (c checker) cidr(field, value string) (netip.Prefix, bool) {
	if value == "" || construct.IsToken(value) {
		return netip.Prefix{}, false
	}
	p, err := netip.ParsePrefix(value)
	if err != nil {
		c.s.Report(c.id, fmt.Sprintf("%s %q is not a valid CIDR block", field, value),
			"Use address/prefix notation, e.g. 10.0.0.0/16")
		return netip.Prefix{}, false
	}
	if p.Masked() != p {
		c.s.Report(c.id, fmt.Sprintf("%s %q has host bits set", field, value),
			"Use the network address "+p.Masked().String())
		return netip.Prefix{}, false
	}
	return p, true
}

func (c checker) ports(from, to int) {
	if from < 0 || from > 65535 || to < 0 || to > 65535 {
		c.s.Report(c.id, fmt.Sprintf("port range %d-%d is outside 0-65535", from, to), "Use ports between 0 and 65535")
		return
	}
	if from > to {
		c.s.Report(c.id, fmt.Sprintf("from_port %d is greater than to_port %d", from, to), "Swap from_port and to_port")
	}
}

func (c checker) oneOf(field, value string, allowed ...string) {
	if value == "" || construct.IsToken(value) {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	c.s.Report(c.id, fmt.Sprintf("%s %q is not supported", field, value), "Use one of: "+strings.Join(allowed, ", "))
}

// referencedPrefix follows a whole-token reference such as ${aws_vpc.vpc.id}
// to the referenced resource and parses its literal cidr_block.
func referencedPrefix(s *construct.Stack, ref string) (netip.Prefix, bool) {
	expr, ok := construct.IsWholeToken(ref)
	if !ok {
		return netip.Prefix{}, false
	}
	idx := strings.LastIndex(expr, ".")
	if idx < 0 {
		return netip.Prefix{}, false
	}
	r := s.Lookup(expr[:idx])
	if r == nil {
		return netip.Prefix{}, false
	}
	v, ok := r.Body.Attribute("cidr_block")
	if !ok || construct.IsToken(v.AsString()) {
		return netip.Prefix{}, false
	}
	p, err := netip.ParsePrefix(v.AsString())
	if err != nil {
		return netip.Prefix{}, false
	}
	return p, true
}

// within reports a problem when child is not inside the network parent references.
func (c checker) within(field string, child netip.Prefix, parentRef string) {
	parent, ok := referencedPrefix(c.s, parentRef)
	if !ok {
		return
	}
	if !parent.Contains(child.Addr()) || child.Bits() < parent.Bits() {
		c.s.Report(c.id, fmt.Sprintf("%s %s is outside %s", field, child, parent),
			"Pick a range inside the parent network")
	}
}
