package aws

import (
	"fmt"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// VpcConfig configures aws_vpc.
type VpcConfig struct {
	CidrBlock          string
	EnableDNSHostnames bool
	EnableDNSSupport   bool
	InstanceTenancy    string
	Tags               map[string]string
}

// Vpc is an aws_vpc.
type Vpc struct{ *construct.Resource }

// ID references the VPC id.
func (v *Vpc) ID() string { return v.Get("id") }

// ARN references the VPC ARN.
func (v *Vpc) ARN() string { return v.Get("arn") }

// NewVpc declares a VPC.
func NewVpc(s *construct.Stack, id string, cfg *VpcConfig) *Vpc {
	c := checker{s, id}
	if c.required("cidr_block", cfg.CidrBlock, "Set VpcConfig.CidrBlock (e.g. 10.0.0.0/16)") {
		if p, ok := c.cidr("cidr_block", cfg.CidrBlock); ok && p.Addr().Is4() && (p.Bits() < 16 || p.Bits() > 28) {
			c.s.Report(id, fmt.Sprintf("cidr_block %s must be between /16 and /28", p), "Use a prefix length from 16 to 28")
		}
	}
	c.oneOf("instance_tenancy", cfg.InstanceTenancy, "default", "dedicated")

	body := construct.NewBody()
	body.SetString("cidr_block", cfg.CidrBlock)
	body.SetBool("enable_dns_hostnames", cfg.EnableDNSHostnames)
	body.SetBool("enable_dns_support", cfg.EnableDNSSupport)
	body.SetString("instance_tenancy", cfg.InstanceTenancy)
	setTags(body, cfg.Tags)
	return &Vpc{s.AddResource(id, "aws_vpc", body)}
}

// SubnetConfig configures aws_subnet.
type SubnetConfig struct {
	VpcID               string
	CidrBlock           string
	AvailabilityZone    string
	MapPublicIPOnLaunch bool
	Tags                map[string]string
}

// Subnet is an aws_subnet.
type Subnet struct{ *construct.Resource }

// ID references the subnet id.
func (sn *Subnet) ID() string { return sn.Get("id") }

// NewSubnet declares a subnet. A literal CIDR must fall inside the referenced VPC's range.
func NewSubnet(s *construct.Stack, id string, cfg *SubnetConfig) *Subnet {
	c := checker{s, id}
	c.required("vpc_id", cfg.VpcID, "Reference the VPC id, e.g. vpc.ID()")
	if c.required("cidr_block", cfg.CidrBlock, "Set SubnetConfig.CidrBlock (e.g. 10.0.10.0/24)") {
		if p, ok := c.cidr("cidr_block", cfg.CidrBlock); ok {
			c.within("cidr_block", p, cfg.VpcID)
		}
	}

	body := construct.NewBody()
	body.SetString("vpc_id", cfg.VpcID)
	body.SetString("cidr_block", cfg.CidrBlock)
	body.SetString("availability_zone", cfg.AvailabilityZone)
	body.SetBool("map_public_ip_on_launch", cfg.MapPublicIPOnLaunch)
	setTags(body, cfg.Tags)
	return &Subnet{s.AddResource(id, "aws_subnet", body)}
}

// InternetGatewayConfig configures aws_internet_gateway.
type InternetGatewayConfig struct {
	VpcID string
	Tags  map[string]string
}

// InternetGateway is an aws_internet_gateway.
type InternetGateway struct{ *construct.Resource }

// ID references the gateway id.
func (g *InternetGateway) ID() string { return g.Get("id") }

// NewInternetGateway declares an internet gateway attached to a VPC.
func NewInternetGateway(s *construct.Stack, id string, cfg *InternetGatewayConfig) *InternetGateway {
	checker{s, id}.required("vpc_id", cfg.VpcID, "Reference the VPC id, e.g. vpc.ID()")

	body := construct.NewBody()
	body.SetString("vpc_id", cfg.VpcID)
	setTags(body, cfg.Tags)
	return &InternetGateway{s.AddResource(id, "aws_internet_gateway", body)}
}

// EipConfig configures aws_eip.
type EipConfig struct {
	// Vpc allocates the address for use in a VPC (provider v4 style).
	Vpc bool
	// Domain is the provider v5 replacement for Vpc ("vpc" or "standard").
	Domain    string
	DependsOn []construct.Dependable
	Tags      map[string]string
}

// Eip is an aws_eip.
type Eip struct{ *construct.Resource }

// ID references the allocation id.
func (e *Eip) ID() string { return e.Get("id") }

// PublicIP references the allocated address.
func (e *Eip) PublicIP() string { return e.Get("public_ip") }

// NewEip declares an elastic IP.
func NewEip(s *construct.Stack, id string, cfg *EipConfig) *Eip {
	c := checker{s, id}
	c.oneOf("domain", cfg.Domain, "vpc", "standard")
	if cfg.Vpc && cfg.Domain == "standard" {
		c.s.Report(id, "vpc and domain \"standard\" conflict", "Drop Vpc or set Domain to \"vpc\"")
	}

	body := construct.NewBody()
	body.SetBool("vpc", cfg.Vpc)
	body.SetString("domain", cfg.Domain)
	setTags(body, cfg.Tags)
	r := s.AddResource(id, "aws_eip", body)
	r.AddDependency(cfg.DependsOn...)
	return &Eip{r}
}

// NatGatewayConfig configures aws_nat_gateway.
type NatGatewayConfig struct {
	AllocationID string
	SubnetID     string
	DependsOn    []construct.Dependable
	Tags         map[string]string
}

// NatGateway is an aws_nat_gateway.
type NatGateway struct{ *construct.Resource }

// ID references the gateway id.
func (n *NatGateway) ID() string { return n.Get("id") }

// NewNatGateway declares a NAT gateway in a public subnet.
func NewNatGateway(s *construct.Stack, id string, cfg *NatGatewayConfig) *NatGateway {
	c := checker{s, id}
	c.required("allocation_id", cfg.AllocationID, "Reference an EIP id, e.g. eip.ID()")
	c.required("subnet_id", cfg.SubnetID, "Reference a public subnet id")

	body := construct.NewBody()
	body.SetString("allocation_id", cfg.AllocationID)
	body.SetString("subnet_id", cfg.SubnetID)
	setTags(body, cfg.Tags)
	r := s.AddResource(id, "aws_nat_gateway", body)
	r.AddDependency(cfg.DependsOn...)
	return &NatGateway{r}
}

// VpcEndpointConfig configures aws_vpc_endpoint.
type VpcEndpointConfig struct {
	VpcID           string
	ServiceName     string
	VpcEndpointType string
	RouteTableIDs   []string
	Tags            map[string]string
}

// VpcEndpoint is an aws_vpc_endpoint.
type VpcEndpoint struct{ *construct.Resource }

// ID references the endpoint id.
func (e *VpcEndpoint) ID() string { return e.Get("id") }

// NewVpcEndpoint declares a VPC endpoint.
func NewVpcEndpoint(s *construct.Stack, id string, cfg *VpcEndpointConfig) *VpcEndpoint {
	c := checker{s, id}
	c.required("vpc_id", cfg.VpcID, "Reference the VPC id, e.g. vpc.ID()")
	c.required("service_name", cfg.ServiceName, "Set the service, e.g. com.amazonaws.eu-west-1.s3")
	c.oneOf("vpc_endpoint_type", cfg.VpcEndpointType, "Gateway", "Interface", "GatewayLoadBalancer")

	body := construct.NewBody()
	body.SetString("vpc_id", cfg.VpcID)
	body.SetString("service_name", cfg.ServiceName)
	body.SetString("vpc_endpoint_type", cfg.VpcEndpointType)
	body.SetStringList("route_table_ids", cfg.RouteTableIDs)
	setTags(body, cfg.Tags)
	return &VpcEndpoint{s.AddResource(id, "aws_vpc_endpoint", body)}
}

// RouteTableConfig configures aws_route_table.
type RouteTableConfig struct {
	VpcID string
	Tags  map[string]string
}

// RouteTable is an aws_route_table.
type RouteTable struct{ *construct.Resource }

// ID references the route table id.
func (rt *RouteTable) ID() string { return rt.Get("id") }

// NewRouteTable declares a route table.
func NewRouteTable(s *construct.Stack, id string, cfg *RouteTableConfig) *RouteTable {
	checker{s, id}.required("vpc_id", cfg.VpcID, "Reference the VPC id, e.g. vpc.ID()")

	body := construct.NewBody()
	body.SetString("vpc_id", cfg.VpcID)
	setTags(body, cfg.Tags)
	return &RouteTable{s.AddResource(id, "aws_route_table", body)}
}

// RouteConfig configures aws_route. Exactly one target must be set.
type RouteConfig struct {
	RouteTableID         string
	DestinationCidrBlock string
	GatewayID            string
	NatGatewayID         string
}

// NewRoute declares a route in a route table.
func NewRoute(s *construct.Stack, id string, cfg *RouteConfig) *construct.Resource {
	c := checker{s, id}
	c.required("route_table_id", cfg.RouteTableID, "Reference a route table id")
	if c.required("destination_cidr_block", cfg.DestinationCidrBlock, "Set the destination, e.g. 0.0.0.0/0") {
		c.cidr("destination_cidr_block", cfg.DestinationCidrBlock)
	}
	switch {
	case cfg.GatewayID == "" && cfg.NatGatewayID == "":
		s.Report(id, "route has no target", "Set GatewayID or NatGatewayID")
	case cfg.GatewayID != "" && cfg.NatGatewayID != "":
		s.Report(id, "route has more than one target", "Set only one of GatewayID and NatGatewayID")
	}

	body := construct.NewBody()
	body.SetString("route_table_id", cfg.RouteTableID)
	body.SetString("destination_cidr_block", cfg.DestinationCidrBlock)
	body.SetString("gateway_id", cfg.GatewayID)
	body.SetString("nat_gateway_id", cfg.NatGatewayID)
	return s.AddResource(id, "aws_route", body)
}

// RouteTableAssociationConfig configures aws_route_table_association.
type RouteTableAssociationConfig struct {
	SubnetID     string
	RouteTableID string
}

// NewRouteTableAssociation associates a subnet with a route table.
func NewRouteTableAssociation(s *construct.Stack, id string, cfg *RouteTableAssociationConfig) *construct.Resource {
	c := checker{s, id}
	c.required("subnet_id", cfg.SubnetID, "Reference a subnet id")
	c.required("route_table_id", cfg.RouteTableID, "Reference a route table id")

	body := construct.NewBody()
	body.SetString("subnet_id", cfg.SubnetID)
	body.SetString("route_table_id", cfg.RouteTableID)
	return s.AddResource(id, "aws_route_table_association", body)
}

// SecurityGroupRule is an inline ingress or egress rule.
type SecurityGroupRule struct {
	FromPort    int
	ToPort      int
	Protocol    string
	CidrBlocks  []string
	Description string
}

// SecurityGroupConfig configures aws_security_group.
type SecurityGroupConfig struct {
	Name        string
	Description string
	VpcID       string
	Ingress     []SecurityGroupRule
	Egress      []SecurityGroupRule
	Tags        map[string]string
}

// SecurityGroup is an aws_security_group.
type SecurityGroup struct{ *construct.Resource }

// ID references the security group id.
func (sg *SecurityGroup) ID() string { return sg.Get("id") }

// NewSecurityGroup declares a security group with inline rules.
func NewSecurityGroup(s *construct.Stack, id string, cfg *SecurityGroupConfig) *SecurityGroup {
	c := checker{s, id}
	c.required("vpc_id", cfg.VpcID, "Reference the VPC id, e.g. vpc.ID()")

	body := construct.NewBody()
	body.SetString("name", cfg.Name)
	body.SetString("description", cfg.Description)
	body.SetString("vpc_id", cfg.VpcID)
	for _, r := range cfg.Ingress {
		appendRule(c, body.AppendBlock("ingress"), r)
	}
	for _, r := range cfg.Egress {
		appendRule(c, body.AppendBlock("egress"), r)
	}
	setTags(body, cfg.Tags)
	return &SecurityGroup{s.AddResource(id, "aws_security_group", body)}
}

func appendRule(c checker, body *construct.Body, r SecurityGroupRule) {
	c.required("protocol", r.Protocol, `Set the protocol ("tcp", "udp", "icmp" or "-1" for all)`)
	c.ports(r.FromPort, r.ToPort)
	for _, cidr := range r.CidrBlocks {
		c.cidr("cidr_blocks", cidr)
	}
	body.SetInt("from_port", r.FromPort)
	body.SetInt("to_port", r.ToPort)
	body.SetString("protocol", r.Protocol)
	body.SetStringList("cidr_blocks", r.CidrBlocks)
	body.SetString("description", r.Description)
}
