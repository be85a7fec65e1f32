package stacks

import (
	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/construct"
	"github.com/json-to-terraform/stacks/internal/provider/aws"
	"github.com/json-to-terraform/stacks/internal/registry"
)

// WebStackName is the stack the full-webstack app synthesizes.
const WebStackName = "demodemo"

type webstack struct{}

func init() {
	registry.Default.Register(webstack{})
}

func (webstack) Name() string { return "full-webstack" }

func (webstack) Description() string {
	return "VPC with public and private subnets, NAT, S3 endpoint and an application load balancer"
}

func (webstack) Define(app *construct.App, cfg *config.Config) error {
	NewWebStack(app, WebStackName, cfg)
	return nil
}

// NewWebStack declares a two-tier VPC fronted by an application load balancer.
func NewWebStack(app *construct.App, name string, cfg *config.Config) *construct.Stack {
	s := newStack(app, name, "aws", cfg)
	net := cfg.Network

	vpc := aws.NewVpc(s, "vpc", &aws.VpcConfig{
		CidrBlock:          net.VpcCIDR,
		EnableDNSHostnames: true,
		EnableDNSSupport:   true,
		Tags:               tags("DemoDemoVPC"),
	})

	igw := aws.NewInternetGateway(s, "igw", &aws.InternetGatewayConfig{
		VpcID: vpc.ID(),
		Tags:  tags("DemoDemoVPCIGW"),
	})

	eip := aws.NewEip(s, "eip", &aws.EipConfig{
		Vpc:       true,
		DependsOn: []construct.Dependable{igw},
	})

	publicSubnet := aws.NewSubnet(s, "public-subnet", &aws.SubnetConfig{
		VpcID:               vpc.ID(),
		CidrBlock:           net.PublicSubnetCIDR,
		AvailabilityZone:    cfg.Region + "a",
		MapPublicIPOnLaunch: true,
		Tags:                tags("DemoDemoVPCPublic"),
	})

	publicSubnet2 := aws.NewSubnet(s, "public-subnet2", &aws.SubnetConfig{
		VpcID:               vpc.ID(),
		CidrBlock:           net.PublicSubnet2CIDR,
		AvailabilityZone:    cfg.Region + "b",
		MapPublicIPOnLaunch: true,
		Tags:                tags("DemoDemoVPCPublic2"),
	})

	nat := aws.NewNatGateway(s, "nat", &aws.NatGatewayConfig{
		AllocationID: eip.ID(),
		SubnetID:     publicSubnet.ID(),
		DependsOn:    []construct.Dependable{igw},
		Tags:         tags("DemoDemoVPCNAT"),
	})

	privateSubnet := aws.NewSubnet(s, "private-subnet", &aws.SubnetConfig{
		VpcID:     vpc.ID(),
		CidrBlock: net.PrivateSubnetCIDR,
		Tags:      tags("DemoDemoVPCPrivate"),
	})

	rtPrivate := aws.NewRouteTable(s, "rtPrivate", &aws.RouteTableConfig{
		VpcID: vpc.ID(),
		Tags:  tags("DemoDemoVPCPrivateRT"),
	})

	rtPublic := aws.NewRouteTable(s, "rtPublic", &aws.RouteTableConfig{
		VpcID: vpc.ID(),
		Tags:  tags("DemoDemoVPCPrivateRT"),
	})

	aws.NewVpcEndpoint(s, "vpc-endpoint-s3", &aws.VpcEndpointConfig{
		VpcID:         vpc.ID(),
		ServiceName:   "com.amazonaws." + cfg.Region + ".s3",
		RouteTableIDs: []string{rtPrivate.ID()},
	})

	aws.NewRoute(s, "public-default-route", &aws.RouteConfig{
		RouteTableID:         rtPublic.ID(),
		DestinationCidrBlock: "0.0.0.0/0",
		GatewayID:            igw.ID(),
	})
	aws.NewRoute(s, "private-default-route", &aws.RouteConfig{
		RouteTableID:         rtPrivate.ID(),
		DestinationCidrBlock: "0.0.0.0/0",
		NatGatewayID:         nat.ID(),
	})
	for _, a := range []struct {
		id     string
		subnet *aws.Subnet
	}{
		{"public-subnet-rt", publicSubnet},
		{"public-subnet2-rt", publicSubnet2},
	} {
		aws.NewRouteTableAssociation(s, a.id, &aws.RouteTableAssociationConfig{
			SubnetID:     a.subnet.ID(),
			RouteTableID: rtPublic.ID(),
		})
	}
	aws.NewRouteTableAssociation(s, "private-subnet-rt", &aws.RouteTableAssociationConfig{
		SubnetID:     privateSubnet.ID(),
		RouteTableID: rtPrivate.ID(),
	})

	albSG := aws.NewSecurityGroup(s, "sg-alb", &aws.SecurityGroupConfig{
		Name:        "ALBSG",
		Description: "DemoVPCALBSG",
		VpcID:       vpc.ID(),
		Ingress: []aws.SecurityGroupRule{
			{FromPort: 443, ToPort: 443, Protocol: "tcp", CidrBlocks: []string{"0.0.0.0/0"}},
		},
		Egress: []aws.SecurityGroupRule{
			{FromPort: 0, ToPort: 0, Protocol: "-1", CidrBlocks: []string{"0.0.0.0/0"}},
		},
	})

	aws.NewLb(s, "lb", &aws.LbConfig{
		Name:             "DemoAlb",
		Internal:         false,
		LoadBalancerType: "application",
		SecurityGroups:   []string{albSG.ID()},
		Subnets:          []string{publicSubnet.ID(), publicSubnet2.ID()},
	})

	return s
}
