package stacks

import (
	"fmt"
	"os"
	"strings"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/construct"
	"github.com/json-to-terraform/stacks/internal/provider/aws"
	"github.com/json-to-terraform/stacks/internal/registry"
)

// EC2StackName is the stack the vpc-ec2-example app synthesizes.
const EC2StackName = "vpc-ec2-example"

const ec2Tag = "vpc-ec2-trading-hub"

type vpcEC2 struct{}

func init() {
	registry.Default.Register(vpcEC2{})
}

func (vpcEC2) Name() string { return "vpc-ec2-example" }

func (vpcEC2) Description() string {
	return "VPC with one subnet and an Amazon Linux 2 instance on a fixed private address"
}

func (vpcEC2) Define(app *construct.App, cfg *config.Config) error {
	NewEC2Stack(app, EC2StackName, cfg)
	return nil
}

// NewEC2Stack declares a VPC, a subnet and one instance attached through an
// ENI with a fixed private address. When cfg.EC2.PublicKeyPath is set the key
// is registered and the instance uses it.
func NewEC2Stack(app *construct.App, name string, cfg *config.Config) *construct.Stack {
	s := newStack(app, name, "AWS", cfg)

	vpc := aws.NewVpc(s, "vpc", &aws.VpcConfig{
		CidrBlock: cfg.Network.VpcCIDR,
		Tags:      tags(ec2Tag),
	})

	subnet := aws.NewSubnet(s, "subnet", &aws.SubnetConfig{
		VpcID:            vpc.ID(),
		CidrBlock:        cfg.Network.PublicSubnetCIDR,
		AvailabilityZone: cfg.Region + "a",
		Tags:             tags(ec2Tag),
	})

	eni := aws.NewNetworkInterface(s, "ec2-network-interface", &aws.NetworkInterfaceConfig{
		SubnetID:  subnet.ID(),
		PrivateIP: cfg.EC2.PrivateIP,
		Tags:      tags(ec2Tag),
	})

	ami := aws.NewDataAwsAmi(s, "latest-ami", &aws.DataAwsAmiConfig{
		MostRecent: true,
		Owners:     []string{"amazon"},
		Filter: []aws.DataAwsAmiFilter{
			{Name: "name", Values: []string{"amzn2-ami-hvm-*-x86_64-gp2"}},
		},
	})

	var keyName string
	if path := cfg.EC2.PublicKeyPath; path != "" {
		key, err := readPublicKey(path)
		if err != nil {
			s.Report("key-pair", err.Error(), "Point "+config.EnvPublicKeyPath+" at a readable .pub file or unset it")
		} else {
			kp := aws.NewKeyPair(s, "key-pair", &aws.KeyPairConfig{
				KeyName:   ec2Tag,
				PublicKey: key,
				Tags:      tags(ec2Tag),
			})
			keyName = kp.KeyName()
		}
	}

	instance := aws.NewInstance(s, "compute", &aws.InstanceConfig{
		Ami:          ami.ID(),
		InstanceType: cfg.EC2.InstanceType,
		KeyName:      keyName,
		NetworkInterface: []aws.InstanceNetworkInterface{
			{DeviceIndex: 0, NetworkInterfaceID: eni.ID()},
		},
		Tags: tags(ec2Tag),
	})

	s.AddOutput("private_ip", construct.OutputConfig{Value: instance.PrivateIP()})
	return s
}

func readPublicKey(path string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read public key: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("public key file %s is empty", path)
	}
	return key, nil
}
