package aws

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/json-to-terraform/stacks/internal/construct"
)

// NetworkInterfaceConfig configures aws_network_interface.
type NetworkInterfaceConfig struct {
	SubnetID       string
	PrivateIP      string
	SecurityGroups []string
	Tags           map[string]string
}

// NetworkInterface is an aws_network_interface.
type NetworkInterface struct{ *construct.Resource }

// ID references the interface id.
func (n *NetworkInterface) ID() string { return n.Get("id") }

// NewNetworkInterface declares an ENI. A literal private IP must lie in the referenced subnet.
func NewNetworkInterface(s *construct.Stack, id string, cfg *NetworkInterfaceConfig) *NetworkInterface {
	c := checker{s, id}
	c.required("subnet_id", cfg.SubnetID, "Reference a subnet id, e.g. subnet.ID()")
	if cfg.PrivateIP != "" && !construct.IsToken(cfg.PrivateIP) {
		addr, err := netip.ParseAddr(cfg.PrivateIP)
		if err != nil {
			s.Report(id, fmt.Sprintf("private_ip %q is not a valid address", cfg.PrivateIP), "Use an address such as 10.0.10.100")
		} else {
			c.within("private_ip", netip.PrefixFrom(addr, addr.BitLen()), cfg.SubnetID)
		}
	}

	body := construct.NewBody()
	body.SetString("subnet_id", cfg.SubnetID)
	body.SetString("private_ip", cfg.PrivateIP)
	body.SetStringList("security_groups", cfg.SecurityGroups)
	setTags(body, cfg.Tags)
	return &NetworkInterface{s.AddResource(id, "aws_network_interface", body)}
}

// DataAwsAmiFilter narrows an AMI lookup.
type DataAwsAmiFilter struct {
	Name   string
	Values []string
}

// DataAwsAmiConfig configures the aws_ami data source.
type DataAwsAmiConfig struct {
	MostRecent bool
	Owners     []string
	Filter     []DataAwsAmiFilter
}

// DataAwsAmi is an aws_ami data source.
type DataAwsAmi struct{ *construct.Resource }

// ID references the AMI id.
func (d *DataAwsAmi) ID() string { return d.Get("id") }

// ImageID references the image id.
func (d *DataAwsAmi) ImageID() string { return d.Get("image_id") }

// NewDataAwsAmi declares an AMI lookup.
func NewDataAwsAmi(s *construct.Stack, id string, cfg *DataAwsAmiConfig) *DataAwsAmi {
	if len(cfg.Owners) == 0 && len(cfg.Filter) == 0 {
		s.Report(id, "ami lookup needs owners or filters", `Set Owners (e.g. "amazon") or Filter`)
	}

	body := construct.NewBody()
	body.SetBool("most_recent", cfg.MostRecent)
	body.SetStringList("owners", cfg.Owners)
	for _, f := range cfg.Filter {
		if f.Name == "" || len(f.Values) == 0 {
			s.Report(id, "filter needs a name and at least one value", "Set DataAwsAmiFilter.Name and Values")
		}
		fb := body.AppendBlock("filter")
		fb.SetString("name", f.Name)
		fb.SetStringList("values", f.Values)
	}
	return &DataAwsAmi{s.AddData(id, "aws_ami", body)}
}

// InstanceNetworkInterface attaches an existing ENI to an instance.
type InstanceNetworkInterface struct {
	DeviceIndex        int
	NetworkInterfaceID string
}

// InstanceConfig configures aws_instance.
type InstanceConfig struct {
	Ami                 string
	InstanceType        string
	KeyName             string
	SubnetID            string
	VpcSecurityGroupIDs []string
	NetworkInterface    []InstanceNetworkInterface
	UserData            string
	Tags                map[string]string
}

// Instance is an aws_instance.
type Instance struct{ *construct.Resource }

// ID references the instance id.
func (i *Instance) ID() string { return i.Get("id") }

// PrivateIP references the primary private address.
func (i *Instance) PrivateIP() string { return i.Get("private_ip") }

// PublicIP references the public address, if any.
func (i *Instance) PublicIP() string { return i.Get("public_ip") }

// NewInstance declares an EC2 instance.
func NewInstance(s *construct.Stack, id string, cfg *InstanceConfig) *Instance {
	c := checker{s, id}
	c.required("ami", cfg.Ami, "Set an AMI id or reference an aws_ami data source")
	if c.required("instance_type", cfg.InstanceType, "Set InstanceConfig.InstanceType (e.g. t3.micro)") &&
		!construct.IsToken(cfg.InstanceType) && !strings.Contains(cfg.InstanceType, ".") {
		s.Report(id, fmt.Sprintf("instance_type %q is malformed", cfg.InstanceType), "Use family.size, e.g. t3.micro")
	}
	if len(cfg.NetworkInterface) > 0 && (cfg.SubnetID != "" || len(cfg.VpcSecurityGroupIDs) > 0) {
		s.Report(id, "network_interface conflicts with subnet_id and vpc_security_group_ids",
			"Put subnet and security groups on the network interface instead")
	}
	seen := make(map[int]bool)
	for _, ni := range cfg.NetworkInterface {
		if seen[ni.DeviceIndex] {
			s.Report(id, fmt.Sprintf("device_index %d used twice", ni.DeviceIndex), "Give each network interface its own device index")
		}
		seen[ni.DeviceIndex] = true
	}

	body := construct.NewBody()
	body.SetString("ami", cfg.Ami)
	body.SetString("instance_type", cfg.InstanceType)
	body.SetString("key_name", cfg.KeyName)
	body.SetString("subnet_id", cfg.SubnetID)
	body.SetStringList("vpc_security_group_ids", cfg.VpcSecurityGroupIDs)
	body.SetString("user_data", cfg.UserData)
	for _, ni := range cfg.NetworkInterface {
		nb := body.AppendBlock("network_interface")
		nb.SetInt("device_index", ni.DeviceIndex)
		nb.SetString("network_interface_id", ni.NetworkInterfaceID)
	}
	setTags(body, cfg.Tags)
	return &Instance{s.AddResource(id, "aws_instance", body)}
}

// KeyPairConfig configures aws_key_pair.
type KeyPairConfig struct {
	KeyName   string
	PublicKey string
	Tags      map[string]string
}

// KeyPair is an aws_key_pair.
type KeyPair struct{ *construct.Resource }

// KeyName references the registered key name.
func (k *KeyPair) KeyName() string { return k.Get("key_name") }

// NewKeyPair registers a public key.
func NewKeyPair(s *construct.Stack, id string, cfg *KeyPairConfig) *KeyPair {
	c := checker{s, id}
	if c.required("public_key", cfg.PublicKey, "Provide an OpenSSH public key") &&
		!construct.IsToken(cfg.PublicKey) && !strings.HasPrefix(cfg.PublicKey, "ssh-") && !strings.HasPrefix(cfg.PublicKey, "ecdsa-") {
		s.Report(id, "public_key is not in OpenSSH format", "Use the contents of a .pub file, e.g. ssh-ed25519 AAAA...")
	}

	body := construct.NewBody()
	body.SetString("key_name", cfg.KeyName)
	body.SetString("public_key", strings.TrimSpace(cfg.PublicKey))
	setTags(body, cfg.Tags)
	return &KeyPair{s.AddResource(id, "aws_key_pair", body)}
}
