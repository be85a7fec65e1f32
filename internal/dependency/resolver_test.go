package dependency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/json-to-terraform/stacks/internal/construct"
)

func TestReferences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"literal", "10.0.0.0/16", nil},
		{"whole token", "${aws_vpc.vpc.id}", []string{"aws_vpc.vpc"}},
		{"data source", "${data.aws_ami.latest_ami.id}", []string{"data.aws_ami.latest_ami"}},
		{"template", "lambda-example-${random_pet.random-name.id}", []string{"random_pet.random-name"}},
		{"repeated", "${aws_s3_bucket.b.bucket}/${aws_s3_bucket.b.arn}", []string{"aws_s3_bucket.b"}},
		{"var and path ignored", "${var.region}-${path.module}", nil},
		{"index step", "${aws_instance.web.network_interface[0].id}", []string{"aws_instance.web"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := References(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferences_Malformed(t *testing.T) {
	_, err := References("${aws_vpc.")
	assert.Error(t, err)
}

func newStack() *construct.Stack {
	return construct.NewStack(construct.NewApp(""), "test")
}

func addressesOf(rs []*construct.Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Address()
	}
	return out
}

func TestResolve_Order(t *testing.T) {
	s := newStack()
	// Declared out of order on purpose: the subnet comes before its VPC.
	subnetBody := construct.NewBody()
	subnetBody.SetString("vpc_id", "${aws_vpc.vpc.id}")
	s.AddResource("subnet", "aws_subnet", subnetBody)

	s.AddResource("vpc", "aws_vpc", nil)

	igwBody := construct.NewBody()
	igwBody.SetString("vpc_id", "${aws_vpc.vpc.id}")
	igw := s.AddResource("igw", "aws_internet_gateway", igwBody)

	eip := s.AddResource("eip", "aws_eip", nil)
	eip.AddDependency(igw)

	ordered, tiers, err := Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"aws_vpc.vpc", "aws_subnet.subnet", "aws_internet_gateway.igw", "aws_eip.eip"}, addressesOf(ordered))
	require.Len(t, tiers, 3)
	assert.Equal(t, []string{"aws_vpc.vpc"}, addressesOf(tiers[0]))
	assert.Equal(t, []string{"aws_subnet.subnet", "aws_internet_gateway.igw"}, addressesOf(tiers[1]))
	assert.Equal(t, []string{"aws_eip.eip"}, addressesOf(tiers[2]))
}

func TestResolve_NestedBlockReference(t *testing.T) {
	s := newStack()
	s.AddResource("eni", "aws_network_interface", nil)
	body := construct.NewBody()
	ni := body.AppendBlock("network_interface")
	ni.SetString("network_interface_id", "${aws_network_interface.eni.id}")
	s.AddResource("compute", "aws_instance", body)

	edges, err := Edges(s.Lookup("aws_instance.compute"))
	require.NoError(t, err)
	assert.Equal(t, []string{"aws_network_interface.eni"}, edges)
}

func TestResolve_Cycle(t *testing.T) {
	s := newStack()
	a := construct.NewBody()
	a.SetString("x", "${aws_b.b.id}")
	s.AddResource("a", "aws_a", a)
	b := construct.NewBody()
	b.SetString("x", "${aws_a.a.id}")
	s.AddResource("b", "aws_b", b)

	_, _, err := Resolve(s)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestResolve_SelfReferenceIgnored(t *testing.T) {
	s := newStack()
	b := construct.NewBody()
	b.SetString("name", "${aws_a.a.id}")
	s.AddResource("a", "aws_a", b)

	ordered, _, err := Resolve(s)
	require.NoError(t, err)
	assert.Len(t, ordered, 1)
}

func TestResolve_Unresolved(t *testing.T) {
	s := newStack()
	b := construct.NewBody()
	b.SetString("vpc_id", "${aws_vpc.missing.id}")
	s.AddResource("subnet", "aws_subnet", b)

	_, _, err := Resolve(s)
	var unresolved *UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "subnet", unresolved.From)
	assert.Equal(t, "aws_vpc.missing", unresolved.To)
	assert.Equal(t, "subnet references undeclared aws_vpc.missing", err.Error())
}

func TestResolve_UnresolvedOutput(t *testing.T) {
	s := newStack()
	s.AddOutput("ip", construct.OutputConfig{Value: "${aws_instance.gone.private_ip}"})

	_, _, err := Resolve(s)
	var unresolved *UnresolvedError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "ip", unresolved.From)
}
