package terraform

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/json-to-terraform/stacks/internal/construct"
)

func sampleStack(t *testing.T) *construct.Stack {
	t.Helper()
	s := construct.NewStack(construct.NewApp(""), "demo")

	prov := construct.NewBody()
	prov.SetString("region", "eu-west-1")
	s.AddProvider("aws", construct.RequiredProvider{Name: "aws", Source: "hashicorp/aws", Version: "~> 5.0"}, prov)

	vpcBody := construct.NewBody()
	vpcBody.SetString("cidr_block", "10.0.0.0/16")
	vpcBody.SetStringMap("tags", map[string]string{"Name": "DemoVPC"})
	vpc := s.AddResource("vpc", "aws_vpc", vpcBody)

	igwBody := construct.NewBody()
	igwBody.SetString("vpc_id", vpc.Get("id"))
	igw := s.AddResource("igw", "aws_internet_gateway", igwBody)

	eipBody := construct.NewBody()
	eipBody.SetBool("vpc", true)
	eip := s.AddResource("eip", "aws_eip", eipBody)
	eip.AddDependency(igw)

	sgBody := construct.NewBody()
	sgBody.SetString("vpc_id", vpc.Get("id"))
	ing := sgBody.AppendBlock("ingress")
	ing.SetInt("from_port", 443)
	ing.SetInt("to_port", 443)
	ing.SetString("protocol", "tcp")
	ing.SetStringList("cidr_blocks", []string{"0.0.0.0/0"})
	s.AddResource("sg-alb", "aws_security_group", sgBody)

	permBody := construct.NewBody()
	permBody.SetString("source_arn", construct.Join(vpc.Get("arn"), "/*/*"))
	s.AddResource("perm", "aws_lambda_permission", permBody)

	amiBody := construct.NewBody()
	amiBody.SetBool("most_recent", true)
	s.AddData("latest-ami", "aws_ami", amiBody)

	s.AddOutput("vpc_id", construct.OutputConfig{Value: vpc.Get("id"), Description: "VPC id"})
	return s
}

func TestJSON_NoHTMLEscaping(t *testing.T) {
	out, err := JSON(sampleStack(t), "0.1.0")
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `"version": "~> 5.0"`)
	assert.NotContains(t, text, `\u003e`)
	assert.NotContains(t, text, `\u0026`)
	assert.True(t, strings.HasSuffix(text, "}\n"))
}

func TestJSON(t *testing.T) {
	s := sampleStack(t)
	out, err := JSON(s, "0.1.0")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))

	meta := doc["//"].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, "demo", meta["stackName"])
	assert.Equal(t, "local", meta["backend"])
	assert.Equal(t, "0.1.0", meta["version"])

	tf := doc["terraform"].(map[string]any)
	assert.Equal(t, map[string]any{"source": "hashicorp/aws", "version": "~> 5.0"},
		tf["required_providers"].(map[string]any)["aws"])
	assert.Equal(t, map[string]any{"path": "terraform.demo.tfstate"},
		tf["backend"].(map[string]any)["local"])

	providers := doc["provider"].(map[string]any)["aws"].([]any)
	require.Len(t, providers, 1)
	assert.Equal(t, "eu-west-1", providers[0].(map[string]any)["region"])

	res := doc["resource"].(map[string]any)
	vpc := res["aws_vpc"].(map[string]any)["vpc"].(map[string]any)
	assert.Equal(t, "10.0.0.0/16", vpc["cidr_block"])
	assert.Equal(t, map[string]any{"Name": "DemoVPC"}, vpc["tags"])

	igw := res["aws_internet_gateway"].(map[string]any)["igw"].(map[string]any)
	assert.Equal(t, "${aws_vpc.vpc.id}", igw["vpc_id"])

	eip := res["aws_eip"].(map[string]any)["eip"].(map[string]any)
	assert.Equal(t, true, eip["vpc"])
	assert.Equal(t, []any{"aws_internet_gateway.igw"}, eip["depends_on"])

	sg := res["aws_security_group"].(map[string]any)["sg-alb"].(map[string]any)
	ingress := sg["ingress"].([]any)
	require.Len(t, ingress, 1)
	assert.Equal(t, float64(443), ingress[0].(map[string]any)["from_port"])
	assert.Equal(t, []any{"0.0.0.0/0"}, ingress[0].(map[string]any)["cidr_blocks"])

	data := doc["data"].(map[string]any)["aws_ami"].(map[string]any)
	assert.Contains(t, data, "latest-ami")

	output := doc["output"].(map[string]any)["vpc_id"].(map[string]any)
	assert.Equal(t, "${aws_vpc.vpc.id}", output["value"])
	assert.Equal(t, "VPC id", output["description"])
}

func TestJSON_Deterministic(t *testing.T) {
	a, err := JSON(sampleStack(t), "0.1.0")
	require.NoError(t, err)
	b, err := JSON(sampleStack(t), "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestJSON_EmptyStack(t *testing.T) {
	s := construct.NewStack(construct.NewApp(""), "empty")
	out, err := JSON(s, "dev")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.NotContains(t, doc, "resource")
	assert.NotContains(t, doc, "provider")
	assert.NotContains(t, doc, "output")
}

func TestHCL(t *testing.T) {
	s := sampleStack(t)
	files, err := HCL(s, s.Resources())
	require.NoError(t, err)
	require.Contains(t, files, VersionsFile)
	require.Contains(t, files, MainFile)
	require.Contains(t, files, OutputsFile)

	versions := string(files[VersionsFile])
	assert.Contains(t, versions, `source  = "hashicorp/aws"`)
	assert.Contains(t, versions, `backend "local"`)
	assert.Contains(t, versions, `provider "aws"`)
	assert.Contains(t, versions, `region = "eu-west-1"`)

	main := string(files[MainFile])
	assert.Contains(t, main, `resource "aws_vpc" "vpc"`)
	assert.Contains(t, main, `vpc_id = aws_vpc.vpc.id`)
	assert.Contains(t, main, `depends_on = [aws_internet_gateway.igw]`)
	assert.Contains(t, main, `source_arn = "${aws_vpc.vpc.arn}/*/*"`)
	assert.Contains(t, main, `data "aws_ami" "latest-ami"`)
	assert.Contains(t, main, "ingress {")
	assert.Contains(t, main, `cidr_blocks = ["0.0.0.0/0"]`)

	outputs := string(files[OutputsFile])
	assert.Contains(t, outputs, `output "vpc_id"`)
	assert.Contains(t, outputs, `value       = aws_vpc.vpc.id`)
}

func TestTokensForValue(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want string
	}{
		{"literal", cty.StringVal("t3.micro"), `"t3.micro"`},
		{"whole token", cty.StringVal("${aws_eip.eip.id}"), `aws_eip.eip.id`},
		{"template", cty.StringVal("lambda-example-${random_pet.p.id}"), `"lambda-example-${random_pet.p.id}"`},
		{"quote in template", cty.StringVal(`say "${random_pet.p.id}"`), `"say \"${random_pet.p.id}\""`},
		{"list of tokens", cty.ListVal([]cty.Value{cty.StringVal("${aws_subnet.a.id}"), cty.StringVal("${aws_subnet.b.id}")}), `[aws_subnet.a.id, aws_subnet.b.id]`},
		{"map with token", cty.MapVal(map[string]cty.Value{"table": cty.StringVal("${aws_dynamodb_table.t.name}")}), `{ table = aws_dynamodb_table.t.name }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := TokensForValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, compact(tt.want), compact(string(hclwrite.Format(toks.Bytes()))))
		})
	}
}

// compact drops all whitespace so layout choices of the formatter do not matter.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestTokensForValue_Invalid(t *testing.T) {
	_, err := TokensForValue(cty.StringVal("${aws_vpc.}"))
	assert.Error(t, err)
}

func TestRefTraversal(t *testing.T) {
	tr := refTraversal("data.aws_ami.latest", "id")
	require.Len(t, tr, 4)
	assert.Equal(t, "data", tr.RootName())
}
