package construct

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vpc", "vpc"},
		{"public-subnet", "public-subnet"},
		{"url-hello-world", "url-hello-world"},
		{"-x", "_-x"},
		{"ec2.network interface", "ec2-network-interface"},
		{"1st", "_1st"},
		{"", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	tok := Token("aws_vpc.vpc.id")
	assert.Equal(t, "${aws_vpc.vpc.id}", tok)
	assert.True(t, IsToken(tok))
	assert.False(t, IsToken("10.0.0.0/16"))

	expr, ok := IsWholeToken(tok)
	assert.True(t, ok)
	assert.Equal(t, "aws_vpc.vpc.id", expr)

	_, ok = IsWholeToken(Join("lambda-example-", tok))
	assert.False(t, ok)
	_, ok = IsWholeToken(Join(tok, "/", tok))
	assert.False(t, ok)
}

func TestStack_Addresses(t *testing.T) {
	app := NewApp("")
	assert.Equal(t, DefaultOutdir, app.Outdir)

	s := NewStack(app, "demo")
	vpc := s.AddResource("vpc", "aws_vpc", nil)
	ami := s.AddData("latest-ami", "aws_ami", nil)

	assert.Equal(t, "aws_vpc.vpc", vpc.Address())
	assert.Equal(t, "${aws_vpc.vpc.id}", vpc.Get("id"))
	assert.Equal(t, "data.aws_ami.latest-ami", ami.Address())
	assert.Same(t, ami, s.Lookup("data.aws_ami.latest-ami"))
	assert.Nil(t, s.Lookup("aws_vpc.other"))
	assert.Same(t, s, vpc.Stack())
	assert.Empty(t, app.Diagnostics())
}

func TestStack_DuplicateIDs(t *testing.T) {
	app := NewApp("out")
	s := NewStack(app, "demo")
	s.AddResource("vpc", "aws_vpc", nil)
	s.AddResource("vpc", "aws_subnet", nil)
	s.AddResource("my.sg", "aws_security_group", nil)
	s.AddResource("my_sg", "aws_security_group", nil)
	NewStack(app, "demo")

	diags := app.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, "duplicate stack name: demo", diags[0].Message)
	assert.Equal(t, "duplicate construct id: vpc", diags[1].Message)
	assert.Equal(t, "my_sg", diags[2].ConstructID)
	assert.Contains(t, diags[2].Message, "collides")
}

func TestNewStack_InvalidName(t *testing.T) {
	for _, name := range []string{"..", ".", "a/b", `a\b`, "with space"} {
		t.Run(name, func(t *testing.T) {
			s := NewStack(NewApp(""), name)
			diags := s.Diagnostics()
			require.Len(t, diags, 1)
			assert.Contains(t, diags[0].Message, "not a valid directory name")
		})
	}
	assert.True(t, ValidStackName("lambda-hello_world2"))
	assert.Empty(t, NewStack(NewApp(""), "vpc-ec2-example").Diagnostics())
}

func TestResource_AddDependency(t *testing.T) {
	s := NewStack(NewApp(""), "demo")
	igw := s.AddResource("igw", "aws_internet_gateway", nil)
	eip := s.AddResource("eip", "aws_eip", nil)

	eip.AddDependency(igw, igw, nil)
	assert.Equal(t, []string{"aws_internet_gateway.igw"}, eip.DependsOn())
}

func TestStack_Backend(t *testing.T) {
	s := NewStack(NewApp(""), "demo")
	b := s.Backend()
	assert.Equal(t, "local", b.Type)
	v, ok := b.Body.Attribute("path")
	require.True(t, ok)
	assert.Equal(t, "terraform.demo.tfstate", v.AsString())

	s.SetBackend(S3Backend("state", "demo.tfstate", "eu-west-1"))
	assert.Equal(t, "s3", s.Backend().Type)
}

func TestStack_RequiredProviders(t *testing.T) {
	s := NewStack(NewApp(""), "demo")
	s.AddProvider("random", RequiredProvider{Name: "random", Source: "hashicorp/random"}, nil)
	s.AddProvider("aws", RequiredProvider{Name: "aws", Source: "hashicorp/aws"}, nil)

	req := s.RequiredProviders()
	require.Len(t, req, 2)
	assert.Equal(t, "aws", req[0].Name)
	assert.Equal(t, "random", req[1].Name)
	assert.Len(t, s.Providers(), 2)
}

func TestOutput_RequiresValue(t *testing.T) {
	s := NewStack(NewApp(""), "demo")
	o := s.AddOutput("url-hello", OutputConfig{})
	assert.Equal(t, "url-hello", o.Name)
	require.Len(t, s.Diagnostics(), 1)
	assert.Equal(t, "output value is required", s.Diagnostics()[0].Message)
}

func TestBody(t *testing.T) {
	b := NewBody()
	b.SetString("cidr_block", "10.0.0.0/16")
	b.SetString("empty", "")
	b.SetBool("enable_dns_support", true)
	b.SetBool("internal", false)
	b.SetInt("from_port", 0)
	b.SetStringList("cidr_blocks", nil)
	b.SetStringMap("tags", map[string]string{"Name": "demo"})
	b.SetString("cidr_block", "10.1.0.0/16")
	ing := b.AppendBlock("ingress")
	ing.SetString("protocol", "tcp")

	names := make([]string, 0)
	for _, a := range b.Attributes() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"cidr_block", "enable_dns_support", "from_port", "tags"}, names)

	v, ok := b.Attribute("cidr_block")
	require.True(t, ok)
	assert.Equal(t, "10.1.0.0/16", v.AsString())
	assert.Len(t, b.BlocksOfType("ingress"), 1)
	assert.Empty(t, b.BlocksOfType("egress"))
	assert.ElementsMatch(t, []string{"10.1.0.0/16", "demo", "tcp"}, b.Strings())

	obj := b.Value()
	require.True(t, obj.Type().IsObjectType())
	assert.True(t, obj.GetAttr("ingress").Type().IsTupleType())
	assert.Equal(t, cty.StringVal("tcp"), obj.GetAttr("ingress").Index(cty.NumberIntVal(0)).GetAttr("protocol"))
	assert.Equal(t, cty.EmptyObjectVal, NewBody().Value())
}

func TestAsset_Archive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("exports.handler = 1"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.js"), []byte("module.exports = {}"), 0o644))

	s := NewStack(NewApp(""), "demo")
	a := NewAsset(s, "lambda-asset", AssetConfig{Path: dir, Type: AssetArchive})
	require.Empty(t, s.Diagnostics())
	assert.Len(t, a.Hash, 64)
	assert.Equal(t, "archive.zip", a.FileName())
	assert.Equal(t, "assets/lambda-asset/"+a.Hash+"/archive.zip", a.Path())

	files, err := a.Stage()
	require.NoError(t, err)
	require.Contains(t, files, a.Path())

	zr, err := zip.NewReader(bytes.NewReader(files[a.Path()]), int64(len(files[a.Path()])))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"index.js", "lib/util.js"}, names)

	// Same content, same hash and bytes.
	again := NewAsset(NewStack(NewApp(""), "other"), "lambda-asset", AssetConfig{Path: dir, Type: AssetArchive})
	assert.Equal(t, a.Hash, again.Hash)
	files2, err := again.Stage()
	require.NoError(t, err)
	assert.Equal(t, files[a.Path()], files2[again.Path()])
}

func TestAsset_FileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key.pub")
	require.NoError(t, os.WriteFile(file, []byte("ssh-ed25519 AAAA"), 0o600))

	s := NewStack(NewApp(""), "demo")
	f := NewAsset(s, "key", AssetConfig{Path: file})
	assert.Equal(t, AssetFile, f.Type)
	assert.Equal(t, "key.pub", f.FileName())
	files, err := f.Stage()
	require.NoError(t, err)
	assert.Equal(t, []byte("ssh-ed25519 AAAA"), files[f.Path()])

	d := NewAsset(s, "dir", AssetConfig{Path: dir})
	assert.Equal(t, AssetDirectory, d.Type)
	files, err = d.Stage()
	require.NoError(t, err)
	assert.Contains(t, files, d.Path()+"/key.pub")
}

func TestAsset_MissingSource(t *testing.T) {
	s := NewStack(NewApp(""), "demo")
	NewAsset(s, "missing", AssetConfig{Path: filepath.Join(t.TempDir(), "nope"), Type: AssetArchive})
	NewAsset(s, "empty", AssetConfig{})

	diags := s.Diagnostics()
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "cannot read asset")
	assert.Equal(t, "asset path is required", diags[1].Message)
}
