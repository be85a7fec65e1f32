package terraform

import (
	"bytes"

	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Native syntax file names written for each stack.
const (
	VersionsFile = "versions.tf"
	MainFile     = "main.tf"
	OutputsFile  = "outputs.tf"
)

// TerraformBuilder collects resource blocks and template content for the native syntax files of a stack.
type TerraformBuilder struct {
	resources [][]byte
	outputs   []byte
	versions  []byte
}

// NewBuilder returns a new TerraformBuilder.
func NewBuilder() *TerraformBuilder {
	return &TerraformBuilder{}
}

// AddResource appends a resource or data block.
func (b *TerraformBuilder) AddResource(block []byte) {
	if len(block) == 0 {
		return
	}
	b.resources = append(b.resources, block)
}

// SetOutputs sets the outputs.tf content.
func (b *TerraformBuilder) SetOutputs(content []byte) {
	b.outputs = content
}

// SetVersions sets the versions.tf content (terraform block + providers).
func (b *TerraformBuilder) SetVersions(content []byte) {
	b.versions = content
}

// Build returns a map of filename -> formatted content.
func (b *TerraformBuilder) Build() map[string][]byte {
	out := make(map[string][]byte)
	if len(b.versions) > 0 {
		out[VersionsFile] = hclwrite.Format(b.versions)
	}
	var mainBuf bytes.Buffer
	for i, r := range b.resources {
		if i > 0 {
			mainBuf.WriteString("\n")
		}
		mainBuf.Write(r)
	}
	if mainBuf.Len() > 0 {
		out[MainFile] = hclwrite.Format(mainBuf.Bytes())
	}
	if len(b.outputs) > 0 {
		out[OutputsFile] = hclwrite.Format(b.outputs)
	}
	return out
}
