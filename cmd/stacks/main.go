// Package main is the entry point for the stacks CLI.
//
// stacks builds the infrastructure apps defined in internal/stacks and
// synthesizes them into Terraform manifests under cdktf.out/. Planning and
// applying the manifests is left to Terraform.
//
// Commands: synth, list, publish, version.
//
// For detailed usage information, run:
//
//	stacks --help
package main

import (
	"fmt"
	"os"

	"github.com/json-to-terraform/stacks/cmd/stacks/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
