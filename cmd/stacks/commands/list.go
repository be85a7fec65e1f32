package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/stacks/internal/registry"
)

// List returns the list command, which prints every registered app with the
// stacks it declares.
func List(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the apps that can be synthesized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "APP\tSTACKS\tDESCRIPTION")
			for _, name := range registry.Default.Names() {
				def, _ := registry.Default.Get(name)
				app, err := registry.Default.Build(name, cfg)
				if err != nil {
					return err
				}
				for i, s := range app.Stacks() {
					if i == 0 {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", name, s.Name, def.Description())
						continue
					}
					fmt.Fprintf(tw, "\t%s\t\n", s.Name)
				}
			}
			return tw.Flush()
		},
	}
}
