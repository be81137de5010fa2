package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/evidencekit/evidence"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the known record types",
		Args:  cobra.NoArgs,
		// Listing types needs neither a key nor an archive
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tHEADER")
			for _, t := range evidence.NewDefaultRegistry().Types() {
				header := "no"
				if t.AdditionalHeader != nil {
					header = "yes"
				}
				fmt.Fprintf(w, "0x%04x\t%s\t%s\n", t.ID, t.Name, header)
			}
			return w.Flush()
		},
	}
}
