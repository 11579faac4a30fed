package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"launchpad/internal/wizard"
)

var checklistJSON bool

func NewChecklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist <repo-url>",
		Short: "Print the ESA console settings for a repository",
		Long: `Diagnose the repository and print the values to enter in the ESA console.
Fields marked "managed" are filled from esa.jsonc once it is committed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := diagnose(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := wizard.Checklist(res.Diagnosis)
			if checklistJSON {
				return printJSON(cmd, rows)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, r := range rows {
				note := ""
				if r.Managed {
					note = "managed by esa.jsonc"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Label, r.Value, note)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&checklistJSON, "json", false, "print the checklist as JSON")
	return cmd
}
