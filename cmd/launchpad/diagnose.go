package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewDiagnoseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose <repo-url>",
		Short: "Infer the build configuration of a GitHub repository",
		Long: `Fetch repository metadata, the file tree and key files from GitHub and
infer the build configuration. Without a reachable oracle a deterministic
fallback diagnosis is printed.

Examples:
  launchpad diagnose https://github.com/acme/web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := diagnose(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if res.Err != nil {
				logrus.WithError(res.Err).Warn("oracle failed, using fallback diagnosis")
			}
			return printJSON(cmd, struct {
				Source    string `json:"source"`
				Diagnosis any    `json:"diagnosis"`
			}{Source: string(res.Source), Diagnosis: res.Diagnosis})
		},
	}
	return cmd
}
