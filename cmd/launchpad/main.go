package main

import (
	"os"
)

func main() {
	rootCmd := NewRootCmd()

	// Add subcommands
	rootCmd.AddCommand(NewDiagnoseCmd())
	rootCmd.AddCommand(NewPatchesCmd())
	rootCmd.AddCommand(NewChecklistCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
