package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/internal/patch"
	"launchpad/internal/safeio"
)

var (
	patchesOutDir  string
	patchesZipPath string
)

func NewPatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patches <repo-url>",
		Short: "Synthesize the files a repository is missing for ESA Pages",
		Long: `Diagnose the repository and print the patch set: esa.jsonc when the
platform config is missing and an edge function stub when one is needed.

Examples:
  launchpad patches https://github.com/acme/web             # print to stdout
  launchpad patches https://github.com/acme/web --out ./web # write into a checkout
  launchpad patches https://github.com/acme/web --zip p.zip # write an archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := diagnose(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			files := patch.Synthesize(res.Diagnosis)
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No patches needed.")
				return nil
			}

			if patchesZipPath != "" {
				raw, err := patch.Bundle(files)
				if err != nil {
					return err
				}
				if err := os.WriteFile(patchesZipPath, raw, 0o644); err != nil {
					return fmt.Errorf("failed to write bundle: %w", err)
				}
				fmt.Fprintf(out, "Wrote %d file(s) to %s\n", len(files), patchesZipPath)
			}
			if patchesOutDir != "" {
				fsys, err := safeio.NewSafeFS(patchesOutDir)
				if err != nil {
					return err
				}
				for _, f := range files {
					verb, err := writePatch(fsys, f)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s %s\n", verb, filepath.Join(fsys.Root(), filepath.FromSlash(strings.TrimPrefix(f.Path, "/"))))
				}
			}
			if patchesZipPath != "" || patchesOutDir != "" {
				return nil
			}

			for _, f := range files {
				fmt.Fprintf(out, "==> %s (%s) %s\n", f.Path, f.Type, f.Description)
				fmt.Fprintln(out, strings.TrimRight(f.Content, "\n"))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&patchesOutDir, "out", "", "write patch files under this directory")
	cmd.Flags().StringVar(&patchesZipPath, "zip", "", "write the patch archive to this path")
	return cmd
}

// writePatch writes f under the checkout and reports whether it created
// or replaced the file.
func writePatch(fsys *safeio.SafeFS, f patch.File) (string, error) {
	exists, err := fsys.Exists(f.Path)
	if err != nil {
		return "", err
	}
	if err := fsys.WriteFile(f.Path, []byte(f.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	if exists {
		return "replaced", nil
	}
	return "created", nil
}
