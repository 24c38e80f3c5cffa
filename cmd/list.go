package cmd

import (
	"fmt"

	"github.com/djcass44/debview/pkg/source"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list installed packages",
	Args:  cobra.NoArgs,
	RunE:  list,
}

const flagSummary = "summary"

func init() {
	addSourceFlags(listCmd)
	listCmd.Flags().Bool(flagSummary, false, "include the short description of each package")
}

func list(cmd *cobra.Command, _ []string) error {
	withSummary, _ := cmd.Flags().GetBool(flagSummary)

	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	sources, err := getSources(cmd.Context(), cfg.Spec)
	if err != nil {
		return err
	}
	idx, err := source.Load(cmd.Context(), sources...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, pkg := range idx.List() {
		if withSummary && pkg.Summary != "" {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", pkg.Name, pkg.Summary)
			continue
		}
		_, _ = fmt.Fprintln(out, pkg.Name)
	}
	return nil
}
