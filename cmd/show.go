package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/djcass44/debview/pkg/dpkg"
	"github.com/djcass44/debview/pkg/source"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [package]",
	Short: "show the dependencies of a package",
	Args:  cobra.ExactArgs(1),
	RunE:  show,
}

const flagJSON = "json"

func init() {
	addSourceFlags(showCmd)
	showCmd.Flags().Bool(flagJSON, false, "print the package as json")
}

func show(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool(flagJSON)

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
	pkg, err := idx.Get(args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "\t")
		return enc.Encode(pkg)
	}
	writeDetail(cmd.OutOrStdout(), pkg)
	return nil
}

func writeDetail(w io.Writer, pkg *dpkg.Detail) {
	_, _ = fmt.Fprintf(w, "Package: %s\n", pkg.Name)
	_, _ = fmt.Fprintf(w, "Description: %s\n", pkg.Summary)
	if pkg.LongDescription != "" {
		_, _ = fmt.Fprintln(w, pkg.LongDescription)
	}
	writeList(w, "Depends", pkg.Depends)
	writeList(w, "Alternatives", pkg.Alternatives)
	writeList(w, "Reverse-Depends", pkg.ReverseDepends)
}

func writeList(w io.Writer, name string, items []string) {
	keys := make([]string, len(items))
	for i := range items {
		keys[i] = dpkg.Key(items[i])
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, strings.Join(keys, ", "))
}
