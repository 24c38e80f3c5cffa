package cache

import "github.com/spf13/cobra"

// Command groups the utilities for managing status
// files downloaded by remote sources.
var Command = &cobra.Command{
	Use:   "cache",
	Short: "Download cache utilities",
}

func init() {
	Command.AddCommand(cleanCmd)
}
