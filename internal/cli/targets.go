package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/contract2sdk/internal/target"
)

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the built-in SDK targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range target.All() {
				if len(t.Aliases) == 0 {
					fmt.Fprintln(out, t.Name)
					continue
				}
				fmt.Fprintf(out, "%s (aliases: %s)\n", t.Name, strings.Join(t.Aliases, ", "))
			}
			return nil
		},
	}
}
