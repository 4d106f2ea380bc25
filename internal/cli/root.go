package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// Execute runs the contract2sdk CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contract2sdk",
		Short:         "Generate client SDKs from a storage API contract",
		Long:          "contract2sdk turns an API contract (XML, YAML/JSON or OpenAPI) into client SDK sources for Go, Python, Java and .NET.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().String("env-file", defaultEnvFile, "Dotenv file with CONTRACT2SDK_* defaults")

	// Cobra flag errors (like unknown flags) become usage errors that carry
	// the command's help text.
	flagErrors := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErrors)
	for _, sub := range []*cobra.Command{newGenerateCmd(), newInitCmd(), newTargetsCmd()} {
		sub.SetFlagErrorFunc(flagErrors)
		cmd.AddCommand(sub)
	}

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
