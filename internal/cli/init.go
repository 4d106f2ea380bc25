package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "contract2sdk.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample contract2sdk configuration file",
		Long:  "Scaffold a commented contract2sdk configuration file that documents available options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return runInit(cmd.OutOrStdout(), &InitConfig{OutputPath: out, Force: force})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(stdout io.Writer, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force && st.Mode().IsRegular() {
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every key the generate command reads.
const sampleConfigYAML = `# contract2sdk configuration (YAML)
# All fields are optional. Command-line flags override config values, and
# config values override CONTRACT2SDK_* environment variables.

# Path or http(s) URL of the API contract.
# input: ./contract.xml

# Contract format (xml|yaml|json|openapi). Detected from the file when omitted.
# format: xml

# Targets to generate (go|python|java|net).
# targets: [go, python]

# Output root. Each target is written to <out>/<target>.
# out: ./sdk

# Extra type map files applied on top of the contract's own type maps.
# typeMaps: [./typemaps.yaml]

# Request and param descriptions (YAML or JSON) copied into generated docs.
# docs: ./docs.json

# Package, module or namespace name of the generated SDK.
# packageName: ds3

# Reserved wire names for lists of a type. Job=Jobs is always present.
# overrides:
#   Job: Jobs

# Keep spectrainternal requests.
# includeInternal: false

# Drop types that no request references.
# pruneTypes: false

# Print each built target model.
# dumpModel: false

# Maximum parallel builds. Defaults to the number of CPUs.
# concurrency: 0

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directories.
# force: false

# Enable verbose logging.
# verbose: false
`
