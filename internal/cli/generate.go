package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/contract2sdk/internal/builder"
	"github.com/mark3labs/contract2sdk/internal/contract"
	"github.com/mark3labs/contract2sdk/internal/emitter"
	"github.com/mark3labs/contract2sdk/internal/emitter/goemitter"
	"github.com/mark3labs/contract2sdk/internal/emitter/javaemitter"
	"github.com/mark3labs/contract2sdk/internal/emitter/netemitter"
	"github.com/mark3labs/contract2sdk/internal/emitter/pyemitter"
	"github.com/mark3labs/contract2sdk/internal/shape"
	"github.com/mark3labs/contract2sdk/internal/target"
	"github.com/mark3labs/contract2sdk/internal/view"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, environment, config file values, and CLI overrides.
type GenerateConfig struct {
	Input           string
	Format          string
	Targets         []string
	Out             string
	TypeMaps        []string
	Docs            string
	PackageName     string
	Overrides       map[string]string
	IncludeInternal bool
	PruneTypes      bool
	DumpModel       bool
	Concurrency     int
	ConfigPath      string
	DryRun          bool
	Force           bool
	Verbose         bool

	// Set by the command, not by configuration.
	Stdout io.Writer
	Logger *slog.Logger
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Targets: []string{"go"}, Out: "sdk"}
}

type renderFunc func(*view.TargetModel, emitter.RenderOptions) ([]emitter.File, error)

// renderers is keyed by target.Target.Name.
var renderers = map[string]renderFunc{
	"go":     goemitter.Render,
	"java":   javaemitter.Render,
	"net":    netemitter.Render,
	"python": pyemitter.Render,
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate client SDKs from an API contract",
		Long: "Generate client SDKs from an API contract. Options can be provided via flags, " +
			"a config file, CONTRACT2SDK_* environment variables, or defaults, in decreasing precedence.",
		Example: strings.TrimSpace(`  contract2sdk generate --input contract.xml --targets go,python --out ./sdk
  contract2sdk --config contract2sdk.yaml generate --force --dry-run`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Stdout = cmd.OutOrStdout()
			cfg.Logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the API contract")
	flags.String("format", "", "Contract format (xml|yaml|json|openapi); detected when omitted")
	flags.StringSlice("targets", nil, "Targets to generate (go|python|java|net); defaults to go")
	flags.String("out", "", "Output directory; each target is written to <out>/<target> (default \"sdk\")")
	flags.StringSlice("type-map", nil, "Extra type map files (YAML or JSON)")
	flags.String("docs", "", "Path or URL to a request and param documentation file (YAML or JSON)")
	flags.String("package-name", "", "Package, module or namespace name of the generated SDK")
	flags.StringToString("override", nil, "Reserved list root names, e.g. Job=Jobs")
	flags.Bool("include-internal", false, "Keep spectrainternal requests")
	flags.Bool("prune-types", false, "Drop types that no request references")
	flags.Bool("dump-model", false, "Print each built target model")
	flags.Int("concurrency", 0, "Maximum parallel builds (defaults to GOMAXPROCS)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := applyEnvDefaults(&cfg, strings.TrimSpace(envFile), cmd.Flags().Changed("env-file")); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "input":
			cfg.Input, err = flags.GetString(f.Name)
		case "format":
			cfg.Format, err = flags.GetString(f.Name)
		case "targets":
			cfg.Targets, err = flags.GetStringSlice(f.Name)
		case "out":
			cfg.Out, err = flags.GetString(f.Name)
		case "type-map":
			cfg.TypeMaps, err = flags.GetStringSlice(f.Name)
		case "docs":
			cfg.Docs, err = flags.GetString(f.Name)
		case "package-name":
			cfg.PackageName, err = flags.GetString(f.Name)
		case "override":
			cfg.Overrides, err = flags.GetStringToString(f.Name)
		case "include-internal":
			cfg.IncludeInternal, err = flags.GetBool(f.Name)
		case "prune-types":
			cfg.PruneTypes, err = flags.GetBool(f.Name)
		case "dump-model":
			cfg.DumpModel, err = flags.GetBool(f.Name)
		case "concurrency":
			cfg.Concurrency, err = flags.GetInt(f.Name)
		case "dry-run":
			cfg.DryRun, err = flags.GetBool(f.Name)
		case "force":
			cfg.Force, err = flags.GetBool(f.Name)
		case "verbose":
			cfg.Verbose, err = flags.GetBool(f.Name)
		}
	})
	return err
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Out = strings.TrimSpace(c.Out)
	c.Docs = strings.TrimSpace(c.Docs)
	c.PackageName = strings.TrimSpace(c.PackageName)
	c.Targets = sanitizeList(c.Targets)
	c.TypeMaps = sanitizeList(c.TypeMaps)
	if c.Out == "" {
		c.Out = "sdk"
	}
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, config file or CONTRACT2SDK_INPUT)")
	}
	if _, err := contract.ParseFormat(c.Format); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	if len(c.Targets) == 0 {
		return newUsageError("generate: at least one target is required")
	}
	if _, err := target.LookupAll(c.Targets); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	if c.Concurrency < 0 {
		return newUsageError(fmt.Sprintf("generate: --concurrency must not be negative, got %d", c.Concurrency))
	}
	for k, v := range c.Overrides {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			return newUsageError(fmt.Sprintf("generate: override %q=%q needs both a type and a name", k, v))
		}
	}
	return nil
}

// runGenerate loads the contract once, builds every target concurrently and
// writes each successful target under <out>/<target>. Failed targets are
// reported together after the others have been written.
func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = newLogger(io.Discard, false)
	}

	format, _ := contract.ParseFormat(cfg.Format)
	spec, err := contract.Load(ctx, cfg.Input,
		contract.WithFormat(format),
		contract.WithInternalRequests(cfg.IncludeInternal),
		contract.WithPruneUnusedTypes(cfg.PruneTypes),
		contract.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("load contract: %w", err)
	}
	logger.Info("loaded contract", "input", cfg.Input, "requests", len(spec.Requests()), "types", len(spec.Types()))

	extra, err := loadTypeMaps(cfg.TypeMaps)
	if err != nil {
		return err
	}
	var docs *contract.DocSpec
	if cfg.Docs != "" {
		docs, err = contract.LoadDocSpec(ctx, cfg.Docs, contract.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("load docs: %w", err)
		}
	}
	targets, err := target.LookupAll(cfg.Targets)
	if err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}

	results := builder.BuildAll(ctx, spec, targets,
		builder.WithOverrides(shape.DefaultOverrides().Merge(cfg.Overrides)),
		builder.WithTypeMaps(extra...),
		builder.WithDocs(docs),
		builder.WithConcurrency(cfg.Concurrency),
		builder.WithLogger(logger),
	)

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", res.Target, res.Err))
			continue
		}
		if cfg.DumpModel {
			spew.Fdump(stdout, res.Model)
		}
		if err := emitTarget(ctx, cfg, res.Model, stdout, logger); err != nil {
			errs = append(errs, fmt.Errorf("target %s: %w", res.Target, err))
		}
	}
	return errors.Join(errs...)
}

func emitTarget(ctx context.Context, cfg *GenerateConfig, model *view.TargetModel, stdout io.Writer, logger *slog.Logger) error {
	render, ok := renderers[model.Target]
	if !ok {
		return fmt.Errorf("no renderer for target %q", model.Target)
	}
	files, err := render(model, emitter.RenderOptions{PackageName: cfg.PackageName})
	if err != nil {
		return err
	}

	outDir := filepath.Join(cfg.Out, model.Target)
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}
	res, err := emitter.Write(ctx, files, emitter.Options{
		OutDir: outDir,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Logger: logger,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}
	if cfg.DryRun {
		printPlan(stdout, absOut, res.Planned)
		return nil
	}
	logger.Info("wrote target", "target", model.Target, "dir", absOut, "files", len(res.Planned))
	return nil
}

func loadTypeMaps(paths []string) ([]contract.TypeMapElement, error) {
	var out []contract.TypeMapElement
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("read type map %q: %v", p, err))
		}
		elems, err := contract.ParseTypeMaps(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("type map %s: %w", p, err)
		}
		out = append(out, elems...)
	}
	return out, nil
}

func printPlan(w io.Writer, outDir string, planned []emitter.PlannedFile) {
	fmt.Fprintf(w, "Planned writes to %s (%d files):\n", outDir, len(planned))
	for _, p := range planned {
		fmt.Fprintf(w, "- %s\n", p.RelPath)
	}
}

func wrapOutputError(err error, outDir string) error {
	var ioErr *emitter.IOError
	if errors.As(err, &ioErr) {
		return fmt.Errorf("output error for %s: %w", outDir, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, err))
	}
	return err
}
