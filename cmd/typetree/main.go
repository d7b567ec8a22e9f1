package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/npratt/typetree/internal/config"
	goexec "github.com/npratt/typetree/internal/exec"
	"github.com/npratt/typetree/internal/shutdown"
	"github.com/npratt/typetree/internal/state"
	"github.com/npratt/typetree/internal/tui"
	"github.com/npratt/typetree/internal/typegraph"
)

var version = "dev"

// shutdownTimeout bounds how long a cancelled command may take to return.
const shutdownTimeout = 5 * time.Second

// newSource builds the type source selected by cfg. The packages source
// needs a working go command, which is checked up front.
func newSource(ctx context.Context, cfg *config.Config, runner goexec.CommandRunner, logger *slog.Logger) (typegraph.Source, error) {
	opts := typegraph.Options{
		ExportedOnly: cfg.Explorer.ExportedOnly,
		SkipError:    cfg.Explorer.SkipError,
	}
	if cfg.Source.Kind == config.SourceReflect {
		return typegraph.NewReflectSource(opts), nil
	}

	goVersion, err := goexec.GoVersion(ctx, runner)
	if err != nil {
		return nil, fmt.Errorf("%w\n\nThe packages source type-checks code with the go command.\n"+
			"Install Go, or explore the built-in runtime types with --source reflect", err)
	}
	logger.Debug("using go toolchain", "version", goVersion)

	return typegraph.NewPackagesSource(opts,
		typegraph.WithDir(cfg.Source.Dir),
		typegraph.WithBuildFlags(cfg.Source.BuildFlags),
		typegraph.WithLoadTimeout(cfg.Source.LoadTimeout),
		typegraph.WithLogger(logger),
	), nil
}

// bindFlags binds every flag in fs to its viper key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(configKey(f.Name), f)
	})
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	viper.SetEnvPrefix("TYPETREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// loadConfig applies verbosity and returns the merged configuration.
	loadConfig := func() (*config.Config, error) {
		if viper.GetBool(FlagVerbose) {
			logLevel.Set(slog.LevelDebug)
			logger.Debug("verbose logging enabled")
		}
		cfg, err := config.LoadConfig(viper.GetViper())
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:   "typetree",
		Short: "Explore the method graph of Go types",
		Long: `typetree shows a Go type's methods as an expandable tree. Opening a
method whose result is itself a type with methods lists that type's methods,
so chains like http.Client -> Do -> Response -> Location can be followed
interactively.

Types are loaded by type-checking packages with the go command, or from the
runtime types compiled into typetree (--source reflect).`,
		SilenceUsage: true,
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .typetree/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Log file path for the interactive explorer")
	rootCmd.PersistentFlags().String(FlagStateFile, "", "Tree state file path")
	rootCmd.PersistentFlags().String(FlagSource, "", "Type source: packages or reflect")
	rootCmd.PersistentFlags().String(FlagDir, "", "Directory packages are resolved from")
	bindFlags(viper.GetViper(), rootCmd.PersistentFlags())

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("typetree %s\n", version)
		},
	}

	// Explore command
	exploreCmd := &cobra.Command{
		Use:   "explore <type>...",
		Short: "Explore types interactively",
		Long: `Open the interactive explorer for one or more types, given as
import/path.Name (for example net/http.Client or *bytes.Buffer).

Expansion and selection are saved on exit and restored next time the same
types are explored. Without a terminal the tree is printed once instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runLogger := logger
			interactive := term.IsTerminal(int(os.Stdout.Fd()))
			if interactive {
				logResult, err := SetupTUILogger(cfg.Paths.Log, logLevel, cfg.LogRotation)
				if err != nil {
					return err
				}
				defer func() { _ = logResult.Close() }()
				runLogger = logResult.Logger
				slog.SetDefault(runLogger)
			}

			runLogger.Info("starting explorer",
				"types", args,
				"source", cfg.Source.Kind,
				"state", cfg.Paths.State,
				"watch", cfg.Watch.Enabled,
			)

			src, err := newSource(cmd.Context(), cfg, goexec.NewExecRunner(), runLogger)
			if err != nil {
				return err
			}

			explorer := tui.New(src, args,
				tui.WithStore(state.NewStore(cfg.Paths.State, runLogger)),
				tui.WithTreeConfig(cfg.Tree),
				tui.WithWatchConfig(cfg.Watch),
				tui.WithLogger(runLogger),
			)
			if interactive {
				return explorer.Run(cmd.Context())
			}
			return shutdown.RunWithGracefulShutdown(cmd.Context(), runLogger, shutdownTimeout,
				explorer.Run, nil)
		},
	}
	exploreCmd.Flags().Bool(FlagWatch, false, "Reload when the explored package sources change")
	bindFlags(viper.GetViper(), exploreCmd.Flags())

	// Dump command
	dumpCmd := &cobra.Command{
		Use:   "dump <type>...",
		Short: "Print the method tree without the interactive explorer",
		Long: `Print the method tree of one or more types, expanded to --depth
levels. Method chains can be cyclic, so the depth bounds the output.

--format selects text (the default), json, yaml or svg output;
--json is shorthand for --format json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			depth := viper.GetInt(FlagDepth)
			if depth < 1 {
				return fmt.Errorf("--%s must be at least 1, got %d", FlagDepth, depth)
			}
			format := viper.GetString(FlagFormat)
			if viper.GetBool(FlagJSON) {
				format = formatJSON
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			opts := dumpOptions{
				Depth:  depth,
				Format: format,
				Render: tui.RenderOptionsFrom(cfg.Tree),
			}
			src, err := newSource(cmd.Context(), cfg, goexec.NewExecRunner(), logger)
			if err != nil {
				return err
			}

			return shutdown.RunWithGracefulShutdown(cmd.Context(), logger, shutdownTimeout,
				func(ctx context.Context) error {
					return runDump(ctx, cmd.OutOrStdout(), src, args, opts)
				}, nil)
		},
	}
	dumpCmd.Flags().Int(FlagDepth, 2, "Levels to expand")
	dumpCmd.Flags().String(FlagFormat, formatText, "Output format: "+strings.Join(dumpFormats, ", "))
	dumpCmd.Flags().Bool(FlagJSON, false, "Output the tree as JSON")
	bindFlags(viper.GetViper(), dumpCmd.Flags())

	// Types command
	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "List the types available to --source reflect",
		Run: func(cmd *cobra.Command, args []string) {
			src := typegraph.NewReflectSource(typegraph.DefaultOptions())
			for _, name := range src.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	// Config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, config files,
TYPETREE_* environment variables and flags, as YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	}

	// Register all commands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
