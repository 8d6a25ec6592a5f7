// Package main is the entry point for the agentcatalog CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/config"
	"github.com/user/agentcatalog/internal/registry"
	"github.com/user/agentcatalog/internal/telemetry"
	"github.com/user/agentcatalog/internal/validate"
)

// Version information set at build time.
var version = "0.1.0"

// Global flags.
var (
	cfgFile string
	noColor bool
)

// cfg is populated by the root PersistentPreRunE.
var cfg *config.Config

// flagKeys maps CLI flag names to configuration keys. Any command that
// defines one of these flags overrides the file and environment value.
var flagKeys = map[string]string{
	"templates-dir":   "templates_dir",
	"frameworks-file": "frameworks_file",
	"addr":            "addr",
	"static-dir":      "static_dir",
	"watch":           "watch",
	"db":              "db_path",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"bucket":          "publish.bucket",
	"prefix":          "publish.prefix",
	"region":          "publish.region",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentcatalog",
		Short: "Browse, search and export a catalog of AI agent templates",
		Long: `agentcatalog loads agent templates from a directory of YAML files grouped
by category, serves them over a JSON API with live reload, renders starter
code for popular agent frameworks and builds a static catalog bundle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default ./agentcatalog.yaml)")
	root.PersistentFlags().String("templates-dir", config.DefaultTemplatesDir, "Templates root directory")
	root.PersistentFlags().String("frameworks-file", "", "Frameworks JSON file (default embedded)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "Log format: text or json")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newRawCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newFrameworksCmd())
	root.AddCommand(newSnapshotCmd())
	root.AddCommand(newPublishCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func setup(cmd *cobra.Command) error {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	level, _ := telemetry.ParseLevel(cfg.Log.Level)
	slog.SetDefault(telemetry.NewLogger(os.Stderr, level, cfg.Log.Format))
	if cfg.ConfigFile != "" {
		slog.Debug("config loaded", "file", cfg.ConfigFile)
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func loadRegistry() (*registry.Registry, error) {
	reg, err := registry.New(cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load templates from %s: %w", cfg.TemplatesDir, err)
	}
	return reg, nil
}

func loadFrameworks() (*codegen.FrameworksConfig, error) {
	if cfg.FrameworksFile == "" {
		return codegen.DefaultFrameworks()
	}
	return codegen.LoadFrameworks(cfg.FrameworksFile)
}

// useColor reports whether w is a terminal and color was not disabled.
func useColor(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !validate.IsFailure(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
