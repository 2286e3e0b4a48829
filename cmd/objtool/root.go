package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wippyai/objbridge/buildcfg"
	"github.com/wippyai/objbridge/memrt"
	"github.com/wippyai/objbridge/object"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "objtool",
		Short: "Inspect interpreter build configurations and the reference object runtime",
		Long: `objtool probes an installed interpreter for the build flags that shape its
object model, and drives the in-process reference runtime that the object
package is tested against.

Environment:
  OBJTOOL_PYTHON          interpreter to probe (default "python")
  OBJTOOL_PYTHON_VERSION  version to look for, e.g. 3.11`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "build configuration file written by probe --save")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("python-version", "", "interpreter version (X.Y)")

	viper.SetEnvPrefix("objtool")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("python_version", rootCmd.PersistentFlags().Lookup("python-version"))
	_ = viper.BindEnv("python")

	rootCmd.AddCommand(newProbeCommand())
	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}

func setupLogging() error {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	buildcfg.SetLogger(l.Named("buildcfg"))
	memrt.SetLogger(l.Named("memrt"))
	object.SetLogger(l.Named("object"))
	return nil
}

// wantVersion returns the requested interpreter version, or the zero
// Version when none was given.
func wantVersion() (buildcfg.Version, error) {
	s := viper.GetString("python_version")
	if s == "" {
		return buildcfg.Version{}, nil
	}
	return buildcfg.ParseVersion(s)
}

// runtimeOptions derives runtime options from --config, falling back to
// the requested version on top of the defaults.
func runtimeOptions() (memrt.Options, error) {
	if configPath != "" {
		cfg, err := buildcfg.Load(configPath)
		if err != nil {
			return memrt.Options{}, err
		}
		return memrt.OptionsFromConfig(cfg), nil
	}

	opts := memrt.DefaultOptions()
	v, err := wantVersion()
	if err != nil {
		return opts, err
	}
	if !v.IsZero() {
		opts.Version = v
	}
	return opts, nil
}
