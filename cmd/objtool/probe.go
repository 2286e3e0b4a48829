package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wippyai/objbridge/buildcfg"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

func newProbeCommand() *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Locate the interpreter and print its build configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			want, err := wantVersion()
			if err != nil {
				return err
			}

			p := buildcfg.NewProber()
			p.Python = viper.GetString("python")

			cfg, err := p.Probe(cmd.Context(), want)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			printConfig(cmd.OutOrStdout(), cfg)

			if savePath != "" {
				if err := cfg.Save(savePath); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), helpStyle.Render("saved to "+savePath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "write the configuration as YAML")
	return cmd
}

func printConfig(w io.Writer, cfg *buildcfg.Config) {
	row := func(k, v string) {
		fmt.Fprintln(w, keyStyle.Render(k)+valueStyle.Render(v))
	}

	fmt.Fprintln(w, titleStyle.Render("Interpreter")+" "+cfg.Interpreter)
	fmt.Fprintln(w)
	row("version", cfg.Version.String())
	row("libdir", cfg.LibDir)
	row("exec prefix", cfg.ExecPrefix)
	row("link model", cfg.LinkModel)
	row("flags", strings.Join(cfg.Flags(), " "))
	row("ldflags", strings.Join(cfg.LDFlags(), " "))
	row("build tags", strings.Join(cfg.BuildTags(), ","))
	row("python flags", cfg.PythonFlags())
}
