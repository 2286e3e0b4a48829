package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/objbridge/memrt"
	"github.com/wippyai/objbridge/object"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	immortalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newDemoCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build sample objects in the reference runtime and print its heap",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := runtimeOptions()
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			opts.Registerer = reg

			rt, err := memrt.New(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			s := object.Acquire(rt)
			defer s.Close()

			sc, err := buildScene(s)
			if err != nil {
				return err
			}
			defer sc.release()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, titleStyle.Render("Runtime")+" "+rt.String())
			fmt.Fprintln(w)
			for _, line := range sc.log {
				fmt.Fprintln(w, "  "+line)
			}
			fmt.Fprintln(w)
			printHeap(w, rt.Objects(), all)
			fmt.Fprintln(w)
			return printMetrics(w, reg)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include immortal objects")
	return cmd
}

// scene holds the sample objects built by buildScene.
type scene struct {
	handles []object.Wrapper
	log     []string
}

func (sc *scene) keep(w object.Wrapper) {
	sc.handles = append(sc.handles, w)
}

func (sc *scene) logf(format string, args ...any) {
	sc.log = append(sc.log, fmt.Sprintf(format, args...))
}

func (sc *scene) release() {
	for i := len(sc.handles) - 1; i >= 0; i-- {
		sc.handles[i].AsObject().Release()
	}
}

// fail drops everything built so far, including a foreign error's
// references, and passes err on. The error text survives the release.
func (sc *scene) fail(err error) (*scene, error) {
	sc.release()
	releaseErr(err)
	return nil, err
}

// buildScene exercises the object API: containers, modules, casts and
// the error paths.
func buildScene(s *object.Session) (*scene, error) {
	sc := &scene{}

	list, err := object.NewListFromStrings(s, []string{"alpha", "beta", "gamma"})
	if err != nil {
		return sc.fail(err)
	}
	sc.keep(list)
	sc.logf("list %s has %d items", list, list.Len())

	words, err := list.Strings()
	if err != nil {
		return sc.fail(err)
	}
	sc.logf("back in Go: %q", words)

	mod, err := object.NewModule(s, "demo")
	if err != nil {
		return sc.fail(err)
	}
	sc.keep(mod)
	if err := mod.Add("items", list); err != nil {
		return sc.fail(err)
	}
	sc.logf("module %s holds items", mod)

	sys, err := object.Import(s, "sys")
	if err != nil {
		return sc.fail(err)
	}
	sc.keep(sys)
	sc.logf("imported %s", sys)

	if _, err := object.CastAs[object.Dict](list); err != nil {
		sc.logf("checked cast: %v", err)
	}

	if _, err := object.Import(s, "missing"); err != nil {
		sc.logf("import: %v", err)
		releaseErr(err)
	}

	ude, err := object.NewUnicodeDecodeErrorUTF8(s, []byte("caf\xe9"))
	if err != nil {
		return sc.fail(err)
	}
	sc.keep(ude)
	sc.logf("decode error at [%d, %d): %s", ude.Start(), ude.End(), ude)

	return sc, nil
}

// fitWidth cuts line to at most width terminal cells, marking the cut with
// an ellipsis. A non-positive width leaves line alone.
func fitWidth(line string, width int) string {
	if width <= 0 {
		return line
	}
	return ansi.Truncate(line, width, "…")
}

func printHeap(w io.Writer, objs []memrt.ObjectInfo, all bool) {
	const row = "%-8s %-20s %5s  %s"
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf(row, "ADDR", "TYPE", "REFS", "REPR")))

	width := terminalWidth()
	for _, o := range objs {
		if o.Immortal && !all {
			continue
		}
		line := fmt.Sprintf(row, fmt.Sprintf("0x%x", uint64(o.Addr)), o.Type, fmt.Sprint(o.RefCount), o.Repr)
		line = fitWidth(line, width)
		if o.Immortal {
			line = immortalStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		fmt.Fprintln(w, keyStyle.Width(40).Render(mf.GetName())+valueStyle.Render(fmt.Sprint(total)))
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
