package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/objbridge/memrt"
	"github.com/wippyai/objbridge/object"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Browse the reference runtime's heap interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := runtimeOptions()
			if err != nil {
				return err
			}
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

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				printHeap(cmd.OutOrStdout(), rt.Objects(), true)
				return nil
			}

			p := tea.NewProgram(newInspectModel(rt, s), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

type inspectState int

const (
	stateBrowse inspectState = iota
	stateFilter
)

type inspectModel struct {
	rt       *memrt.Runtime
	s        *object.Session
	filter   textinput.Model
	objs     []memrt.ObjectInfo
	shown    []memrt.ObjectInfo
	detail   string
	selected int
	height   int
	state    inspectState
}

func newInspectModel(rt *memrt.Runtime, s *object.Session) *inspectModel {
	ti := textinput.New()
	ti.Prompt = "type: "
	ti.Placeholder = "str, list, module..."
	ti.Width = 30

	m := &inspectModel{rt: rt, s: s, filter: ti, height: 20}
	m.refresh()
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) refresh() {
	m.objs = m.rt.Objects()
	m.applyFilter()
}

func (m *inspectModel) applyFilter() {
	q := strings.TrimSpace(m.filter.Value())
	m.shown = m.shown[:0]
	for _, o := range m.objs {
		if q == "" || strings.Contains(o.Type, q) {
			m.shown = append(m.shown, o)
		}
	}
	if m.selected >= len(m.shown) {
		m.selected = max(len(m.shown)-1, 0)
	}
	m.describe()
}

// describe renders the selected object through the object package, the
// way a caller holding a borrowed address would.
func (m *inspectModel) describe() {
	if len(m.shown) == 0 {
		m.detail = ""
		return
	}
	info := m.shown[m.selected]
	o := object.FromBorrowed(m.s, info.Addr)
	defer o.Release()

	var b strings.Builder
	fmt.Fprintf(&b, "type      %s\n", typeStyle.Render(o.Type().Name()))
	fmt.Fprintf(&b, "refcount  %d (1 held by this view)\n", o.RefCount())
	fmt.Fprintf(&b, "immortal  %v\n", info.Immortal)

	switch {
	case object.Check[object.List](o):
		fmt.Fprintf(&b, "len       %d\n", object.UncheckedCastAs[object.List](o).Len())
	case object.Check[object.Dict](o):
		fmt.Fprintf(&b, "len       %d\n", object.UncheckedCastAs[object.Dict](o).Len())
	case object.Check[object.Module](o):
		mod := object.UncheckedCastAs[object.Module](o)
		if name, err := mod.Name(); err == nil {
			fmt.Fprintf(&b, "name      %s\n", name)
		} else {
			releaseErr(err)
		}
	case object.Check[object.UnicodeDecodeError](o):
		ude := object.UncheckedCastAs[object.UnicodeDecodeError](o)
		fmt.Fprintf(&b, "range     [%d, %d) %s\n", ude.Start(), ude.End(), ude.Reason())
	}
	fmt.Fprintf(&b, "str       %s\n", o)
	m.detail = b.String()
}

func releaseErr(err error) {
	if e, ok := err.(*object.Err); ok {
		e.Release()
	}
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.describe()
			}
		case "down", "j":
			if m.selected < len(m.shown)-1 {
				m.selected++
				m.describe()
			}
		case "r":
			m.refresh()
		case "/":
			m.state = stateFilter
			return m, m.filter.Focus()
		}
	}
	return m, nil
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Heap"))
	fmt.Fprintf(&b, " %d objects, %d shown\n\n", len(m.objs), len(m.shown))

	start := 0
	if m.selected >= m.height {
		start = m.selected - m.height + 1
	}
	end := min(start+m.height, len(m.shown))
	for i := start; i < end; i++ {
		o := m.shown[i]
		line := fmt.Sprintf("0x%-6x %-20s %4d  %s", uint64(o.Addr), o.Type, o.RefCount, o.Repr)
		line = fitWidth(line, 80)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detail)
	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select • / filter by type • r refresh • q quit"))
	return b.String()
}
