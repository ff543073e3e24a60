package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/shell"
)

// openCommand creates the open command, the interactive presentation shell.
func (c *CLI) openCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "open <project-id>",
		Short: "Edit a project's question/answer tree interactively",
		Long: `Open a project in an interactive terminal shell.

The shell lists the positioned nodes of the project's tree. Select a node to
see the actions it supports: add or edit a question, add or edit an answer.
Every change is sent to the backend and the tree is laid out again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.newClient()
			if err != nil {
				return err
			}

			logger, closeLog, err := c.shellLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			sh := shell.New(client, args[0],
				shell.WithLogger(logger),
				shell.WithLayoutOptions(c.settings().LayoutOptions()...))

			ctx := cmd.Context()
			p := tea.NewProgram(newShellModel(ctx, sh), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("shell: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write shell logs to this file")
	return c.withProjectCompletion(cmd)
}

// shellLogger returns the logger for the shell. The terminal belongs to the
// UI, so logs go to a file or nowhere.
func (c *CLI) shellLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return newLogger(io.Discard, c.Logger.GetLevel()), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, c.Logger.GetLevel()), func() { f.Close() }, nil
}

// =============================================================================
// shellModel - interactive presentation shell
// =============================================================================

type shellMode int

const (
	modeBrowse shellMode = iota
	modeActions
	modeDialog
)

type (
	stateMsg struct {
		state shell.State
		err   error
	}
	submitMsg struct {
		state shell.State
		err   error
	}
)

type shellModel struct {
	ctx   context.Context
	shell *shell.Shell
	state shell.State

	mode   shellMode
	cursor int
	offset int
	height int

	commands  []layout.Command
	cmdCursor int

	dialog shell.Dialog
	form   form

	busy   bool
	status string
	err    error
}

func newShellModel(ctx context.Context, sh *shell.Shell) shellModel {
	return shellModel{ctx: ctx, shell: sh, height: 15, busy: true, status: "Loading project..."}
}

func (m shellModel) Init() tea.Cmd {
	return m.refresh()
}

func (m shellModel) refresh() tea.Cmd {
	sh, ctx := m.shell, m.ctx
	return func() tea.Msg {
		st, err := sh.Refresh(ctx)
		if errors.Is(err, shell.ErrStale) {
			err = nil
		}
		return stateMsg{state: st, err: err}
	}
}

func (m shellModel) nodes() []layout.Node {
	if !m.state.Loaded() {
		return nil
	}
	return m.state.Layout.Nodes
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.busy = false
		m.status = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setState(msg.state)
		return m, nil

	case submitMsg:
		m.busy = false
		if msg.err != nil {
			if vferrors.IsFieldError(msg.err) {
				m.form.err = vferrors.UserMessage(msg.err)
				return m, nil
			}
			m.mode = modeBrowse
			m.err = msg.err
			return m, nil
		}
		m.mode = modeBrowse
		m.err = nil
		m.status = m.dialog.Title() + " saved"
		m.setState(msg.state)
		return m, nil

	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeDialog:
			return m.updateDialog(msg)
		case modeActions:
			return m.updateActions(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	if m.mode == modeDialog {
		var cmd tea.Cmd
		m.form, cmd, _ = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

// setState applies a new snapshot, keeping the cursor in range.
func (m *shellModel) setState(st shell.State) {
	m.state = st
	if n := len(m.nodes()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m shellModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.nodes()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case "r":
		if !m.busy {
			m.busy, m.status = true, "Refreshing..."
			return m, m.refresh()
		}
	case "enter", " ":
		if m.busy || len(nodes) == 0 {
			return m, nil
		}
		m.commands = nodes[m.cursor].Commands()
		m.cmdCursor = 0
		m.mode = modeActions
	}
	return m, nil
}

func (m shellModel) updateActions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeBrowse
	case "up", "k":
		if m.cmdCursor > 0 {
			m.cmdCursor--
		}
	case "down", "j":
		if m.cmdCursor < len(m.commands)-1 {
			m.cmdCursor++
		}
	case "enter":
		d, err := m.shell.Dispatch(m.commands[m.cmdCursor])
		if err != nil {
			m.mode = modeBrowse
			m.err = err
			return m, nil
		}
		m.dialog = d
		m.form = dialogForm(d)
		m.mode = modeDialog
		return m, textinput.Blink
	}
	return m, nil
}

// dialogForm builds the fields of a question or answer dialog.
func dialogForm(d shell.Dialog) form {
	if d.Kind == shell.QuestionDialog {
		return newForm(d.Title(), formField{Label: "Question", Placeholder: "What would you like to ask?", Value: d.Question})
	}
	return newForm(d.Title(),
		formField{Label: "Answer", Placeholder: "Answer text", Value: d.Text},
		formField{Label: "Video file (optional)", Placeholder: "path/to/answer.mp4"})
}

func (m shellModel) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.mode = modeBrowse
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	var submitted bool
	m.form, cmd, submitted = m.form.update(msg)
	if !submitted {
		return m, cmd
	}
	m.form.err = ""
	m.busy = true
	return m, m.submit(m.form.values())
}

// submit sends the dialog to the backend. Video uploads are opened and
// closed inside the command.
func (m shellModel) submit(values []string) tea.Cmd {
	sh, ctx, d := m.shell, m.ctx, m.dialog
	return func() tea.Msg {
		var in shell.Input
		if d.Kind == shell.QuestionDialog {
			in.Question = values[0]
		} else {
			in.Text = values[0]
			if path := strings.TrimSpace(values[1]); path != "" {
				video, f, err := openVideo(path)
				if err != nil {
					return submitMsg{err: err}
				}
				defer f.Close()
				in.Video = video
			}
		}
		st, err := sh.Submit(ctx, d, in)
		return submitMsg{state: st, err: err}
	}
}

// =============================================================================
// View
// =============================================================================

var (
	shellSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	shellDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

func (m shellModel) View() string {
	var b strings.Builder

	title := m.shell.ProjectID()
	if m.state.Project != nil && m.state.Project.Name != "" {
		title = m.state.Project.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	if m.mode == modeDialog {
		b.WriteString("\n")
		b.WriteString(m.form.view())
		if m.busy {
			b.WriteString("\n\n" + StyleDim.Render("Saving..."))
		}
		return b.String()
	}

	b.WriteString(shellDimStyle.Render("↑/↓ navigate  ⏎ actions  r refresh  q quit"))
	b.WriteString("\n\n")

	if nodes := m.nodes(); len(nodes) > 0 {
		b.WriteString(m.nodeTable(nodes))
		b.WriteString("\n")
		b.WriteString(shellDimStyle.Render(fmt.Sprintf("  [%d/%d]  ", m.cursor+1, len(nodes))))
		b.WriteString(statsLine(len(nodes), len(m.state.Layout.Edges), false))
		b.WriteString("\n")
	}

	if m.mode == modeActions {
		b.WriteString("\n")
		for i, c := range m.commands {
			line := "  " + actionTitle(c.Action)
			if i == m.cmdCursor {
				line = shellSelectedStyle.Render("▸ " + actionTitle(c.Action))
			}
			b.WriteString(line + "\n")
		}
	}

	switch {
	case m.err != nil:
		b.WriteString("\n" + styleIconError.Render(iconError) + " " + vferrors.UserMessage(m.err))
	case m.status != "":
		b.WriteString("\n" + StyleDim.Render(m.status))
	}
	return b.String()
}

func actionTitle(a layout.Action) string {
	return shell.Dialog{Action: a}.Title()
}

func (m shellModel) nodeTable(nodes []layout.Node) string {
	end := min(m.offset+m.height, len(nodes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		video := ""
		if n.Data.URL != "" || n.Data.VideoURL != "" {
			video = "●"
		}
		label := strings.Repeat("  ", n.Level) + truncate(graph.NodeLabel(n), 48)
		rows = append(rows, []string{cursor, string(n.Kind), label, video, n.ID})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Kind", "Content", "Video", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			switch col {
			case 1:
				base = kindStyle(string(nodes[idx].Kind))
			case 4:
				base = base.Foreground(colorDim)
			}
			if idx == m.cursor {
				return base.Bold(true)
			}
			return base
		})
	return t.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
