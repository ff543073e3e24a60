package cli

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// form - text fields shared by prompts and shell dialogs
// =============================================================================

type formField struct {
	Label       string
	Placeholder string
	Value       string
	Secret      bool
}

type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

func newForm(title string, fields ...formField) form {
	f := form{title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = fd.Placeholder
		in.CharLimit = 2000
		in.Width = 60
		in.SetValue(fd.Value)
		if fd.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.labels = append(f.labels, fd.Label)
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// update feeds msg to the focused field. submitted is true when enter was
// pressed on the last field.
func (f form) update(msg tea.Msg) (_ form, cmd tea.Cmd, submitted bool) {
	if len(f.inputs) == 0 {
		return f, nil, true
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f.move(1), nil, false
		case "shift+tab", "up":
			return f.move(-1), nil, false
		case "enter":
			if f.focus == len(f.inputs)-1 {
				return f, nil, true
			}
			return f.move(1), nil, false
		}
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f form) move(delta int) form {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
	return f
}

// values returns the field contents in declaration order.
func (f form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

func (f form) view() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := StyleDim.Render(f.labels[i])
		if i == f.focus {
			label = StyleHighlight.Render(f.labels[i])
		}
		b.WriteString(label + "\n" + in.View() + "\n\n")
	}
	if f.err != "" {
		b.WriteString(StyleError.Render(f.err) + "\n\n")
	}
	b.WriteString(StyleDim.Render("tab next field  ⏎ submit  esc cancel"))
	return b.String()
}

// =============================================================================
// Standalone prompt
// =============================================================================

type promptModel struct {
	form      form
	submitted bool
}

func (m promptModel) Init() tea.Cmd { return textinput.Blink }

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "ctrl+c") {
		return m, tea.Quit
	}
	var cmd tea.Cmd
	var submitted bool
	m.form, cmd, submitted = m.form.update(msg)
	if submitted {
		m.submitted = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted {
		return ""
	}
	return m.form.view() + "\n"
}

// prompt asks for the given fields on the terminal and returns their values.
// It returns context.Canceled when the user aborts.
func prompt(ctx context.Context, title string, fields ...formField) ([]string, error) {
	p := tea.NewProgram(promptModel{form: newForm(title, fields...)},
		tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	res, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	m := res.(promptModel)
	if !m.submitted {
		return nil, context.Canceled
	}
	return m.form.values(), nil
}
