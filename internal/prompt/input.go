package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type inputModel struct {
	title     string
	input     textinput.Model
	required  bool
	submitted bool
	cancelled bool
}

func newInputModel(title, initial string, required, secret bool) inputModel {
	in := textinput.New()
	in.Prompt = "> "
	in.SetValue(initial)
	in.CursorEnd()
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	in.Focus()
	return inputModel{title: title, input: in, required: required}
}

// Input reads one line of text. initial pre-fills the field. An empty answer
// is allowed unless required is set.
func (p *Prompter) Input(title, initial string, required bool) (string, error) {
	return p.readLine(newInputModel(title, initial, required, false))
}

// Password reads one line of text without echoing it.
func (p *Prompter) Password(title string) (string, error) {
	return p.readLine(newInputModel(title, "", true, true))
}

func (p *Prompter) readLine(model inputModel) (string, error) {
	final, err := p.run(model)
	if err != nil {
		return "", err
	}
	m, ok := final.(inputModel)
	if !ok || m.cancelled || !m.submitted {
		return "", cancelled(model.title)
	}
	return strings.TrimSpace(m.input.Value()), nil
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if m.required && strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.submitted {
		if m.input.EchoMode == textinput.EchoPassword {
			return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), selectedStyle.Render("********"))
		}
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), selectedStyle.Render(m.input.Value()))
	}
	if m.cancelled {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" + m.input.View() + "\n" +
		helpStyle.Render("Enter: submit  Esc: cancel") + "\n"
}
