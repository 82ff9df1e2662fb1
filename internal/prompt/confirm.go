package prompt

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	question  string
	answer    bool
	answered  bool
	cancelled bool
}

// Confirm asks a yes/no question. Enter accepts def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	final, err := p.run(confirmModel{question: question, answer: def})
	if err != nil {
		return false, err
	}
	m, ok := final.(confirmModel)
	if !ok || m.cancelled || !m.answered {
		return false, cancelled(question)
	}
	return m.answer, nil
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.answer, m.answered = true, true
		return m, tea.Quit
	case "n", "N":
		m.answer, m.answered = false, true
		return m, tea.Quit
	case "enter":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.question), selectedStyle.Render(answer))
	}
	if m.cancelled {
		return ""
	}
	hint := "[y/N]"
	if m.answer {
		hint = "[Y/n]"
	}
	return fmt.Sprintf("%s %s ", titleStyle.Render(m.question), helpStyle.Render(hint))
}
