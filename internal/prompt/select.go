package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const pageSize = 10

type selectModel struct {
	title     string
	options   []string
	filter    textinput.Model
	matches   []int
	cursor    int
	chosen    int
	cancelled bool
}

func newSelectModel(title string, options []string) selectModel {
	filter := textinput.New()
	filter.Prompt = "> "
	filter.Placeholder = "type to filter"
	filter.Focus()

	return selectModel{
		title:   title,
		options: options,
		filter:  filter,
		matches: filterOptions(options, ""),
		chosen:  -1,
	}
}

// Select shows options and returns the index of the one picked. Typing
// narrows the list to options containing every typed word.
func (p *Prompter) Select(title string, options []string) (int, error) {
	final, err := p.run(newSelectModel(title, options))
	if err != nil {
		return -1, err
	}
	m, ok := final.(selectModel)
	if !ok || m.cancelled || m.chosen < 0 {
		return -1, cancelled(title)
	}
	return m.chosen, nil
}

// filterOptions returns the indices of options containing every word of query,
// ignoring case.
func filterOptions(options []string, query string) []int {
	words := strings.Fields(strings.ToLower(query))
	matches := make([]int, 0, len(options))
	for i, opt := range options {
		lower := strings.ToLower(opt)
		ok := true
		for _, w := range words {
			if !strings.Contains(lower, w) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, i)
		}
	}
	return matches
}

func (m selectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			m.chosen = m.matches[m.cursor]
			return m, tea.Quit
		case "up", "ctrl+p", "shift+tab":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n", "tab":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.matches = filterOptions(m.options, m.filter.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m selectModel) View() string {
	if m.chosen >= 0 {
		return fmt.Sprintf("%s %s\n", titleStyle.Render(m.title), selectedStyle.Render(m.options[m.chosen]))
	}
	if m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	start := 0
	if m.cursor >= pageSize {
		start = m.cursor - pageSize + 1
	}
	end := min(start+pageSize, len(m.matches))
	for i := start; i < end; i++ {
		label := m.options[m.matches[i]]
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	if len(m.matches) == 0 {
		b.WriteString(helpStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: move  Enter: select  Esc: cancel"))
	b.WriteString("\n")
	return b.String()
}
