package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobtrend/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// AllSources is the picker label that selects every record.
const AllSources = "All sources"

// SourceOption is one picker row.
type SourceOption struct {
	Name  string
	Count int
}

// SourceOptions builds the picker rows: AllSources first, then each source in
// the given order with its record count.
func SourceOptions(records []model.JobRecord, sources []string) []SourceOption {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Source]++
	}
	opts := []SourceOption{{Name: AllSources, Count: len(records)}}
	for _, s := range sources {
		opts = append(opts, SourceOption{Name: s, Count: counts[s]})
	}
	return opts
}

// BySource returns the records belonging to the chosen option.
func BySource(records []model.JobRecord, opt SourceOption) []model.JobRecord {
	if opt.Name == AllSources {
		return records
	}
	var out []model.JobRecord
	for _, r := range records {
		if r.Source == opt.Name {
			out = append(out, r)
		}
	}
	return out
}

type pickerModel struct {
	options []SourceOption
	cursor  int
	chosen  int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Browse jobs: select a source")
	s += "\n"

	for i, o := range m.options {
		label := fmt.Sprintf("%s (%d)", o.Name, o.Count)
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunSourcePicker shows an interactive source selector.
// Returns the index of the chosen option, or a negative value if the user quit.
func RunSourcePicker(options []SourceOption) (int, error) {
	m := pickerModel{
		options: options,
		chosen:  -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	return final.chosen, nil
}
