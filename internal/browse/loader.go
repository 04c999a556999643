package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobtrend/internal/model"
)

// ErrCancelled is returned by RunLoader when the user interrupts collection.
var ErrCancelled = errors.New("cancelled")

const loaderTimeout = 5 * time.Minute

type collectDoneMsg struct {
	records []model.JobRecord
}

type loaderModel struct {
	label     string
	collectFn func(ctx context.Context) []model.JobRecord
	ctx       context.Context
	cancel    context.CancelFunc
	spinner   spinner.Model
	result    []model.JobRecord
	err       error
	done      bool
}

func newLoaderModel(label string, collectFn func(ctx context.Context) []model.JobRecord) loaderModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	ctx, cancel := context.WithTimeout(context.Background(), loaderTimeout)
	return loaderModel{
		label:     label,
		collectFn: collectFn,
		ctx:       ctx,
		cancel:    cancel,
		spinner:   sp,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doCollect(), m.spinner.Tick)
}

func (m loaderModel) doCollect() tea.Cmd {
	collectFn := m.collectFn
	ctx := m.ctx
	return func() tea.Msg {
		return collectDoneMsg{records: collectFn(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case collectDoneMsg:
		if !m.done {
			m.result = msg.records
			m.done = true
		}
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Collecting jobs from %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while collectFn runs. It renders inline (no alt screen).
func RunLoader(label string, collectFn func(ctx context.Context) []model.JobRecord) ([]model.JobRecord, error) {
	m := newLoaderModel(label, collectFn)
	defer m.cancel()

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
