// Package browse is the terminal viewer over a collected aggregate.
package browse

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobtrend/internal/filter"
	"github.com/amishk599/jobtrend/internal/model"
)

// Lines per record in the list view (title + subtitle + blank separator).
const recordItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

type browseModel struct {
	heading   string
	all       []model.JobRecord
	shown     []model.JobRecord
	list      viewport.Model
	cursor    int
	width     int
	height    int
	ready     bool
	search    textinput.Model
	searching bool
	query     string

	view           viewState
	detail         model.JobRecord
	detailViewport viewport.Model

	wantQuit bool
}

func newBrowseModel(heading string, records []model.JobRecord) browseModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "keywords"
	ti.CharLimit = 120

	return browseModel{
		heading: heading,
		all:     records,
		shown:   records,
		search:  ti,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		if m.query != "" {
			m.applyQuery("")
			return m, nil
		}
		m.wantQuit = false
		return m, tea.Quit
	case "/":
		m.searching = true
		m.search.SetValue(m.query)
		return m, m.search.Focus()
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		return m.openDetailView(), nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "enter":
		m.searching = false
		m.search.Blur()
		m.applyQuery(m.search.Value())
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if m.detail.URL != "" {
			openURL(m.detail.URL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

// applyQuery narrows the list to records matching any whitespace-separated
// keyword in title or company.
func (m *browseModel) applyQuery(q string) {
	m.query = strings.TrimSpace(q)
	if m.query == "" {
		m.shown = m.all
	} else {
		f := filter.NewKeywordFilter(strings.Fields(m.query), nil)
		m.shown = filter.Apply(f, m.all)
	}
	m.cursor = 0
	m.list.SetYOffset(0)
	m.recalcContent()
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.shown)-1, 0))
	m.recalcContent()

	cursorTop := m.cursor * recordItemHeight
	cursorBottom := cursorTop + recordItemHeight - 1
	if cursorTop < m.list.YOffset {
		m.list.SetYOffset(cursorTop)
	} else if cursorBottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(cursorBottom - m.list.Height + 1)
	}
}

func (m browseModel) openDetailView() browseModel {
	if len(m.shown) == 0 {
		return m
	}
	m.view = viewDetail
	m.detail = m.shown[m.cursor]
	m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.detailViewport.SetContent(m.renderDetail())
	return m
}

func (m *browseModel) recalcLayout() {
	width := max(m.width-2, 20)
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	height := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(width, height)
		m.ready = true
	} else {
		m.list.Width = width
		m.list.Height = height
	}
	m.search.Width = max(width-4, 10)
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.list.SetContent(renderRecords(m.shown, m.cursor))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	header := fmt.Sprintf(" %s (%d)", m.heading, len(m.shown))
	if m.query != "" {
		header += fmt.Sprintf("  matching %q", m.query)
	}

	pane := borderStyle.Width(m.list.Width).Render(m.list.View())

	var bottom string
	if m.searching {
		bottom = m.search.View()
	} else {
		statusText := fmt.Sprintf(" %d shown of %d    ↑/↓ cursor  / search  Enter detail  Esc back  q quit",
			len(m.shown), len(m.all))
		bottom = statusBarStyle.Width(m.width).Render(statusText)
	}

	return headerStyle.Render(header) + "\n" + pane + "\n" + bottom
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m browseModel) renderDetail() string {
	r := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", r.Title)
	addField("Company", r.Company)
	addField("Location", r.Location)
	addField("Experience", r.Experience)
	addField("Source", r.Source)
	addField("URL", r.URL)

	if desc := plainText(r.Description); desc != "" {
		wrapWidth := max(m.width-8, 20)
		label := "── Description "
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		b.WriteByte('\n')
		b.WriteString(dividerStyle.Render(label+fill) + "\n\n")
		b.WriteString(bodyStyle.Render(wordWrap(desc, wrapWidth)) + "\n")
	}

	return b.String()
}

func renderRecords(records []model.JobRecord, cursor int) string {
	if len(records) == 0 {
		return "  (no jobs)"
	}

	var b strings.Builder
	for i, r := range records {
		titleSt := titleStyle
		subtitleSt := subtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(orNA(r.Title)))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %s", orNA(r.Company), orNA(r.Location), r.Source)))
		b.WriteByte('\n')

		if i < len(records)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plainText renders an HTML fragment as text for display. Records keep the
// raw markup; only the viewer strips it.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunBrowser launches the full-screen record browser.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed esc
// to return to the picker.
func RunBrowser(heading string, records []model.JobRecord) (bool, error) {
	p := tea.NewProgram(newBrowseModel(heading, records), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
