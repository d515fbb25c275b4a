package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okaneo/jobscout/internal/model"
)

// Item is one posting plus its classification against the store.
type Item struct {
	Posting model.Posting
	New     bool
}

// Lines per item in the list view (title + subtitle + blank separator).
const itemHeight = 3

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

	newBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)
)

type browserModel struct {
	sourceName string
	items      []Item
	cursor     int
	width      int
	height     int
	ready      bool
	view       viewState
	listVP     viewport.Model
	detailVP   viewport.Model
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 4 // header + status bar + borders
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.listVP = viewport.New(m.width-2, vpHeight)
		m.detailVP = viewport.New(m.width-2, vpHeight)
		m.ready = true
		m.syncList()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.view == viewDetail {
				m.view = viewList
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			m.view = viewList
			return m, nil
		case "up", "k":
			if m.view == viewDetail {
				m.detailVP.ScrollUp(1)
				return m, nil
			}
			if m.cursor > 0 {
				m.cursor--
				m.syncList()
			}
		case "down", "j":
			if m.view == viewDetail {
				m.detailVP.ScrollDown(1)
				return m, nil
			}
			if m.cursor < len(m.items)-1 {
				m.cursor++
				m.syncList()
			}
		case "enter":
			if m.view == viewList && len(m.items) > 0 {
				m.view = viewDetail
				m.detailVP.SetContent(m.renderDetail(m.items[m.cursor]))
				m.detailVP.GotoTop()
			}
		}
	}
	return m, nil
}

// syncList re-renders the list content and keeps the cursor visible.
func (m *browserModel) syncList() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for i, it := range m.items {
		p := it.Posting
		sub := p.Location
		if p.PostedAt != nil {
			sub += "  " + p.PostedAt.Format("Jan 2, 2006")
		}
		if i == m.cursor {
			b.WriteString(selectedTitleStyle.Render(" "+p.Title+" ") + badge(it) + "\n")
			b.WriteString(selectedSubtitleStyle.Render(" "+sub+" ") + "\n\n")
		} else {
			b.WriteString(titleStyle.Render(p.Title) + badge(it) + "\n")
			b.WriteString(subtitleStyle.Render(sub) + "\n\n")
		}
	}
	m.listVP.SetContent(b.String())

	cursorLine := m.cursor * itemHeight
	if cursorLine < m.listVP.YOffset {
		m.listVP.SetYOffset(cursorLine)
	} else if cursorLine+itemHeight > m.listVP.YOffset+m.listVP.Height {
		m.listVP.SetYOffset(cursorLine + itemHeight - m.listVP.Height)
	}
}

func badge(it Item) string {
	if it.New {
		return "  " + newBadgeStyle.Render("NEW")
	}
	return ""
}

func (m browserModel) renderDetail(it Item) string {
	p := it.Posting
	var b strings.Builder
	b.WriteString(detailTitleStyle.Render(p.Title) + badge(it) + "\n\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label) + value + "\n")
	}
	row("Company", p.Company)
	row("Location", p.Location)
	row("URL", p.URL)
	row("Source", p.Source)
	if p.PostedAt != nil {
		row("Posted", p.PostedAt.Format(time.RFC1123))
	}
	if p.Description != "" {
		b.WriteString("\n" + p.Description + "\n")
	}
	return b.String()
}

func (m browserModel) View() string {
	if !m.ready {
		return "loading..."
	}

	newCount := 0
	for _, it := range m.items {
		if it.New {
			newCount++
		}
	}

	var body string
	var status string
	if m.view == viewDetail {
		body = m.detailVP.View()
		status = "↑/↓/j/k scroll  esc back  q quit"
	} else {
		body = m.listVP.View()
		status = fmt.Sprintf("%d/%d  ·  %d new  ·  enter detail  q quit", m.cursor+1, len(m.items), newCount)
	}

	header := headerStyle.Render(fmt.Sprintf("JobScout — %s (%d postings)", m.sourceName, len(m.items)))
	return header + "\n" + borderStyle.Render(body) + "\n" + statusBarStyle.Render(status)
}

// RunBrowser opens the full-screen list/detail browser over the given items.
func RunBrowser(sourceName string, items []Item) error {
	m := browserModel{sourceName: sourceName, items: items}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
