package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"formpilot/internal/api"
)

// HistoryPageModel lists past fill jobs and the learned mappings, with
// mapping deletion bound to number keys.
type HistoryPageModel struct {
	viewport viewport.Model
	styles   Styles

	page     *api.HistoryPage
	mappings []api.Mapping

	width  int
	height int
}

// NewHistoryPageModel creates the history page.
func NewHistoryPageModel(styles Styles) HistoryPageModel {
	return HistoryPageModel{
		viewport: viewport.New(80, 20),
		styles:   styles,
	}
}

// SetSize updates the viewport size.
func (m *HistoryPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
	m.render()
}

// UpdateContent replaces the history page data.
func (m *HistoryPageModel) UpdateContent(page *api.HistoryPage) {
	m.page = page
	m.render()
}

// SetMappings replaces the learned mappings list.
func (m *HistoryPageModel) SetMappings(mappings []api.Mapping) {
	m.mappings = mappings
	m.render()
}

func (m *HistoryPageModel) render() {
	var sb strings.Builder

	if m.page == nil || len(m.page.Items) == 0 {
		sb.WriteString(m.styles.Muted.Render("No fill jobs yet."))
		sb.WriteString("\n\n")
	} else {
		table := NewSimpleTable("Form", "Status", "Filled", "AI")
		for _, job := range m.page.Items {
			title := job.FormTitle
			if title == "" {
				title = job.FormURL
			}
			table.AddRow(
				truncate(title, 40),
				string(job.Status),
				fmt.Sprintf("%d/%d", job.QuestionsFilled, job.QuestionsDetected),
				fmt.Sprintf("%d", job.AIAnswersUsed),
			)
		}
		sb.WriteString(m.styles.Bold.Render(fmt.Sprintf("History (%d total)", m.page.Total)))
		sb.WriteString("\n")
		sb.WriteString(table.View(m.styles))
	}

	sb.WriteString(m.styles.Bold.Render("Learned mappings"))
	sb.WriteString("\n")
	if len(m.mappings) == 0 {
		sb.WriteString(m.styles.Muted.Render("None yet; they appear as forms get filled."))
		sb.WriteString("\n")
	} else {
		for i, mapping := range m.mappings {
			line := fmt.Sprintf("%d. %q -> %s (%d%%, used %dx)",
				i+1, truncate(mapping.QuestionText, 40), mapping.MatchedField,
				mapping.Confidence, mapping.TimesUsed)
			sb.WriteString(m.styles.Body.Render(line))
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.Muted.Render("press 1-9 to delete a mapping"))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
}

// Update handles scrolling and mapping deletion.
func (m HistoryPageModel) Update(msg tea.Msg, app *App) (HistoryPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		s := key.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			idx := int(s[0] - '1')
			if idx < len(m.mappings) {
				return m, app.deleteMapping(m.mappings[idx].ID.String())
			}
			return m, nil
		}
		if s == "r" {
			return m, app.loadHistory()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m HistoryPageModel) View() string {
	return m.viewport.View()
}
