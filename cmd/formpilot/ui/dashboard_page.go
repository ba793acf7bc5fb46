package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"formpilot/internal/api"
	"formpilot/internal/stats"
)

// DashboardPageModel is the main page: submit a form URL, watch the active
// job fill in, and see aggregate counters.
type DashboardPageModel struct {
	styles Styles

	urlInput   textinput.Model
	autoSubmit bool
	progress   progress.Model

	job        *api.JobSnapshot
	stalledErr error
	summary    stats.Summary

	width  int
	height int
}

// NewDashboardPageModel creates the dashboard page.
func NewDashboardPageModel(styles Styles) DashboardPageModel {
	in := textinput.New()
	in.Placeholder = "https://docs.google.com/forms/..."
	in.CharLimit = 512
	in.Width = 60
	in.Focus()

	return DashboardPageModel{
		styles:   styles,
		urlInput: in,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// SetSize records the available area.
func (m *DashboardPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if w > 20 {
		m.progress.Width = w - 20
	}
}

// SetActiveJob replaces the displayed job snapshot.
func (m *DashboardPageModel) SetActiveJob(snap *api.JobSnapshot) {
	m.job = snap
	m.stalledErr = nil
}

// SetPollStalled marks the active poll as lost.
func (m *DashboardPageModel) SetPollStalled(err error) {
	m.stalledErr = err
}

// SetSummary updates the aggregate counters.
func (m *DashboardPageModel) SetSummary(s stats.Summary) {
	m.summary = s
}

// Reset clears page state on logout.
func (m *DashboardPageModel) Reset() {
	m.job = nil
	m.stalledErr = nil
	m.summary = stats.Summary{}
	m.urlInput.SetValue("")
}

// Update handles input on the dashboard.
func (m DashboardPageModel) Update(msg tea.Msg, app *App) (DashboardPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+a":
			m.autoSubmit = !m.autoSubmit
			return m, nil
		case "enter":
			url := strings.TrimSpace(m.urlInput.Value())
			if url == "" {
				return m, nil
			}
			m.urlInput.SetValue("")
			return m, app.submitJob(url, m.autoSubmit)
		}
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m DashboardPageModel) View() string {
	var sb strings.Builder

	// Submission box
	sb.WriteString(m.styles.Bold.Render("Fill a form"))
	sb.WriteString("\n  ")
	sb.WriteString(m.urlInput.View())
	sb.WriteString("\n  ")
	if m.autoSubmit {
		sb.WriteString(m.styles.Success.Render("[x] auto-submit"))
	} else {
		sb.WriteString(m.styles.Muted.Render("[ ] auto-submit"))
	}
	sb.WriteString(m.styles.Muted.Render("  (ctrl+a: toggle, enter: go)"))
	sb.WriteString("\n\n")

	// Aggregate counters
	cards := []string{
		m.renderCard("Total runs", fmt.Sprintf("%d", m.summary.TotalRuns)),
		m.renderCard("Completed", fmt.Sprintf("%d", m.summary.Completed)),
		m.renderCard("Failed", fmt.Sprintf("%d", m.summary.Failed)),
		m.renderCard("Questions filled", fmt.Sprintf("%d", m.summary.QuestionsFilled)),
		m.renderCard("AI answers", fmt.Sprintf("%d", m.summary.AIAnswersUsed)),
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	sb.WriteString("\n\n")

	// Active job
	if m.job == nil {
		sb.WriteString(m.styles.Muted.Render("No job running. Paste a form URL above to start."))
		return sb.String()
	}
	sb.WriteString(m.renderJob())
	return sb.String()
}

func (m DashboardPageModel) renderCard(label, value string) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Bold.Render(value),
		m.styles.Muted.Render(label))
	return m.styles.Card.Render(body)
}

func (m DashboardPageModel) renderJob() string {
	var sb strings.Builder
	job := m.job

	title := job.FormTitle
	if title == "" {
		title = job.FormURL
	}
	sb.WriteString(m.styles.Bold.Render("Current job: "))
	sb.WriteString(m.styles.Body.Render(truncate(title, 60)))
	sb.WriteString("\n  ")

	switch {
	case m.stalledErr != nil:
		sb.WriteString(m.styles.Error.Render("✗ lost contact with the backend"))
	case job.Status == api.StatusCompleted:
		sb.WriteString(m.styles.Success.Render("✓ completed"))
		if job.AutoSubmitted {
			sb.WriteString(m.styles.Muted.Render("  (submitted)"))
		}
	case job.Status == api.StatusFailed:
		sb.WriteString(m.styles.Error.Render("✗ failed"))
		if job.ErrorMessage != "" {
			sb.WriteString(m.styles.Muted.Render("  " + job.ErrorMessage))
		}
	default:
		sb.WriteString(m.styles.Info.Render(string(job.Status) + "..."))
	}
	sb.WriteString("\n")

	if job.QuestionsDetected > 0 {
		ratio := float64(job.QuestionsFilled) / float64(job.QuestionsDetected)
		sb.WriteString("  ")
		sb.WriteString(m.progress.ViewAs(ratio))
		sb.WriteString(fmt.Sprintf("  %d/%d", job.QuestionsFilled, job.QuestionsDetected))
		sb.WriteString("\n")
	}

	if len(job.FillLog) > 0 {
		sb.WriteString("\n")
		table := NewSimpleTable("Question", "Answer", "Source")
		for _, entry := range job.FillLog {
			table.AddRow(truncate(entry.Question, 36), truncate(entry.Answer, 24), entry.Source)
		}
		sb.WriteString(table.View(m.styles))
	}
	return sb.String()
}
