package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"formpilot/internal/api"
	"formpilot/internal/config"
	"formpilot/internal/session"
	"formpilot/internal/stats"
)

func testStyles() Styles {
	return NewStyles(DarkTheme())
}

func TestDashboardPageRendersActiveJob(t *testing.T) {
	model := NewDashboardPageModel(testStyles())
	model.SetSize(100, 30)

	model.SetActiveJob(&api.JobSnapshot{
		ID:                "abc",
		FormTitle:         "Campus Survey",
		Status:            api.StatusFilling,
		QuestionsDetected: 4,
		QuestionsFilled:   2,
		FillLog: []api.FillLogEntry{
			{Question: "Your name?", Answer: "Alice", Source: "profile"},
			{Question: "Dream job?", Answer: "Engineer", Source: "ai"},
		},
	})
	model.SetSummary(stats.Summary{TotalRuns: 12, Completed: 10})

	view := model.View()
	if !strings.Contains(view, "Campus Survey") {
		t.Fatalf("expected form title in view")
	}
	if !strings.Contains(view, "Your name?") {
		t.Fatalf("expected fill log question in view")
	}
	if !strings.Contains(view, "2/4") {
		t.Fatalf("expected fill progress count in view")
	}
	if !strings.Contains(view, "12") {
		t.Fatalf("expected total runs counter in view")
	}
}

func TestDashboardPageEmptyState(t *testing.T) {
	model := NewDashboardPageModel(testStyles())
	model.SetSize(100, 30)

	if !strings.Contains(model.View(), "No job running") {
		t.Fatalf("expected empty state message")
	}
}

func TestDashboardPageResetClearsJob(t *testing.T) {
	model := NewDashboardPageModel(testStyles())
	model.SetActiveJob(&api.JobSnapshot{ID: "abc", Status: api.StatusCompleted})
	model.Reset()

	if !strings.Contains(model.View(), "No job running") {
		t.Fatalf("expected reset to clear the active job")
	}
}

func TestHistoryPageRendersJobsAndMappings(t *testing.T) {
	model := NewHistoryPageModel(testStyles())
	model.SetSize(100, 30)

	model.UpdateContent(&api.HistoryPage{
		Total: 2,
		Items: []api.JobSnapshot{
			{ID: "j1", FormTitle: "Feedback Form", Status: api.StatusCompleted, QuestionsFilled: 5, QuestionsDetected: 5},
			{ID: "j2", FormURL: "https://forms.example/x", Status: api.StatusFailed},
		},
	})
	model.SetMappings([]api.Mapping{
		{ID: "m1", QuestionText: "Your department?", MatchedField: "department", Confidence: 90, TimesUsed: 4},
	})

	view := model.View()
	if !strings.Contains(view, "Feedback Form") {
		t.Fatalf("expected job title in view")
	}
	if !strings.Contains(view, "https://forms.example/x") {
		t.Fatalf("expected URL fallback for untitled job")
	}
	if !strings.Contains(view, "department") {
		t.Fatalf("expected mapping in view")
	}
}

func TestAuthPageModeToggle(t *testing.T) {
	model := NewAuthPageModel(testStyles())
	model.SetSize(80, 24)

	if !strings.Contains(model.View(), "Log in") {
		t.Fatalf("expected login mode initially")
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlS}, nil)
	view := model.View()
	if !strings.Contains(view, "Create account") {
		t.Fatalf("expected signup mode after toggle")
	}
	if !strings.Contains(view, "email") {
		t.Fatalf("expected email field in signup mode")
	}
}

func TestProfilePageLoadsStoredValues(t *testing.T) {
	model := NewProfilePageModel(testStyles())
	model.SetSize(80, 40)

	model.UpdateContent(&api.Profile{
		FullName:   "Alice Example",
		Department: "CSE",
	})

	view := model.View()
	if !strings.Contains(view, "Alice Example") {
		t.Fatalf("expected stored name in view")
	}
	if !strings.Contains(view, "CSE") {
		t.Fatalf("expected stored department in view")
	}
}

func TestProfilePageMissingProfileHint(t *testing.T) {
	model := NewProfilePageModel(testStyles())
	model.UpdateContent(nil)

	if !strings.Contains(model.View(), "none yet") {
		t.Fatalf("expected missing-profile hint")
	}
}

func TestSimpleTablePadsShortRows(t *testing.T) {
	table := NewSimpleTable("A", "B", "C")
	table.AddRow("one")
	table.AddRow("x", "y", "z")

	view := table.View(testStyles())
	if !strings.Contains(view, "one") || !strings.Contains(view, "z") {
		t.Fatalf("expected all cells rendered:\n%s", view)
	}
}

func TestTruncateKeepsMultibyteTextValid(t *testing.T) {
	in := "アンケートのご回答ありがとうございます"
	out := truncate(in, 10)
	if !utf8.ValidString(out) {
		t.Fatalf("truncate produced invalid UTF-8: %q", out)
	}
	if got := utf8.RuneCountInString(out); got > 10 {
		t.Errorf("expected at most 10 runes, got %d (%q)", got, out)
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected ellipsis on truncated text, got %q", out)
	}
	if truncate("short", 10) != "short" {
		t.Error("short strings should pass through unchanged")
	}
	if got := truncate("日本語テスト", 2); got != "日本" {
		t.Errorf("tiny budgets should cut whole runes, got %q", got)
	}
}

func TestAppViewShowsTabsWhenAuthenticated(t *testing.T) {
	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.SetCredentials("tok", session.User{ID: "1", Username: "alice"}); err != nil {
		t.Fatalf("SetCredentials failed: %v", err)
	}

	client := api.NewClient("http://127.0.0.1:1", store)
	app := NewApp(client, store, nil, config.Default(), nil)

	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := model.View()
	for _, tab := range []string{"Dashboard", "History", "Profile"} {
		if !strings.Contains(view, tab) {
			t.Fatalf("expected tab %q in view", tab)
		}
	}
}

func TestAppShowsLoginWhenUnauthenticated(t *testing.T) {
	store, err := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	client := api.NewClient("http://127.0.0.1:1", store)
	app := NewApp(client, store, nil, config.Default(), nil)

	if !strings.Contains(app.View(), "Log in") {
		t.Fatalf("expected login gate for unauthenticated app")
	}
}
