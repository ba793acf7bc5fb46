package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"formpilot/internal/api"
	"formpilot/internal/config"
	"formpilot/internal/poller"
	"formpilot/internal/session"
	"formpilot/internal/stats"
)

// Tab identifies a dashboard page.
type Tab int

const (
	TabDashboard Tab = iota
	TabHistory
	TabProfile
)

var tabNames = []string{"Dashboard", "History", "Profile"}

// Messages flowing through the app.
type (
	authSuccessMsg struct{ username string }
	loggedOutMsg   struct{}
	errMsg         struct{ err error }
	toastClearMsg  struct{}

	jobStartedMsg struct{ snap *api.JobSnapshot }
	jobUpdateMsg  struct{ snap *api.JobSnapshot }
	jobDoneMsg    struct{ snap *api.JobSnapshot }
	pollFailedMsg struct{ err error }

	historyMsg      struct{ page *api.HistoryPage }
	profileMsg      struct{ profile *api.Profile }
	profileSavedMsg struct{ profile *api.Profile }
	mappingsMsg     struct{ mappings []api.Mapping }

	sessionChangedMsg struct{ event session.Event }
)

// pollEvent is what the poller callbacks push; the app turns each one into
// a tea.Msg.
type pollEvent struct {
	snap *api.JobSnapshot
	done bool
	err  error
}

// App is the root model: a tab bar over the three pages, gated behind the
// auth page until a session exists.
type App struct {
	client  *api.Client
	store   *session.Store
	watcher *session.Watcher
	cfg     *config.Config
	logger  *zap.Logger
	styles  Styles

	poll       *poller.Poller
	pollEvents chan pollEvent

	active Tab
	authed bool

	auth      AuthPageModel
	dashboard DashboardPageModel
	history   HistoryPageModel
	profile   ProfilePageModel

	toast      string
	toastStyle lipgloss.Style

	width  int
	height int
}

// NewApp assembles the dashboard. The watcher may be nil when session file
// watching is unavailable.
func NewApp(client *api.Client, store *session.Store, watcher *session.Watcher, cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	styles := NewStyles(ThemeByName(cfg.Theme))

	app := &App{
		client:     client,
		store:      store,
		watcher:    watcher,
		cfg:        cfg,
		logger:     logger,
		styles:     styles,
		pollEvents: make(chan pollEvent, 8),
		authed:     store.IsAuthenticated(),
		auth:       NewAuthPageModel(styles),
		dashboard:  NewDashboardPageModel(styles),
		history:    NewHistoryPageModel(styles),
		profile:    NewProfilePageModel(styles),
	}
	app.poll = poller.New(client.JobStatus,
		poller.WithInterval(cfg.PollInterval()),
		poller.WithLogger(logger))
	return app
}

// Init starts background listeners and, when already logged in, the initial
// data loads.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForPollEvent()}
	if a.watcher != nil {
		cmds = append(cmds, a.waitForSessionEvent())
	}
	if a.authed {
		cmds = append(cmds, a.loadHistory(), a.loadProfile())
	}
	return tea.Batch(cmds...)
}

// waitForPollEvent bridges the poller's callback channel into the tea loop.
func (a *App) waitForPollEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.pollEvents
		if !ok {
			return nil
		}
		switch {
		case ev.err != nil:
			return pollFailedMsg{err: ev.err}
		case ev.done:
			return jobDoneMsg{snap: ev.snap}
		default:
			return jobUpdateMsg{snap: ev.snap}
		}
	}
}

func (a *App) waitForSessionEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.watcher.Events()
		if !ok {
			return nil
		}
		return sessionChangedMsg{event: ev}
	}
}

// API commands. Each runs one request off the UI goroutine.

func (a *App) submitJob(formURL string, autoSubmit bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.client.FillForm(context.Background(), formURL, autoSubmit)
		if err != nil {
			return errMsg{err: err}
		}
		return jobStartedMsg{snap: snap}
	}
}

func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		page, err := a.client.History(context.Background(), 0, 20)
		if err != nil {
			return errMsg{err: err}
		}
		return historyMsg{page: page}
	}
}

func (a *App) loadProfile() tea.Cmd {
	return func() tea.Msg {
		p, err := a.client.GetProfile(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return profileMsg{profile: p}
	}
}

func (a *App) loadMappings() tea.Cmd {
	return func() tea.Msg {
		m, err := a.client.Mappings(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return mappingsMsg{mappings: m}
	}
}

func (a *App) saveProfile(p api.Profile, creating bool) tea.Cmd {
	return func() tea.Msg {
		var saved *api.Profile
		var err error
		if creating {
			saved, err = a.client.SaveProfile(context.Background(), p)
		} else {
			saved, err = a.client.UpdateProfile(context.Background(), p)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return profileSavedMsg{profile: saved}
	}
}

func (a *App) deleteMapping(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.client.DeleteMapping(context.Background(), id); err != nil {
			return errMsg{err: err}
		}
		m, err := a.client.Mappings(context.Background())
		if err != nil {
			return errMsg{err: err}
		}
		return mappingsMsg{mappings: m}
	}
}

func (a *App) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		tok, err := a.client.Login(context.Background(), username, password)
		if err != nil {
			return errMsg{err: err}
		}
		if err := a.store.SetCredentials(tok.AccessToken, session.User{
			ID:       tok.UserID.String(),
			Username: tok.Username,
		}); err != nil {
			return errMsg{err: err}
		}
		return authSuccessMsg{username: tok.Username}
	}
}

func (a *App) signup(req api.SignupRequest) tea.Cmd {
	return func() tea.Msg {
		tok, err := a.client.Signup(context.Background(), req)
		if err != nil {
			return errMsg{err: err}
		}
		if err := a.store.SetCredentials(tok.AccessToken, session.User{
			ID:       tok.UserID.String(),
			Username: tok.Username,
		}); err != nil {
			return errMsg{err: err}
		}
		return authSuccessMsg{username: tok.Username}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Clear(); err != nil {
			return errMsg{err: err}
		}
		return loggedOutMsg{}
	}
}

// startPolling begins following a job; the poller pushes into pollEvents.
func (a *App) startPolling(jobID string) {
	a.poll.Start(context.Background(), jobID, poller.Callbacks{
		OnUpdate: func(s *api.JobSnapshot) { a.pollEvents <- pollEvent{snap: s} },
		OnDone:   func(s *api.JobSnapshot) { a.pollEvents <- pollEvent{snap: s, done: true} },
		OnError:  func(err error) { a.pollEvents <- pollEvent{err: err} },
	})
}

func (a *App) showToast(text string, style lipgloss.Style) tea.Cmd {
	a.toast = text
	a.toastStyle = style
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg { return toastClearMsg{} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 4 // tab bar + toast + footer
		a.auth.SetSize(msg.Width, contentHeight)
		a.dashboard.SetSize(msg.Width, contentHeight)
		a.history.SetSize(msg.Width, contentHeight)
		a.profile.SetSize(msg.Width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.poll.Stop()
			return a, tea.Quit
		case "ctrl+l":
			if a.authed {
				return a, a.logout()
			}
		}
		if a.authed {
			switch msg.String() {
			case "tab":
				a.active = (a.active + 1) % Tab(len(tabNames))
				return a, a.refreshActive()
			case "shift+tab":
				a.active = (a.active + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
				return a, a.refreshActive()
			}
		}

	case authSuccessMsg:
		a.authed = true
		a.active = TabDashboard
		a.auth.Reset()
		return a, tea.Batch(
			a.showToast(fmt.Sprintf("Welcome, %s", msg.username), a.styles.Success),
			a.loadHistory(),
			a.loadProfile(),
		)

	case loggedOutMsg:
		a.poll.Stop()
		a.authed = false
		a.dashboard.Reset()
		return a, a.showToast("Logged out", a.styles.Info)

	case sessionChangedMsg:
		cmd := a.waitForSessionEvent()
		if msg.event == session.EventCleared && a.authed {
			// Logged out from another terminal.
			a.poll.Stop()
			a.authed = false
			a.dashboard.Reset()
			return a, tea.Batch(cmd, a.showToast("Session ended in another terminal", a.styles.Warning))
		}
		return a, cmd

	case errMsg:
		return a, a.showToast(msg.err.Error(), a.styles.Error)

	case toastClearMsg:
		a.toast = ""
		return a, nil

	case jobStartedMsg:
		a.dashboard.SetActiveJob(msg.snap)
		a.startPolling(msg.snap.ID.String())
		return a, nil

	case jobUpdateMsg:
		a.dashboard.SetActiveJob(msg.snap)
		return a, a.waitForPollEvent()

	case jobDoneMsg:
		a.dashboard.SetActiveJob(msg.snap)
		// One stats refresh per finished job.
		return a, tea.Batch(a.waitForPollEvent(), a.loadHistory())

	case pollFailedMsg:
		a.dashboard.SetPollStalled(msg.err)
		return a, tea.Batch(a.waitForPollEvent(),
			a.showToast("Lost contact with the backend", a.styles.Error))

	case historyMsg:
		a.history.UpdateContent(msg.page)
		a.dashboard.SetSummary(stats.Summarize(msg.page))
		return a, nil

	case profileMsg:
		a.profile.UpdateContent(msg.profile)
		return a, nil

	case profileSavedMsg:
		a.profile.UpdateContent(msg.profile)
		return a, a.showToast("Profile saved", a.styles.Success)

	case mappingsMsg:
		a.history.SetMappings(msg.mappings)
		return a, nil
	}

	// Route everything else to the focused page.
	if !a.authed {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.Update(msg, a)
		return a, cmd
	}
	var cmd tea.Cmd
	switch a.active {
	case TabDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg, a)
	case TabHistory:
		a.history, cmd = a.history.Update(msg, a)
	case TabProfile:
		a.profile, cmd = a.profile.Update(msg, a)
	}
	return a, cmd
}

// refreshActive reloads the data behind the newly focused tab.
func (a *App) refreshActive() tea.Cmd {
	switch a.active {
	case TabHistory:
		return tea.Batch(a.loadHistory(), a.loadMappings())
	case TabProfile:
		return a.loadProfile()
	}
	return nil
}

func (a *App) View() string {
	var sb strings.Builder

	if !a.authed {
		sb.WriteString(a.styles.Title.Render("formpilot"))
		sb.WriteString("\n")
		sb.WriteString(a.auth.View())
	} else {
		var tabs []string
		for i, name := range tabNames {
			if Tab(i) == a.active {
				tabs = append(tabs, a.styles.TabActive.Render(name))
			} else {
				tabs = append(tabs, a.styles.TabInactive.Render(name))
			}
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))
		sb.WriteString("\n\n")

		switch a.active {
		case TabDashboard:
			sb.WriteString(a.dashboard.View())
		case TabHistory:
			sb.WriteString(a.history.View())
		case TabProfile:
			sb.WriteString(a.profile.View())
		}
	}

	sb.WriteString("\n")
	if a.toast != "" {
		sb.WriteString(a.toastStyle.Render(a.toast))
	}
	sb.WriteString("\n")
	if a.authed {
		sb.WriteString(a.styles.Footer.Render("tab: switch page • ctrl+l: logout • ctrl+c: quit"))
	} else {
		sb.WriteString(a.styles.Footer.Render("ctrl+c: quit"))
	}
	return sb.String()
}
