package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"formpilot/internal/api"
)

type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

// AuthPageModel is the login/signup gate shown while no session exists.
type AuthPageModel struct {
	styles Styles
	mode   authMode

	inputs []textinput.Model
	focus  int

	width  int
	height int
}

// Input indices. Login uses username+password; signup uses all four.
const (
	inputUsername = iota
	inputEmail
	inputPassword
	inputConfirm
)

// NewAuthPageModel creates the auth page in login mode.
func NewAuthPageModel(styles Styles) AuthPageModel {
	mk := func(placeholder string, secret bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 128
		in.Width = 32
		if secret {
			in.EchoMode = textinput.EchoPassword
		}
		return in
	}

	inputs := []textinput.Model{
		mk("username", false),
		mk("email", false),
		mk("password", true),
		mk("confirm password", true),
	}
	inputs[inputUsername].Focus()

	return AuthPageModel{
		styles: styles,
		inputs: inputs,
	}
}

// SetSize records the available area.
func (m *AuthPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Reset clears all fields, e.g. after a successful login.
func (m *AuthPageModel) Reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = inputUsername
	m.inputs[inputUsername].Focus()
}

// visible lists the input indices active for the current mode.
func (m *AuthPageModel) visible() []int {
	if m.mode == modeSignup {
		return []int{inputUsername, inputEmail, inputPassword, inputConfirm}
	}
	return []int{inputUsername, inputPassword}
}

func (m *AuthPageModel) setFocus(idx int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = idx
	m.inputs[idx].Focus()
}

func (m *AuthPageModel) cycleFocus(delta int) {
	order := m.visible()
	pos := 0
	for i, idx := range order {
		if idx == m.focus {
			pos = i
			break
		}
	}
	pos = (pos + delta + len(order)) % len(order)
	m.setFocus(order[pos])
}

// Update handles input. Submission commands come from the app.
func (m AuthPageModel) Update(msg tea.Msg, app *App) (AuthPageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return m, nil
		case "ctrl+s":
			// Toggle between login and signup.
			if m.mode == modeLogin {
				m.mode = modeSignup
			} else {
				m.mode = modeLogin
			}
			m.setFocus(inputUsername)
			return m, nil
		case "enter":
			return m, m.submit(app)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *AuthPageModel) submit(app *App) tea.Cmd {
	username := strings.TrimSpace(m.inputs[inputUsername].Value())
	password := m.inputs[inputPassword].Value()

	if m.mode == modeLogin {
		return app.login(username, password)
	}
	return app.signup(api.SignupRequest{
		Username:        username,
		Email:           strings.TrimSpace(m.inputs[inputEmail].Value()),
		Password:        password,
		ConfirmPassword: m.inputs[inputConfirm].Value(),
	})
}

func (m AuthPageModel) View() string {
	var sb strings.Builder

	if m.mode == modeLogin {
		sb.WriteString(m.styles.Bold.Render("Log in"))
		sb.WriteString(m.styles.Muted.Render("  (ctrl+s: create an account)"))
	} else {
		sb.WriteString(m.styles.Bold.Render("Create account"))
		sb.WriteString(m.styles.Muted.Render("  (ctrl+s: back to login)"))
	}
	sb.WriteString("\n\n")

	for _, idx := range m.visible() {
		sb.WriteString("  ")
		sb.WriteString(m.inputs[idx].View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("  enter: submit"))
	return sb.String()
}
