package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"formpilot/internal/api"
)

// profileField binds a label to its slot in the profile struct.
type profileField struct {
	label string
	get   func(*api.Profile) string
	set   func(*api.Profile, string)
}

var profileFields = []profileField{
	{"Full name", func(p *api.Profile) string { return p.FullName }, func(p *api.Profile, v string) { p.FullName = v }},
	{"Register number", func(p *api.Profile) string { return p.RegisterNumber }, func(p *api.Profile, v string) { p.RegisterNumber = v }},
	{"Department", func(p *api.Profile) string { return p.Department }, func(p *api.Profile, v string) { p.Department = v }},
	{"Year", func(p *api.Profile) string { return p.Year }, func(p *api.Profile, v string) { p.Year = v }},
	{"Email", func(p *api.Profile) string { return p.Email }, func(p *api.Profile, v string) { p.Email = v }},
	{"Phone", func(p *api.Profile) string { return p.Phone }, func(p *api.Profile, v string) { p.Phone = v }},
	{"Gender", func(p *api.Profile) string { return p.Gender }, func(p *api.Profile, v string) { p.Gender = v }},
	{"College", func(p *api.Profile) string { return p.CollegeName }, func(p *api.Profile, v string) { p.CollegeName = v }},
	{"Address", func(p *api.Profile) string { return p.Address }, func(p *api.Profile, v string) { p.Address = v }},
	{"Skills", func(p *api.Profile) string { return p.Skills }, func(p *api.Profile, v string) { p.Skills = v }},
	{"Interests", func(p *api.Profile) string { return p.Interests }, func(p *api.Profile, v string) { p.Interests = v }},
	{"Bio", func(p *api.Profile) string { return p.Bio }, func(p *api.Profile, v string) { p.Bio = v }},
}

// ProfilePageModel edits the stored answer profile in place.
type ProfilePageModel struct {
	styles Styles

	inputs []textinput.Model
	focus  int

	// existing is nil until the first load; it decides create vs update
	// and preserves fields the form does not cover (extra fields, ids).
	existing *api.Profile
	loaded   bool

	width  int
	height int
}

// NewProfilePageModel creates the profile page.
func NewProfilePageModel(styles Styles) ProfilePageModel {
	inputs := make([]textinput.Model, len(profileFields))
	for i, f := range profileFields {
		in := textinput.New()
		in.Placeholder = f.label
		in.CharLimit = 256
		in.Width = 40
		inputs[i] = in
	}
	inputs[0].Focus()

	return ProfilePageModel{
		styles: styles,
		inputs: inputs,
	}
}

// SetSize records the available area.
func (m *ProfilePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateContent fills the form from the stored profile. A nil profile means
// none exists yet; the form stays blank and saving creates one.
func (m *ProfilePageModel) UpdateContent(p *api.Profile) {
	m.existing = p
	m.loaded = true
	if p == nil {
		return
	}
	for i, f := range profileFields {
		m.inputs[i].SetValue(f.get(p))
	}
}

func (m *ProfilePageModel) setFocus(idx int) {
	m.inputs[m.focus].Blur()
	m.focus = idx
	m.inputs[m.focus].Focus()
}

// Update handles field navigation and saving.
func (m ProfilePageModel) Update(msg tea.Msg, app *App) (ProfilePageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "down", "enter":
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, nil
		case "up":
			m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "ctrl+s":
			return m, m.save(app)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *ProfilePageModel) save(app *App) tea.Cmd {
	var p api.Profile
	creating := m.existing == nil
	if !creating {
		p = *m.existing
	}
	for i, f := range profileFields {
		f.set(&p, m.inputs[i].Value())
	}
	return app.saveProfile(p, creating)
}

func (m ProfilePageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Bold.Render("Profile"))
	if m.loaded && m.existing == nil {
		sb.WriteString(m.styles.Muted.Render("  (none yet — fill in and save)"))
	}
	sb.WriteString("\n\n")

	for i, f := range profileFields {
		label := m.styles.Muted.Render(padLabel(f.label, 16))
		sb.WriteString("  ")
		sb.WriteString(label)
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("  up/down: move • ctrl+s: save"))
	return sb.String()
}

func padLabel(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
