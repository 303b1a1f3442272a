// Package tui paints the screen store in the terminal and turns key
// presses into controller calls.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/screen"
	"github.com/krishichetan/kchetan/internal/view"
)

// Driver is the part of the controller the terminal drives.
type Driver interface {
	ActivateModule(id string) error
	RefreshActive() error
	SetLanguage(code string) error
	Language() models.Language
	SendChat(ctx context.Context, text string) (*models.ChatReply, error)
	Diagnose(ctx context.Context, img api.Image) (*models.Diagnosis, error)
}

// Screen is the painted state the terminal reads.
type Screen interface {
	Snapshot() screen.Snapshot
	Subscribe() (<-chan struct{}, func())
}

type mode int

const (
	modeBrowse mode = iota
	modeChat
	modeDiagnose
)

// changedMsg reports that the screen store was repainted.
type changedMsg struct{}

// doneMsg carries the outcome of a background action.
type doneMsg struct {
	action string
	err    error
}

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	driver  Driver
	screen  Screen
	changes <-chan struct{}
	session models.Session

	snap     screen.Snapshot
	width    int
	height   int
	mode     mode
	input    textinput.Model
	status   string
	quitting bool
}

// NewModel returns a Model for an initialized controller. changes comes
// from screen.Subscribe and is owned by the caller.
func NewModel(ctx context.Context, d Driver, s Screen, changes <-chan struct{}, session models.Session) Model {
	in := textinput.New()
	in.CharLimit = 500
	return Model{
		ctx:     ctx,
		driver:  d,
		screen:  s,
		changes: changes,
		session: session,
		snap:    s.Snapshot(),
		input:   in,
		width:   100,
		height:  30,
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// Init starts listening for repaints.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case changedMsg:
		m.snap = m.screen.Snapshot()
		return m, waitForChange(m.changes)

	case doneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = msg.action + " done"
		}
		m.snap = m.screen.Snapshot()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeChat, modeDiagnose:
			return m.updateInput(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

// visibleModules lists the navigation entries the role can see.
func (m Model) visibleModules() []models.Module {
	var out []models.Module
	for _, it := range m.snap.Nav {
		if !it.Hidden {
			out = append(out, it.Module)
		}
	}
	return out
}

func (m Model) active() models.Module {
	if a := m.snap.Active(); len(a) == 1 {
		return a[0]
	}
	return ""
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "1", "2", "3", "4", "5":
		mods := m.visibleModules()
		i := int(key[0] - '1')
		if i < len(mods) {
			m.report(m.driver.ActivateModule(string(mods[i])))
		}

	case "tab":
		mods := m.visibleModules()
		if len(mods) > 0 {
			next := mods[0]
			for i, mod := range mods {
				if mod == m.active() {
					next = mods[(i+1)%len(mods)]
				}
			}
			m.report(m.driver.ActivateModule(string(next)))
		}

	case "l":
		m.report(m.driver.SetLanguage(string(nextLanguage(m.driver.Language()))))

	case "r":
		m.report(m.driver.RefreshActive())

	case "c":
		m.mode = modeChat
		m.input.Placeholder = "ask the assistant..."
		m.input.SetValue("")
		m.input.Focus()

	case "d":
		m.mode = modeDiagnose
		m.input.Placeholder = "path to a leaf photo"
		m.input.SetValue("")
		m.input.Focus()
	}
	m.snap = m.screen.Snapshot()
	return m, nil
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = modeBrowse
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		submitted := m.mode
		m.input.Blur()
		m.input.SetValue("")
		m.mode = modeBrowse
		if value == "" {
			return m, nil
		}
		if submitted == modeChat {
			return m, m.chat(value)
		}
		return m, m.diagnose(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) chat(text string) tea.Cmd {
	ctx, d := m.ctx, m.driver
	return func() tea.Msg {
		_, err := d.SendChat(ctx, text)
		return doneMsg{action: "chat", err: err}
	}
}

func (m Model) diagnose(path string) tea.Cmd {
	ctx, d := m.ctx, m.driver
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return doneMsg{action: "diagnose", err: err}
		}
		_, err = d.Diagnose(ctx, api.Image{Name: filepath.Base(path), Data: data})
		return doneMsg{action: "diagnose", err: err}
	}
}

func nextLanguage(cur models.Language) models.Language {
	for i, l := range models.Languages {
		if l == cur {
			return models.Languages[(i+1)%len(models.Languages)]
		}
	}
	return models.DefaultLanguage
}

// View renders the screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	title := titleStyle.Render("Krishi-Chetan")
	info := dimStyle.Render(fmt.Sprintf("  %s (%s)  lang %s  voice %s",
		m.session.Name, m.session.Role, m.driver.Language(), m.snap.VoiceTag))
	b.WriteString(title + info + "\n")
	b.WriteString(m.renderTabs() + "\n\n")

	active := m.active()
	if active == models.ModuleSettings {
		b.WriteString(m.renderSettings() + "\n")
	}
	for _, s := range sectionsFor(active, m.session.Role) {
		p, ok := m.snap.Regions[s.region]
		if !ok {
			continue
		}
		b.WriteString(sectionStyle.Render(s.title) + "\n")
		b.WriteString(renderPanel(p, m.width) + "\n\n")
	}

	if chat, ok := m.snap.Regions[view.RegionChat]; ok {
		b.WriteString(sectionStyle.Render("Assistant") + "\n")
		b.WriteString(renderPanel(chat, m.width) + "\n\n")
	}

	switch m.mode {
	case modeChat:
		b.WriteString(statusBarStyle.Render("Chat: ") + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("  Enter: send  Esc: cancel"))
	case modeDiagnose:
		b.WriteString(statusBarStyle.Render("Image: ") + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("  Enter: diagnose  Esc: cancel"))
	default:
		if m.status != "" {
			b.WriteString(statusBarStyle.Render(m.status) + "\n")
		}
		b.WriteString(helpStyle.Render("  1-5/Tab: module  l: language  r: refresh  c: chat  d: diagnose  q: quit"))
	}
	return b.String()
}

func (m Model) renderTabs() string {
	var tabs []string
	n := 0
	for _, it := range m.snap.Nav {
		if it.Hidden {
			continue
		}
		n++
		label := fmt.Sprintf("%d %s", n, m.snap.Label(it.LabelKey))
		if it.Active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

func (m Model) renderSettings() string {
	lines := []string{
		fmt.Sprintf("  Phone: %s", m.session.Phone),
		fmt.Sprintf("  Role: %s", m.session.Role),
		fmt.Sprintf("  Language: %s (voice %s)", m.driver.Language(), m.snap.VoiceTag),
	}
	return sectionStyle.Render("Settings") + "\n" + strings.Join(lines, "\n")
}
