package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/refassist/internal/auth"
	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
)

const syncTimeout = 30 * time.Second

type syncState int

const (
	syncStateIdle syncState = iota
	syncStateWorking
	syncStateConfirmClear
)

// ClearFunc wipes all of the user's data.
type ClearFunc func(ctx context.Context) error

type SyncModel struct {
	CommonModel
	svc      *cloudsync.Service
	session  *auth.Session
	clearAll ClearFunc

	state   syncState
	status  cloudsync.Status
	spinner spinner.Model
	form    *huh.Form
	confirm *bool
	message string
}

// NewSyncModel shows cloud sync. svc and session are nil when sync is
// disabled; clearing then only wipes local data.
func NewSyncModel(svc *cloudsync.Service, session *auth.Session, clearAll ClearFunc) SyncModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := SyncModel{
		svc:      svc,
		session:  session,
		clearAll: clearAll,
		spinner:  s,
	}

	if svc != nil {
		m.status = svc.Status()
	}

	return m
}

func (m SyncModel) Title() string { return "Cloud Sync" }

func (m SyncModel) ShortHelp() string {
	switch m.state {
	case syncStateConfirmClear:
		return "Esc: cancel"
	case syncStateWorking:
		return "Working..."
	}

	if m.svc == nil {
		return "Esc: back | c: clear all data"
	}

	return "Esc: back | p: push | l: pull | o: sign out | c: clear all data"
}

func (m SyncModel) Init() tea.Cmd {
	return nil
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncStatusMsg:
		m.status = msg.Status
		return m, nil

	case syncDoneMsg:
		m.state = syncStateIdle
		m.message = msg.message

		if msg.err != nil {
			m.message = errorStyle(fmt.Sprintf("Error: %v", msg.err))
		}

		if m.svc != nil {
			m.status = m.svc.Status()
		}

		cmd := func() tea.Msg { return DataChangedMsg{} }

		return m, cmd

	case spinner.TickMsg:
		if m.state != syncStateWorking {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case syncStateConfirmClear:
		return m.updateConfirm(msg)
	case syncStateWorking:
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "c":
		return m.enterConfirm()
	}

	if m.svc == nil {
		return m, nil
	}

	switch keyMsg.String() {
	case "p":
		return m.run(m.pushCmd())
	case "l":
		return m.run(m.pullCmd())
	case "o":
		m.session.SignOut()
		m.message = "Signed out. Local data was kept."

		return m, nil
	}

	return m, nil
}

func (m SyncModel) run(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.state = syncStateWorking
	m.message = ""

	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m SyncModel) enterConfirm() (tea.Model, tea.Cmd) {
	m.confirm = new(false)

	desc := "Every game, expense and trip on this device is deleted."
	if m.signedIn() {
		desc = "Every game, expense and trip is deleted here and in the cloud."
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clear all data?").
				Description(desc).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = syncStateConfirmClear

	return m, m.form.Init()
}

func (m SyncModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = syncStateIdle
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil

	if !*m.confirm {
		m.state = syncStateIdle
		return m, nil
	}

	return m.run(m.clearCmd())
}

func (m SyncModel) signedIn() bool {
	if m.session == nil {
		return false
	}

	_, ok := m.session.CurrentUser()

	return ok
}

func (m SyncModel) View() string {
	if m.state == syncStateConfirmClear && m.form != nil {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	var b strings.Builder

	if m.svc == nil {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("Cloud sync is disabled. Set SYNC_ENABLED to turn it on."))
		b.WriteString("\n")
	} else {
		user := "not signed in"
		if id, ok := m.session.CurrentUser(); ok {
			user = activeStyle(id)
		}

		fmt.Fprintf(&b, "User:   %s\n", user)
		fmt.Fprintf(&b, "Status: %s\n", phaseLabel(m.status.Phase))

		if m.status.LastSyncedAt != nil {
			fmt.Fprintf(&b, "Last synced: %s\n", m.status.LastSyncedAt.Local().Format(time.DateTime))
		}

		if m.status.Revision != "" {
			fmt.Fprintf(&b, "Revision: %s\n", m.status.Revision)
		}

		if m.status.Error != "" {
			b.WriteString(errorStyle(m.status.Error))
			b.WriteString("\n")
		}
	}

	if m.state == syncStateWorking {
		fmt.Fprintf(&b, "\n%s Working...\n", m.spinner.View())
	}

	if m.message != "" {
		b.WriteString("\n" + m.message + "\n")
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func phaseLabel(p cloudsync.Phase) string {
	switch p {
	case cloudsync.PhaseSyncing:
		return activeStyle("syncing")
	case cloudsync.PhaseSynced:
		return successStyle("synced")
	case cloudsync.PhaseError:
		return errorStyle("error")
	default:
		return "idle"
	}
}

// Messages

type syncDoneMsg struct {
	message string
	err     error
}

func (m SyncModel) pushCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := m.svc.SyncToCloud(ctx); err != nil {
			return syncDoneMsg{err: err}
		}

		return syncDoneMsg{message: successStyle("Pushed to cloud.")}
	}
}

func (m SyncModel) pullCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		st, err := m.svc.LoadFromCloud(ctx)
		if err != nil {
			return syncDoneMsg{err: err}
		}

		return syncDoneMsg{message: successStyle(fmt.Sprintf("Loaded %d games from cloud.", len(st.Games)))}
	}
}

func (m SyncModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := m.clearAll(ctx); err != nil {
			return syncDoneMsg{err: err}
		}

		return syncDoneMsg{message: successStyle("All data cleared.")}
	}
}
