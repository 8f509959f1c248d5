package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// Calendar mirrors game changes to a calendar.
type Calendar interface {
	CreateForGame(ctx context.Context, g ledger.Game) (string, error)
	UpdateForGame(ctx context.Context, g ledger.Game) error
	DeleteForGame(ctx context.Context, g ledger.Game) error
}

type gamesState int

const (
	gamesStateBrowse gamesState = iota
	gamesStateAdd
)

type GamesModel struct {
	CommonModel
	store    *ledger.Store
	calendar Calendar

	state gamesState
	table table.Model
	games []ledger.Game
	form  *huh.Form
	input *gameInput

	// Filter cycling
	paidFilterIdx    int
	updatedFilterIdx int
	timeframe        Timeframe

	status string
}

type gameInput struct {
	date, time, league, home, away, pay string
}

// NewGamesModel lists games. calendar may be nil.
func NewGamesModel(store *ledger.Store, calendar Calendar) GamesModel {
	m := GamesModel{
		store:    store,
		calendar: calendar,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Time", Width: 6},
			{Title: "League", Width: 12},
			{Title: "Home", Width: 18},
			{Title: "Away", Width: 18},
			{Title: "Pay", Width: 10},
			{Title: "Updated", Width: 8},
			{Title: "Paid", Width: 6},
		}),
	}

	m.reload()

	return m
}

func (m GamesModel) Title() string { return "Games" }

func (m GamesModel) ShortHelp() string {
	if m.state == gamesStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | p: paid | u: updated | x: delete | f: paid filter | n: update filter | d: dates"
}

func (m GamesModel) Init() tea.Cmd {
	return nil
}

func (m GamesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DataChangedMsg:
		m.reload()
		return m, nil

	case gameSavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Error: %v", msg.err))
		}

		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case gamesStateBrowse:
		return m.updateBrowse(msg)
	case gamesStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m GamesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAddMode()
		case "p":
			return m, m.toggleCmd(func(g ledger.Game) ledger.GameUpdate {
				return ledger.GameUpdate{Paid: ledger.Some(!g.Paid)}
			})
		case "u":
			return m, m.toggleCmd(func(g ledger.Game) ledger.GameUpdate {
				return ledger.GameUpdate{Updated: ledger.Some(!g.Updated)}
			})
		case "x":
			return m, m.deleteCmd()
		case "f":
			m.paidFilterIdx = (m.paidFilterIdx + 1) % 3
			m.reload()

			return m, nil
		case "n":
			m.updatedFilterIdx = (m.updatedFilterIdx + 1) % 2
			m.reload()

			return m, nil
		case "d":
			m.timeframe = m.timeframe.Next()
			m.reload()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m GamesModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.input = &gameInput{date: time.Now().Format(time.DateOnly), pay: "0"}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("date").Title("Date").Placeholder("YYYY-MM-DD").
				Value(&m.input.date).Validate(validDate),
			huh.NewInput().Key("time").Title("Time").Placeholder("HH:MM").
				Value(&m.input.time).Validate(validTime),
			huh.NewInput().Key("league").Title("League").Value(&m.input.league),
			huh.NewInput().Key("home").Title("Home").Value(&m.input.home),
			huh.NewInput().Key("away").Title("Away").Value(&m.input.away),
			huh.NewInput().Key("pay").Title("Pay").
				Value(&m.input.pay).Validate(validAmount),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = gamesStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m GamesModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.leaveForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	in := *m.input

	return m.leaveForm(), m.addCmd(in)
}

func (m GamesModel) leaveForm() GamesModel {
	m.state = gamesStateBrowse
	m.form = nil
	m.input = nil
	m.table.Focus()

	return m
}

func (m GamesModel) View() string {
	header := fmt.Sprintf(
		"Filter: [f] Paid: %s | [n] Updated: %s | [d] Dates: %s",
		activeStyle([]string{"All", "Unpaid", "Paid"}[m.paidFilterIdx]),
		activeStyle([]string{"All", "Needs Update"}[m.updatedFilterIdx]),
		activeStyle(m.timeframe.String()),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableFrame(m.table),
	)

	if m.state == gamesStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Add Game\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m GamesModel) filter(now time.Time) ledger.GameFilter {
	var f ledger.GameFilter

	switch m.paidFilterIdx {
	case 1:
		f.Paid = new(false)
	case 2:
		f.Paid = new(true)
	}

	if m.updatedFilterIdx == 1 {
		f.Updated = new(false)
	}

	f.From, f.To = m.timeframe.Range(now)

	return f
}

func (m *GamesModel) reload() {
	m.games = ledger.FilterGames(m.store.State().Games, m.filter(time.Now()))

	rows := make([]table.Row, 0, len(m.games))
	for _, g := range m.games {
		rows = append(rows, table.Row{
			g.Date,
			g.Time,
			g.League,
			g.Home,
			g.Away,
			FormatMoney(g.Pay),
			check(g.Updated),
			check(g.Paid),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m GamesModel) selected() (ledger.Game, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.games) {
		return ledger.Game{}, false
	}

	return m.games[idx], true
}

func check(b bool) string {
	if b {
		return "✓"
	}

	return ""
}

// Messages

type gameSavedMsg struct {
	status string
	err    error
}

func (m GamesModel) addCmd(in gameInput) tea.Cmd {
	return func() tea.Msg {
		pay, err := decimal.NewFromString(strings.TrimSpace(in.pay))
		if err != nil {
			return gameSavedMsg{err: fmt.Errorf("pay: %w", err)}
		}

		ctx, cancel := OpCtx()
		defer cancel()

		g, err := m.store.AddGame(ctx, ledger.NewGame{
			Date:   strings.TrimSpace(in.date),
			Time:   strings.TrimSpace(in.time),
			League: strings.TrimSpace(in.league),
			Home:   strings.TrimSpace(in.home),
			Away:   strings.TrimSpace(in.away),
			Pay:    pay,
		})
		if err != nil {
			return gameSavedMsg{err: err}
		}

		if m.calendar != nil {
			if _, err := m.calendar.CreateForGame(ctx, g); err != nil {
				slog.Warn("failed to create calendar event", "game_id", g.ID, "error", err)
			}
		}

		return gameSavedMsg{status: fmt.Sprintf("Added game on %s.", g.Date)}
	}
}

func (m GamesModel) toggleCmd(update func(ledger.Game) ledger.GameUpdate) tea.Cmd {
	g, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		updated, found, err := m.store.UpdateGame(ctx, g.ID, update(g))
		if err != nil {
			return gameSavedMsg{err: err}
		}

		if found && m.calendar != nil && updated.CalendarEventID != "" {
			if err := m.calendar.UpdateForGame(ctx, updated); err != nil {
				slog.Warn("failed to update calendar event", "game_id", g.ID, "error", err)
			}
		}

		return gameSavedMsg{}
	}
}

func (m GamesModel) deleteCmd() tea.Cmd {
	g, ok := m.selected()
	if !ok {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := m.store.DeleteGame(ctx, g.ID); err != nil {
			return gameSavedMsg{err: err}
		}

		if m.calendar != nil {
			if err := m.calendar.DeleteForGame(ctx, g); err != nil {
				slog.Warn("failed to delete calendar event", "game_id", g.ID, "error", err)
			}
		}

		return gameSavedMsg{status: fmt.Sprintf("Deleted game on %s.", g.Date)}
	}
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}

	return nil
}

func validTime(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("use HH:MM")
	}

	return nil
}

func validAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}

	return nil
}
