package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

type mileageState int

const (
	mileageStateBrowse mileageState = iota
	mileageStateAdd
)

type MileageModel struct {
	CommonModel
	store *ledger.Store

	state  mileageState
	table  table.Model
	trips  []ledger.Mileage
	form   *huh.Form
	input  *tripInput
	status string
}

type tripInput struct {
	date, from, to, miles, rate string
	roundTrip                   bool
	gameID                      int64
}

func NewMileageModel(store *ledger.Store) MileageModel {
	m := MileageModel{
		store: store,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "From", Width: 18},
			{Title: "To", Width: 18},
			{Title: "Miles", Width: 8},
			{Title: "Round", Width: 6},
			{Title: "Total", Width: 10},
			{Title: "Game", Width: 28},
		}),
	}

	m.reload()

	return m
}

func (m MileageModel) Title() string { return "Mileage" }

func (m MileageModel) ShortHelp() string {
	if m.state == mileageStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | x: delete"
}

func (m MileageModel) Init() tea.Cmd {
	return nil
}

func (m MileageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DataChangedMsg:
		m.reload()
		return m, nil

	case tripSavedMsg:
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

	if m.state == mileageStateAdd {
		return m.updateAdd(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAddMode()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m MileageModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.input = &tripInput{date: time.Now().Format(time.DateOnly)}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("date").Title("Date").Placeholder("YYYY-MM-DD").
				Value(&m.input.date).Validate(validDate),
			huh.NewInput().Key("from").Title("From").Value(&m.input.from),
			huh.NewInput().Key("to").Title("To").Value(&m.input.to),
			huh.NewInput().Key("miles").Title("Miles").
				Value(&m.input.miles).Validate(validAmount),
			huh.NewInput().Key("rate").Title("Rate per mile").Placeholder("optional").
				Value(&m.input.rate).Validate(validOptionalAmount),
			huh.NewConfirm().Key("roundTrip").Title("Round trip?").Value(&m.input.roundTrip),
			huh.NewSelect[int64]().Key("game").Title("Game").
				Options(gameOptions(m.store.State())...).
				Value(&m.input.gameID),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = mileageStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m MileageModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (m MileageModel) leaveForm() MileageModel {
	m.state = mileageStateBrowse
	m.form = nil
	m.input = nil
	m.table.Focus()

	return m
}

func (m MileageModel) View() string {
	var miles decimal.Decimal
	for _, t := range m.trips {
		miles = miles.Add(t.Miles)
	}

	header := fmt.Sprintf("%d trips | %s miles", len(m.trips), activeStyle(miles.String()))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableFrame(m.table),
	)

	if m.state == mileageStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render("Add Trip\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *MileageModel) reload() {
	st := m.store.State()
	ledger.SortMileage(st.Mileage)
	m.trips = st.Mileage

	rows := make([]table.Row, 0, len(m.trips))
	for _, t := range m.trips {
		total := ""
		if t.Total != nil {
			total = FormatMoney(*t.Total)
		}

		rows = append(rows, table.Row{
			t.Date,
			t.From,
			t.To,
			t.Miles.String(),
			check(t.RoundTrip),
			total,
			gameLabel(st, t.GameID),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func validOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	return validAmount(s)
}

// Messages

type tripSavedMsg struct {
	status string
	err    error
}

func (m MileageModel) addCmd(in tripInput) tea.Cmd {
	return func() tea.Msg {
		miles, err := decimal.NewFromString(strings.TrimSpace(in.miles))
		if err != nil {
			return tripSavedMsg{err: fmt.Errorf("miles: %w", err)}
		}

		trip := ledger.NewMileage{
			Date:      strings.TrimSpace(in.date),
			From:      strings.TrimSpace(in.from),
			To:        strings.TrimSpace(in.to),
			RoundTrip: in.roundTrip,
			Miles:     miles,
		}

		if raw := strings.TrimSpace(in.rate); raw != "" {
			rate, err := decimal.NewFromString(raw)
			if err != nil {
				return tripSavedMsg{err: fmt.Errorf("rate: %w", err)}
			}

			trip.Rate = &rate
		}

		if in.gameID != 0 {
			trip.GameID = ledger.Ref(in.gameID)
		}

		ctx, cancel := OpCtx()
		defer cancel()

		if _, err := m.store.AddMileage(ctx, trip); err != nil {
			return tripSavedMsg{err: err}
		}

		return tripSavedMsg{status: fmt.Sprintf("Added %s mile trip.", miles.String())}
	}
}

func (m MileageModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.trips) {
		return nil
	}

	t := m.trips[idx]

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := m.store.DeleteMileage(ctx, t.ID); err != nil {
			return tripSavedMsg{err: err}
		}

		return tripSavedMsg{status: "Deleted trip."}
	}
}
