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

type expensesState int

const (
	expensesStateBrowse expensesState = iota
	expensesStateAdd
)

type ExpensesModel struct {
	CommonModel
	store *ledger.Store

	state    expensesState
	table    table.Model
	expenses []ledger.Expense
	form     *huh.Form
	input    *expenseInput
	status   string
}

type expenseInput struct {
	date, category, description, amount, notes string
	gameID                                     int64
}

func NewExpensesModel(store *ledger.Store) ExpensesModel {
	m := ExpensesModel{
		store: store,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Category", Width: 14},
			{Title: "Description", Width: 30},
			{Title: "Amount", Width: 10},
			{Title: "Game", Width: 28},
			{Title: "Receipt", Width: 8},
		}),
	}

	m.reload()

	return m
}

func (m ExpensesModel) Title() string { return "Expenses" }

func (m ExpensesModel) ShortHelp() string {
	if m.state == expensesStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add | x: delete"
}

func (m ExpensesModel) Init() tea.Cmd {
	return nil
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DataChangedMsg:
		m.reload()
		return m, nil

	case expenseSavedMsg:
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

	if m.state == expensesStateAdd {
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

func (m ExpensesModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.input = &expenseInput{date: time.Now().Format(time.DateOnly)}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("date").Title("Date").Placeholder("YYYY-MM-DD").
				Value(&m.input.date).Validate(validDate),
			huh.NewInput().Key("category").Title("Category").Placeholder("Travel, Gear, ...").
				Value(&m.input.category),
			huh.NewInput().Key("description").Title("Description").Value(&m.input.description),
			huh.NewInput().Key("amount").Title("Amount").
				Value(&m.input.amount).Validate(validAmount),
			huh.NewSelect[int64]().Key("game").Title("Game").
				Options(gameOptions(m.store.State())...).
				Value(&m.input.gameID),
			huh.NewText().Key("notes").Title("Notes").Value(&m.input.notes),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = expensesStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m ExpensesModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (m ExpensesModel) leaveForm() ExpensesModel {
	m.state = expensesStateBrowse
	m.form = nil
	m.input = nil
	m.table.Focus()

	return m
}

func (m ExpensesModel) View() string {
	var total decimal.Decimal
	for _, e := range m.expenses {
		total = total.Add(e.Amount)
	}

	header := fmt.Sprintf("%d expenses | Total: %s", len(m.expenses), activeStyle(FormatMoney(total)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableFrame(m.table),
	)

	if m.state == expensesStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render("Add Expense\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ExpensesModel) reload() {
	st := m.store.State()
	ledger.SortExpenses(st.Expenses)
	m.expenses = st.Expenses

	rows := make([]table.Row, 0, len(m.expenses))
	for _, e := range m.expenses {
		receipt := ""
		if e.Receipt != "" {
			receipt = "yes"
		}

		rows = append(rows, table.Row{
			e.Date,
			e.Category,
			e.Description,
			FormatMoney(e.Amount),
			gameLabel(st, e.GameID),
			receipt,
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// gameOptions offers every game plus "None", which selects zero.
func gameOptions(st ledger.State) []huh.Option[int64] {
	ledger.SortGames(st.Games)

	opts := []huh.Option[int64]{huh.NewOption("None", int64(0))}
	for _, g := range st.Games {
		opts = append(opts, huh.NewOption(gameLabel(st, ledger.Ref(g.ID)), g.ID))
	}

	return opts
}

func gameLabel(st ledger.State, ref *int64) string {
	if ref == nil {
		return ""
	}

	g, ok := st.Game(*ref)
	if !ok {
		return ""
	}

	label := g.Date
	if g.Home != "" || g.Away != "" {
		label += " " + g.Home + " v " + g.Away
	}

	return label
}

// Messages

type expenseSavedMsg struct {
	status string
	err    error
}

func (m ExpensesModel) addCmd(in expenseInput) tea.Cmd {
	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(in.amount))
		if err != nil {
			return expenseSavedMsg{err: fmt.Errorf("amount: %w", err)}
		}

		var gameID *int64
		if in.gameID != 0 {
			gameID = ledger.Ref(in.gameID)
		}

		ctx, cancel := OpCtx()
		defer cancel()

		e, err := m.store.AddExpense(ctx, ledger.NewExpense{
			Date:        strings.TrimSpace(in.date),
			Category:    strings.TrimSpace(in.category),
			Description: strings.TrimSpace(in.description),
			Amount:      amount,
			GameID:      gameID,
			Notes:       strings.TrimSpace(in.notes),
		})
		if err != nil {
			return expenseSavedMsg{err: err}
		}

		return expenseSavedMsg{status: fmt.Sprintf("Added %s expense.", FormatMoney(e.Amount))}
	}
}

func (m ExpensesModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.expenses) {
		return nil
	}

	e := m.expenses[idx]

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := m.store.DeleteExpense(ctx, e.ID); err != nil {
			return expenseSavedMsg{err: err}
		}

		return expenseSavedMsg{status: "Deleted expense."}
	}
}
