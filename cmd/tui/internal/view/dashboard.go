package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/report"
)

var (
	cardStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).MarginTop(1)
)

type DashboardModel struct {
	CommonModel
	store *ledger.Store
	now   func() time.Time

	dashboard report.Dashboard
	summary   report.Summary
}

func NewDashboardModel(store *ledger.Store) DashboardModel {
	m := DashboardModel{store: store, now: time.Now}
	m.reload()

	return m
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DataChangedMsg:
		m.reload()
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.reload()
		}
	}

	return m, nil
}

func (m *DashboardModel) reload() {
	st := m.store.State()
	m.dashboard = report.NewDashboard(st, m.now())
	m.summary = report.NewSummary(st)
}

func card(label, value string) string {
	return cardStyle.Render(label + "\n" + cardValueStyle.Render(value))
}

func (m DashboardModel) View() string {
	d, s := m.dashboard, m.summary

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Games this month", fmt.Sprint(d.GamesThisMonth)),
		card("Need update", fmt.Sprint(d.NeedUpdate)),
		card("Unpaid", fmt.Sprint(d.Unpaid)),
		card("Expenses", FormatMoney(d.ExpensesTotal)),
	)

	var b strings.Builder

	b.WriteString(sectionStyle.Render("Upcoming (next 7 days)"))
	b.WriteString("\n")

	if len(d.Upcoming) == 0 {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("No games scheduled."))
		b.WriteString("\n")
	}

	for _, g := range d.Upcoming {
		fmt.Fprintf(&b, "  %s %s  %s v %s  %s\n", g.Date, g.Time, g.Home, g.Away, FormatMoney(g.Pay))
	}

	b.WriteString(sectionStyle.Render("Totals"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Income   %s\n", FormatMoney(s.Income))
	fmt.Fprintf(&b, "  Expenses %s\n", FormatMoney(s.Expenses))

	net := FormatMoney(s.Net)
	if s.Net.IsNegative() {
		net = errorStyle(net)
	} else {
		net = successStyle(net)
	}

	fmt.Fprintf(&b, "  Net      %s\n", net)

	for _, c := range s.ByCategory {
		fmt.Fprintf(&b, "    %-16s %s\n", c.Category, FormatMoney(c.Total))
	}

	b.WriteString(sectionStyle.Render("Mileage"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d trips, %s miles (avg %s), %s\n",
		s.Trips, s.TotalMiles.String(), s.AverageMiles.String(), FormatMoney(s.MileageTotal))

	return lipgloss.NewStyle().Padding(1).Render(cards + "\n" + b.String())
}
