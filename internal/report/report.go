package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const (
	upcomingWindow = 7 * 24 * time.Hour
	uncategorized  = "Uncategorized"
)

type Dashboard struct {
	GamesThisMonth int             `json:"gamesThisMonth"`
	NeedUpdate     int             `json:"needUpdate"`
	Unpaid         int             `json:"unpaid"`
	ExpensesTotal  decimal.Decimal `json:"expensesTotal"`
	Upcoming       []ledger.Game   `json:"upcoming"`
}

// NewDashboard summarises st as of now. Upcoming holds the games dated from
// today through the next seven days.
func NewDashboard(st ledger.State, now time.Time) Dashboard {
	month := now.Format("2006-01")
	today := now.Format(time.DateOnly)
	horizon := now.Add(upcomingWindow).Format(time.DateOnly)

	d := Dashboard{
		ExpensesTotal: decimal.Zero,
		Upcoming:      []ledger.Game{},
	}

	for _, g := range st.Games {
		if len(g.Date) >= len(month) && g.Date[:len(month)] == month {
			d.GamesThisMonth++
		}

		if !g.Updated {
			d.NeedUpdate++
		}

		if !g.Paid {
			d.Unpaid++
		}

		if g.Date >= today && g.Date <= horizon {
			d.Upcoming = append(d.Upcoming, g)
		}
	}

	for _, e := range st.Expenses {
		d.ExpensesTotal = d.ExpensesTotal.Add(e.Amount)
	}

	ledger.SortGames(d.Upcoming)

	return d
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type Summary struct {
	Income       decimal.Decimal `json:"income"`
	Expenses     decimal.Decimal `json:"expenses"`
	Net          decimal.Decimal `json:"net"`
	ByCategory   []CategoryTotal `json:"byCategory"`
	TotalMiles   decimal.Decimal `json:"totalMiles"`
	AverageMiles decimal.Decimal `json:"averageMiles"`
	MileageTotal decimal.Decimal `json:"mileageTotal"`
	Trips        int             `json:"trips"`
}

// NewSummary totals income, expenses and mileage over the whole table set.
func NewSummary(st ledger.State) Summary {
	s := Summary{
		Income:       decimal.Zero,
		Expenses:     decimal.Zero,
		TotalMiles:   decimal.Zero,
		AverageMiles: decimal.Zero,
		MileageTotal: decimal.Zero,
		ByCategory:   []CategoryTotal{},
		Trips:        len(st.Mileage),
	}

	for _, g := range st.Games {
		s.Income = s.Income.Add(g.Pay)
	}

	byCategory := map[string]decimal.Decimal{}

	for _, e := range st.Expenses {
		s.Expenses = s.Expenses.Add(e.Amount)

		cat := cmp.Or(e.Category, uncategorized)
		byCategory[cat] = byCategory[cat].Add(e.Amount)
	}

	for cat, total := range byCategory {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: cat, Total: total})
	}

	slices.SortFunc(s.ByCategory, func(a, b CategoryTotal) int {
		return cmp.Compare(a.Category, b.Category)
	})

	for _, m := range st.Mileage {
		s.TotalMiles = s.TotalMiles.Add(m.Miles)

		if m.Total != nil {
			s.MileageTotal = s.MileageTotal.Add(*m.Total)
		}
	}

	if s.Trips > 0 {
		s.AverageMiles = s.TotalMiles.Div(decimal.NewFromInt(int64(s.Trips))).Round(1)
	}

	s.Net = s.Income.Sub(s.Expenses)

	return s
}
