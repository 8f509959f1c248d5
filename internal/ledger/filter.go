package ledger

import (
	"cmp"
	"slices"
)

// GameFilter narrows a game listing. Nil flags and empty dates match
// everything; From and To are inclusive YYYY-MM-DD bounds.
type GameFilter struct {
	Updated *bool
	Paid    *bool
	From    string
	To      string
}

func (f GameFilter) match(g Game) bool {
	if f.Updated != nil && g.Updated != *f.Updated {
		return false
	}

	if f.Paid != nil && g.Paid != *f.Paid {
		return false
	}

	if f.From != "" && g.Date < f.From {
		return false
	}

	if f.To != "" && g.Date > f.To {
		return false
	}

	return true
}

// FilterGames returns the matching games ordered by date and time.
func FilterGames(games []Game, f GameFilter) []Game {
	out := make([]Game, 0, len(games))

	for _, g := range games {
		if f.match(g) {
			out = append(out, g)
		}
	}

	SortGames(out)

	return out
}

// SortGames orders games by date, then time, then id.
func SortGames(games []Game) {
	slices.SortStableFunc(games, func(a, b Game) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.Time, b.Time),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// SortExpenses orders expenses by date, keeping insertion order for ties.
func SortExpenses(expenses []Expense) {
	slices.SortStableFunc(expenses, func(a, b Expense) int {
		return cmp.Compare(a.Date, b.Date)
	})
}

// SortMileage orders trips by date, keeping insertion order for ties.
func SortMileage(trips []Mileage) {
	slices.SortStableFunc(trips, func(a, b Mileage) int {
		return cmp.Compare(a.Date, b.Date)
	})
}
