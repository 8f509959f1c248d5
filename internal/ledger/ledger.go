package ledger

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The persisted blob stores amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// BlobKey is the fixed key the table set is persisted under.
const BlobKey = "refAssistantData"

// Game is an officiated game.
type Game struct {
	ID              int64           `json:"id"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	League          string          `json:"league,omitempty"`
	Home            string          `json:"home,omitempty"`
	Away            string          `json:"away,omitempty"`
	Pay             decimal.Decimal `json:"pay"`
	Updated         bool            `json:"updated"`
	Paid            bool            `json:"paid"`
	CalendarEventID string          `json:"calendarEventId,omitempty"`
}

// Expense is a cost, optionally tied to the game it was incurred for.
type Expense struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	GameID      *int64          `json:"gameId"`
	Notes       string          `json:"notes,omitempty"`
	Receipt     string          `json:"receipt,omitempty"` // data URL
}

// Mileage is a trip, optionally tied to a game.
type Mileage struct {
	ID        int64            `json:"id"`
	Date      string           `json:"date"`
	From      string           `json:"from,omitempty"`
	To        string           `json:"to,omitempty"`
	RoundTrip bool             `json:"roundTrip,omitempty"`
	Miles     decimal.Decimal  `json:"miles"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	GameID    *int64           `json:"gameId"`
}

// State is the full table set. It is the unit of local persistence and of
// remote synchronisation.
type State struct {
	LastID   int64     `json:"lastId"`
	Games    []Game    `json:"games"`
	Expenses []Expense `json:"expenses"`
	Mileage  []Mileage `json:"mileage"`
}

// Empty returns the default shape: no records and a zero identity counter.
func Empty() State {
	return State{
		Games:    []Game{},
		Expenses: []Expense{},
		Mileage:  []Mileage{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		LastID:   s.LastID,
		Games:    make([]Game, len(s.Games)),
		Expenses: make([]Expense, len(s.Expenses)),
		Mileage:  make([]Mileage, len(s.Mileage)),
	}

	copy(out.Games, s.Games)

	for i, e := range s.Expenses {
		e.GameID = cloneRef(e.GameID)
		out.Expenses[i] = e
	}

	for i, m := range s.Mileage {
		m.GameID = cloneRef(m.GameID)
		m.Rate = cloneDecimal(m.Rate)
		m.Total = cloneDecimal(m.Total)
		out.Mileage[i] = m
	}

	return out
}

// Game returns the game with the given id.
func (s State) Game(id int64) (Game, bool) {
	for _, g := range s.Games {
		if g.ID == id {
			return g, true
		}
	}

	return Game{}, false
}

func (s State) hasGame(id int64) bool {
	_, ok := s.Game(id)
	return ok
}

// maxID is the highest identity used in any table.
func (s State) maxID() int64 {
	var top int64

	for _, g := range s.Games {
		top = max(top, g.ID)
	}

	for _, e := range s.Expenses {
		top = max(top, e.ID)
	}

	for _, m := range s.Mileage {
		top = max(top, m.ID)
	}

	return top
}

// normalize repairs shapes written by older versions: missing tables become
// empty and the counter is raised above every identity in use.
func (s *State) normalize() {
	if s.Games == nil {
		s.Games = []Game{}
	}

	if s.Expenses == nil {
		s.Expenses = []Expense{}
	}

	if s.Mileage == nil {
		s.Mileage = []Mileage{}
	}

	s.LastID = max(s.LastID, s.maxID())
}

// Normalized returns a copy of s with missing tables filled in and the
// identity counter raised above every identity in use.
func (s State) Normalized() State {
	out := s.Clone()
	out.normalize()

	return out
}

// NewGame holds the fields of a game to be added.
type NewGame struct {
	Date            string
	Time            string
	League          string
	Home            string
	Away            string
	Pay             decimal.Decimal
	Updated         bool
	Paid            bool
	CalendarEventID string
}

func (n NewGame) record(id int64) Game {
	return Game{
		ID:              id,
		Date:            n.Date,
		Time:            n.Time,
		League:          n.League,
		Home:            n.Home,
		Away:            n.Away,
		Pay:             n.Pay,
		Updated:         n.Updated,
		Paid:            n.Paid,
		CalendarEventID: n.CalendarEventID,
	}
}

// NewExpense holds the fields of an expense to be added.
type NewExpense struct {
	Date        string
	Category    string
	Description string
	Amount      decimal.Decimal
	GameID      *int64
	Notes       string
	Receipt     string
}

func (n NewExpense) record(id int64) Expense {
	return Expense{
		ID:          id,
		Date:        n.Date,
		Category:    n.Category,
		Description: n.Description,
		Amount:      n.Amount,
		GameID:      cloneRef(n.GameID),
		Notes:       n.Notes,
		Receipt:     n.Receipt,
	}
}

// NewMileage holds the fields of a trip to be added. Total is derived from
// Miles and Rate when a rate is given.
type NewMileage struct {
	Date      string
	From      string
	To        string
	RoundTrip bool
	Miles     decimal.Decimal
	Rate      *decimal.Decimal
	GameID    *int64
}

func (n NewMileage) record(id int64) Mileage {
	m := Mileage{
		ID:        id,
		Date:      n.Date,
		From:      n.From,
		To:        n.To,
		RoundTrip: n.RoundTrip,
		Miles:     n.Miles,
		Rate:      cloneDecimal(n.Rate),
		GameID:    cloneRef(n.GameID),
	}

	if n.Rate != nil {
		total := n.Miles.Mul(*n.Rate).Round(2)
		m.Total = &total
	}

	return m
}

// GameUpdate is a partial update. Fields that are not set are left as they
// are; a set field replaces the stored value, so setting a text field to ""
// clears it.
type GameUpdate struct {
	Date            Optional[string]          `json:"date,omitzero"`
	Time            Optional[string]          `json:"time,omitzero"`
	League          Optional[string]          `json:"league,omitzero"`
	Home            Optional[string]          `json:"home,omitzero"`
	Away            Optional[string]          `json:"away,omitzero"`
	Pay             Optional[decimal.Decimal] `json:"pay,omitzero"`
	Updated         Optional[bool]            `json:"updated,omitzero"`
	Paid            Optional[bool]            `json:"paid,omitzero"`
	CalendarEventID Optional[string]          `json:"calendarEventId,omitzero"`
}

// IsZero reports whether no field is set.
func (u GameUpdate) IsZero() bool {
	return !u.Date.IsSet() && !u.Time.IsSet() && !u.League.IsSet() &&
		!u.Home.IsSet() && !u.Away.IsSet() && !u.Pay.IsSet() &&
		!u.Updated.IsSet() && !u.Paid.IsSet() && !u.CalendarEventID.IsSet()
}

// Apply returns a copy of g with the set fields of u merged in. g is not
// modified.
func (g Game) Apply(u GameUpdate) Game {
	out := g
	out.Date = u.Date.Or(g.Date)
	out.Time = u.Time.Or(g.Time)
	out.League = u.League.Or(g.League)
	out.Home = u.Home.Or(g.Home)
	out.Away = u.Away.Or(g.Away)
	out.Pay = u.Pay.Or(g.Pay)
	out.Updated = u.Updated.Or(g.Updated)
	out.Paid = u.Paid.Or(g.Paid)
	out.CalendarEventID = u.CalendarEventID.Or(g.CalendarEventID)

	return out
}

// Ref returns a back-reference to the game with the given id.
func Ref(id int64) *int64 {
	return &id
}

func cloneRef(p *int64) *int64 {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func cloneDecimal(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
