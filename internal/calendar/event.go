package calendar

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const (
	defaultStart  = "12:00"
	eventDuration = 2 * time.Hour
)

type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Event is a calendar entry for one game.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Reminders   []Reminder
}

// DefaultReminders are an email a day ahead and a popup an hour ahead.
var DefaultReminders = []Reminder{
	{Method: "email", Minutes: 24 * 60},
	{Method: "popup", Minutes: 60},
}

// BuildEvent describes g as a two hour event starting at the game time, or
// at noon when the game has no time, in loc.
func BuildEvent(g ledger.Game, loc *time.Location) (Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", g.Date+" "+cmp.Or(g.Time, defaultStart), loc)
	if err != nil {
		return Event{}, fmt.Errorf("game %d start: %w", g.ID, err)
	}

	summary := "Referee: " + cmp.Or(g.Home, "Game")
	if g.Away != "" {
		summary += " vs " + g.Away
	}

	var desc strings.Builder
	desc.WriteString("Referee Assignment\n\n")
	fmt.Fprintf(&desc, "Teams: %s vs %s\n", cmp.Or(g.Home, "Home"), cmp.Or(g.Away, "Away"))
	fmt.Fprintf(&desc, "Level: %s\n", cmp.Or(g.League, "N/A"))
	fmt.Fprintf(&desc, "Pay: $%s\n\n", g.Pay.StringFixed(2))
	desc.WriteString("Created by Ref Assistant")

	return Event{
		Summary:     summary,
		Description: desc.String(),
		Start:       start,
		End:         start.Add(eventDuration),
		Reminders:   DefaultReminders,
	}, nil
}
