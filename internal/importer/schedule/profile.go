package schedule

// Profile describes the column layout of a schedule export.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name       string
	DateCol    string
	TimeCol    string
	LeagueCol  string
	HomeCol    string
	AwayCol    string
	PayCol     string
	DateLayout string
	TimeLayout string
}

// requiredCols returns the column names that must be present for this
// profile to match. Only the date is mandatory per row, but a header must
// name the teams and the pay to be recognised.
func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.HomeCol, p.AwayCol, p.PayCol}
}

// profiles is the ordered list of layouts tried during auto-detection.
var profiles = []Profile{
	{
		Name:       "refassist",
		DateCol:    "Date",
		TimeCol:    "Time",
		LeagueCol:  "League",
		HomeCol:    "Home",
		AwayCol:    "Away",
		PayCol:     "Pay",
		DateLayout: "2006-01-02",
		TimeLayout: "15:04",
	},
	{
		Name:       "assignor",
		DateCol:    "Game Date",
		TimeCol:    "Start Time",
		LeagueCol:  "Level",
		HomeCol:    "Home Team",
		AwayCol:    "Away Team",
		PayCol:     "Fee",
		DateLayout: "01/02/2006",
		TimeLayout: "3:04 PM",
	},
}
