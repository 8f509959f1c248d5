package schedule_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/refassist/internal/importer/schedule"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

func TestParser_RefassistLayout(t *testing.T) {
	csv := `Spring schedule
Date,Time,League,Home,Away,Pay
2024-05-01,18:30,U14,Rovers,United,45
2024-05-02,,Adult,"Town, FC",City,$60.00

Total,,,,,105
`

	games, err := schedule.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "2024-05-01", games[0].Date)
	assert.Equal(t, "18:30", games[0].Time)
	assert.Equal(t, "U14", games[0].League)
	assert.Equal(t, "Rovers", games[0].Home)
	assert.True(t, decimal.NewFromInt(45).Equal(games[0].Pay))

	assert.Empty(t, games[1].Time)
	assert.Equal(t, "Town, FC", games[1].Home)
	assert.True(t, decimal.NewFromInt(60).Equal(games[1].Pay))
}

func TestParser_ReportsRowNumber(t *testing.T) {
	csv := "Date,Home,Away,Pay\n2024-05-01,A,B,10\n2024-05-02,A,B,ten\n"

	_, err := schedule.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParser_AssignorLayoutSemicolons(t *testing.T) {
	csv := "Game Date;Start Time;Level;Home Team;Away Team;Fee\n" +
		"05/04/2024;7:15 PM;Varsity;Rovers;United;45,50\n"

	games, err := schedule.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.Equal(t, ledger.NewGame{
		Date:   "2024-05-04",
		Time:   "19:15",
		League: "Varsity",
		Home:   "Rovers",
		Away:   "United",
		Pay:    games[0].Pay,
	}, games[0])
	assert.Equal(t, "45.5", games[0].Pay.String())
}

func TestParser_Latin1Encoding(t *testing.T) {
	text := "Date;Home;Away;Pay\n2024-05-01;Atlético;Müller FC;40\n"

	latin1, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)

	games, err := schedule.NewParser().Parse(strings.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Atlético", games[0].Home)
	assert.Equal(t, "Müller FC", games[0].Away)
}

func TestParser_CaseInsensitiveHeader(t *testing.T) {
	csv := "date,home,away,pay\n2024-05-01,A,B,1\n"

	games, err := schedule.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestParser_Errors(t *testing.T) {
	tests := map[string]string{
		"Empty":       "",
		"NoHeader":    "a,b,c\n1,2,3\n",
		"BadPay":      "Date,Home,Away,Pay\n2024-05-01,A,B,lots\n",
		"NegativePay": "Date,Home,Away,Pay\n2024-05-01,A,B,-5\n",
		"BadTime":     "Date,Time,Home,Away,Pay\n2024-05-01,noon,A,B,5\n",
	}

	for name, csv := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := schedule.NewParser().Parse(strings.NewReader(csv))
			assert.Error(t, err)
		})
	}
}
