package calendar_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/calendar"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

func TestWriteICS(t *testing.T) {
	games := []ledger.Game{
		sampleGame(),
		{ID: 5, Date: "bad"},
		{ID: 6, Date: "2024-05-02", Home: "A, B; C"},
	}

	var buf bytes.Buffer
	require.NoError(t, calendar.WriteICS(&buf, games, time.UTC, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:game-4@refassist\r\n")
	assert.Contains(t, out, "DTSTART:20240501T183000Z\r\n")
	assert.Contains(t, out, "DTEND:20240501T203000Z\r\n")
	assert.Contains(t, out, "TRIGGER:-PT60M\r\n")
	assert.Contains(t, out, `SUMMARY:Referee: A\, B\; C`)
	assert.Contains(t, out, `DESCRIPTION:Referee Assignment\n\nTeams:`)
	assert.NotContains(t, out, "game-5@")
}
