package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const (
	icsProductID = "-//Ref Assistant//Games//EN"
	icsStamp     = "20060102T150405Z"
	icsUIDDomain = "refassist"
)

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// WriteICS writes games as an iCalendar feed. Games whose date cannot be
// parsed are skipped. UIDs derive from game ids so subscribers see updates
// rather than duplicates.
func WriteICS(w io.Writer, games []ledger.Game, loc *time.Location, now time.Time) error {
	if loc == nil {
		loc = time.Local
	}

	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", icsProductID)
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:Referee Games")
	line("X-WR-TIMEZONE:%s", loc.String())

	stamp := now.UTC().Format(icsStamp)

	for _, g := range games {
		ev, err := BuildEvent(g, loc)
		if err != nil {
			continue
		}

		line("BEGIN:VEVENT")
		line("UID:game-%d@%s", g.ID, icsUIDDomain)
		line("DTSTAMP:%s", stamp)
		line("DTSTART:%s", ev.Start.UTC().Format(icsStamp))
		line("DTEND:%s", ev.End.UTC().Format(icsStamp))
		line("SUMMARY:%s", icsEscaper.Replace(ev.Summary))
		line("DESCRIPTION:%s", icsEscaper.Replace(ev.Description))

		for _, r := range ev.Reminders {
			if r.Method != "popup" {
				continue
			}

			line("BEGIN:VALARM")
			line("ACTION:DISPLAY")
			line("DESCRIPTION:%s", icsEscaper.Replace(ev.Summary))
			line("TRIGGER:-PT%dM", r.Minutes)
			line("END:VALARM")
		}

		line("END:VEVENT")
	}

	line("END:VCALENDAR")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	return nil
}
