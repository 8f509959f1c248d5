package schedule

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/refassist/internal/encoding"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// Parser reads game schedules exported from spreadsheets or assigning
// sites. It finds the header row by matching known column layouts, so
// title rows above the header are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.NewGame, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffSeparator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching schedule format found: expected Date, Home, Away and Pay columns")
	}

	slog.Debug("parsing schedule", "profile", profile.Name, "charset", charset, "separator", string(reader.Comma))

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// sniffSeparator picks ';' when the first non-blank line has more
// semicolons than commas.
func sniffSeparator(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}

		break
	}

	return ','
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[strings.ToLower(name)] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return false
		}
	}

	return true
}

// parseRows turns data rows into games. Rows without a readable date are
// skipped as blank or footer rows; any other bad cell is an error.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]ledger.NewGame, error) {
	idx := func(name string) int {
		if name == "" {
			return -1
		}

		if i, ok := cols[strings.ToLower(name)]; ok {
			return i
		}

		return -1
	}

	dateIdx, timeIdx, leagueIdx := idx(p.DateCol), idx(p.TimeCol), idx(p.LeagueCol)
	homeIdx, awayIdx, payIdx := idx(p.HomeCol), idx(p.AwayCol), idx(p.PayCol)

	var games []ledger.NewGame

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based

		rawDate := cellValue(row, dateIdx)
		if rawDate == "" {
			continue
		}

		date, err := time.Parse(p.DateLayout, rawDate)
		if err != nil {
			// Totals and notes below the table.
			continue
		}

		g := ledger.NewGame{
			Date:   date.Format(time.DateOnly),
			League: cellValue(row, leagueIdx),
			Home:   cellValue(row, homeIdx),
			Away:   cellValue(row, awayIdx),
		}

		if rawTime := cellValue(row, timeIdx); rawTime != "" {
			t, err := parseTime(p.TimeLayout, rawTime)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid time %q", rowNum, rawTime)
			}

			g.Time = t
		}

		pay, err := parsePay(cellValue(row, payIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid pay: %w", rowNum, err)
		}

		g.Pay = pay

		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		games = append(games, g)
	}

	return games, nil
}

// parseTime accepts the profile layout and falls back to 24-hour time.
func parseTime(layout, s string) (string, error) {
	for _, l := range []string{layout, "15:04", "3:04 PM", "3:04PM"} {
		if t, err := time.Parse(l, strings.ToUpper(s)); err == nil {
			return t.Format("15:04"), nil
		}
	}

	return "", fmt.Errorf("unrecognised time")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
