package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const (
	sheetGames    = "Games"
	sheetExpenses = "Expenses"
	sheetMileage  = "Mileage"
)

// Workbook writes an XLSX file with one sheet per table.
func (s *Service) Workbook(w io.Writer) error {
	st := s.source.State()
	ledger.SortGames(st.Games)
	ledger.SortExpenses(st.Expenses)
	ledger.SortMileage(st.Mileage)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetGames); err != nil {
		return fmt.Errorf("naming games sheet: %w", err)
	}

	games := [][]any{{"ID", "Date", "Time", "League", "Home", "Away", "Pay", "Updated", "Paid"}}
	for _, g := range st.Games {
		games = append(games, []any{g.ID, g.Date, g.Time, g.League, g.Home, g.Away, g.Pay.InexactFloat64(), g.Updated, g.Paid})
	}

	expenses := [][]any{{"ID", "Date", "Category", "Description", "Amount", "Game"}}
	for _, e := range st.Expenses {
		expenses = append(expenses, []any{e.ID, e.Date, e.Category, e.Description, e.Amount.InexactFloat64(), gameWhen(st, e.GameID)})
	}

	mileage := [][]any{{"ID", "Date", "From", "To", "Miles", "Total", "Game"}}
	for _, m := range st.Mileage {
		var total any
		if m.Total != nil {
			total = m.Total.InexactFloat64()
		}

		mileage = append(mileage, []any{m.ID, m.Date, m.From, m.To, m.Miles.InexactFloat64(), total, gameInfo(st, m.GameID)})
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{sheetGames, games},
		{sheetExpenses, expenses},
		{sheetMileage, mileage},
	}

	for _, sh := range sheets {
		if sh.name != sheetGames {
			if _, err := f.NewSheet(sh.name); err != nil {
				return fmt.Errorf("creating %s sheet: %w", sh.name, err)
			}
		}

		if err := writeRows(f, sh.name, sh.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
