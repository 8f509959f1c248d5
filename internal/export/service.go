package export

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// StateSource provides the table set to export.
type StateSource interface {
	State() ledger.State
}

// Item is an exported expense and the file its receipt was written to.
type Item struct {
	Expense  ledger.Expense
	FilePath string
}

// Service flattens the local tables into files for bookkeeping.
type Service struct {
	source StateSource
}

func NewService(source StateSource) *Service {
	return &Service{source: source}
}

// ExpensesCSV writes Date,Description,Amount,Game rows, oldest first.
func (s *Service) ExpensesCSV(w io.Writer) error {
	st := s.source.State()
	ledger.SortExpenses(st.Expenses)

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Date", "Description", "Amount", "Game"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range st.Expenses {
		row := []string{e.Date, e.Description, e.Amount.String(), gameWhen(st, e.GameID)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing expense %d: %w", e.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// MileageCSV writes id,date,miles,gameId,gameInfo rows in table order.
func (s *Service) MileageCSV(w io.Writer) error {
	st := s.source.State()
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"id", "date", "miles", "gameId", "gameInfo"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, m := range st.Mileage {
		var gameID string
		if m.GameID != nil {
			gameID = strconv.FormatInt(*m.GameID, 10)
		}

		row := []string{strconv.FormatInt(m.ID, 10), m.Date, m.Miles.String(), gameID, gameInfo(st, m.GameID)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing mileage %d: %w", m.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// ExportReceipts writes every expense receipt to outputDir. Expenses
// without a receipt are listed with an empty FilePath.
func (s *Service) ExportReceipts(outputDir string) ([]Item, error) {
	st := s.source.State()
	ledger.SortExpenses(st.Expenses)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(st.Expenses))

	for _, e := range st.Expenses {
		item := Item{Expense: e}

		if e.Receipt != "" {
			path, err := writeReceipt(e, outputDir)
			if err != nil {
				return nil, fmt.Errorf("writing receipt for expense %d: %w", e.ID, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func writeReceipt(e ledger.Expense, dir string) (string, error) {
	mediaType, data, err := decodeDataURL(e.Receipt)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, receiptFilename(e, mediaType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

// decodeDataURL parses data:[<mediatype>][;base64],<data>.
func decodeDataURL(raw string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "", nil, fmt.Errorf("receipt is not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")

	if !isBase64 {
		return mediaType, []byte(payload), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding receipt: %w", err)
	}

	return mediaType, data, nil
}

// receiptFilename is YYYYMMDD_<id>_<Description>.<ext>.
func receiptFilename(e ledger.Expense, mediaType string) string {
	ext := ".bin"

	if mediaType != "" {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	safeDesc := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, e.Description)

	date := strings.ReplaceAll(e.Date, "-", "")

	return fmt.Sprintf("%s_%d_%s%s", date, e.ID, safeDesc, ext)
}

// GenerateSummary lists exported items one per line, for pasting into an
// email to the assigning league.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		receipt := "No receipt"
		if item.FilePath != "" {
			receipt = filepath.Base(item.FilePath)
		}

		desc := item.Expense.Description
		if desc == "" {
			desc = "-"
		}

		fmt.Fprintf(&sb, "%s | %s | $%s | %s\n", item.Expense.Date, desc, item.Expense.Amount.StringFixed(2), receipt)
	}

	return sb.String()
}

// gameWhen renders a back-reference as "date time".
func gameWhen(st ledger.State, ref *int64) string {
	if ref == nil {
		return ""
	}

	g, ok := st.Game(*ref)
	if !ok {
		return ""
	}

	return strings.TrimSpace(g.Date + " " + g.Time)
}

// gameInfo renders a back-reference as "date time - away @ home".
func gameInfo(st ledger.State, ref *int64) string {
	if ref == nil {
		return ""
	}

	g, ok := st.Game(*ref)
	if !ok {
		return ""
	}

	return fmt.Sprintf("%s %s - %s @ %s", g.Date, g.Time, g.Away, g.Home)
}
