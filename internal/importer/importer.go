package importer

import (
	"io"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// Source names the kind of file being imported.
type Source string

const (
	SourceSchedule Source = "schedule"
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.NewGame, error)
}
