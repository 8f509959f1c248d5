package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/refassist/internal/importer/schedule"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

type Service struct {
	importers map[Source]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Source]Importer{
			SourceSchedule: schedule.NewParser(),
		},
	}
}

// Import parses r into games ready for ledger.Store.AddGames. An empty
// source means SourceSchedule.
func (s *Service) Import(source Source, r io.Reader) ([]ledger.NewGame, error) {
	if source == "" {
		source = SourceSchedule
	}

	imp, ok := s.importers[source]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %s", source)
	}

	return imp.Parse(r)
}
