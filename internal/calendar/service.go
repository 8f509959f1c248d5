package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=client_mock.go -package=calendar
type Client interface {
	InsertEvent(ctx context.Context, ev Event) (string, error)
	UpdateEvent(ctx context.Context, eventID string, ev Event) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// GameStore is where event ids are written back to.
type GameStore interface {
	State() ledger.State
	UpdateGame(ctx context.Context, id int64, u ledger.GameUpdate) (ledger.Game, bool, error)
}

// Service keeps calendar events in step with games. Calendar failures never
// undo the game change that triggered them.
type Service struct {
	client Client
	games  GameStore
	loc    *time.Location
	logger *slog.Logger
}

func NewService(client Client, games GameStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}

	return &Service{client: client, games: games, loc: loc, logger: slog.Default()}
}

// CreateForGame creates an event for g and records its id on the game.
func (s *Service) CreateForGame(ctx context.Context, g ledger.Game) (string, error) {
	ev, err := BuildEvent(g, s.loc)
	if err != nil {
		return "", err
	}

	eventID, err := s.client.InsertEvent(ctx, ev)
	if err != nil {
		return "", fmt.Errorf("creating event for game %d: %w", g.ID, err)
	}

	_, found, err := s.games.UpdateGame(ctx, g.ID, ledger.GameUpdate{CalendarEventID: ledger.Some(eventID)})
	if err != nil {
		return eventID, fmt.Errorf("recording event for game %d: %w", g.ID, err)
	}

	if !found {
		// The game went away while the event was created.
		if err := s.client.DeleteEvent(ctx, eventID); err != nil {
			s.logger.Warn("failed to delete orphaned event", "event_id", eventID, "error", err)
		}

		return "", nil
	}

	return eventID, nil
}

// UpdateForGame rewrites the event of g, creating it when g has none.
func (s *Service) UpdateForGame(ctx context.Context, g ledger.Game) error {
	if g.CalendarEventID == "" {
		_, err := s.CreateForGame(ctx, g)
		return err
	}

	ev, err := BuildEvent(g, s.loc)
	if err != nil {
		return err
	}

	if err := s.client.UpdateEvent(ctx, g.CalendarEventID, ev); err != nil {
		return fmt.Errorf("updating event for game %d: %w", g.ID, err)
	}

	return nil
}

// DeleteForGame removes the event of g, if it has one.
func (s *Service) DeleteForGame(ctx context.Context, g ledger.Game) error {
	if g.CalendarEventID == "" {
		return nil
	}

	if err := s.client.DeleteEvent(ctx, g.CalendarEventID); err != nil {
		return fmt.Errorf("deleting event for game %d: %w", g.ID, err)
	}

	return nil
}

// SyncAll creates events for every game that has none. It keeps going past
// failures and returns how many events were created together with the
// joined errors.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	var (
		created int
		errs    []error
	)

	for _, g := range s.games.State().Games {
		if g.CalendarEventID != "" {
			continue
		}

		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		eventID, err := s.CreateForGame(ctx, g)
		if err != nil {
			s.logger.Warn("calendar sync failed for game", "game_id", g.ID, "error", err)
			errs = append(errs, err)

			continue
		}

		if eventID != "" {
			created++
		}
	}

	return created, errors.Join(errs...)
}
