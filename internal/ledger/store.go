package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

//go:generate mockgen -source=store.go -destination=repository_mock.go -package=ledger
type Repository interface {
	// ReadBlob returns ErrBlobNotFound when nothing is stored under key.
	ReadBlob(ctx context.Context, key string) ([]byte, error)
	WriteBlob(ctx context.Context, key string, data []byte) error
}

// Store is the authoritative in-process table set. Every mutation is
// persisted before it becomes visible; when persisting fails the mutation is
// discarded and the error is returned.
type Store struct {
	repo   Repository
	key    string
	logger *slog.Logger

	mu    sync.RWMutex
	state State
	hooks []func(State)
}

type Option func(*Store)

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the table set from repo. An absent or unreadable blob yields
// the empty default shape; a failing repository is an error.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:   repo,
		key:    BlobKey,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	raw, err := repo.ReadBlob(ctx, s.key)
	switch {
	case errors.Is(err, ErrBlobNotFound):
		s.state = Empty()
	case err != nil:
		return nil, fmt.Errorf("reading state: %w", err)
	default:
		st, err := Decode(raw)
		if err != nil {
			s.logger.Warn("discarding unreadable state", "key", s.key, "error", err)
			st = Empty()
		}

		s.state = st
	}

	return s, nil
}

// OnChange registers fn to run after every successful add, update, delete
// or clear. fn receives a copy of the new state. It does not run for
// Replace or Reload.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, fn)
}

// State returns a copy of the full table set.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

// Game returns the game with the given id.
func (s *Store) Game(id int64) (Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Game(id)
}

func (s *Store) AddGame(ctx context.Context, in NewGame) (Game, error) {
	games, err := s.AddGames(ctx, []NewGame{in})
	if err != nil {
		return Game{}, err
	}

	return games[0], nil
}

// AddGames adds all games or none of them.
func (s *Store) AddGames(ctx context.Context, in []NewGame) ([]Game, error) {
	for i, n := range in {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
	}

	if len(in) == 0 {
		return nil, nil
	}

	added := make([]Game, 0, len(in))

	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		for _, n := range in {
			g := n.record(nextID(st))
			st.Games = append(st.Games, g)
			added = append(added, g)
		}

		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding games: %w", err)
	}

	return added, nil
}

// UpdateGame merges u into the game with the given id. An unknown id is not
// an error: it returns false and nothing is written.
func (s *Store) UpdateGame(ctx context.Context, id int64, u GameUpdate) (Game, bool, error) {
	if err := u.Validate(); err != nil {
		return Game{}, false, err
	}

	var (
		updated Game
		found   bool
	)

	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		idx := slices.IndexFunc(st.Games, func(g Game) bool { return g.ID == id })
		if idx < 0 {
			return false, nil
		}

		updated = st.Games[idx].Apply(u)
		st.Games[idx] = updated
		found = true

		return true, nil
	})
	if err != nil {
		return Game{}, false, fmt.Errorf("updating game %d: %w", id, err)
	}

	return updated, found, nil
}

// DeleteGame removes the game and clears every expense and mileage
// back-reference to it. The referencing records are kept.
func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		before := len(st.Games)

		st.Games = slices.DeleteFunc(st.Games, func(g Game) bool { return g.ID == id })
		if len(st.Games) == before {
			return false, nil
		}

		for i := range st.Expenses {
			if ref := st.Expenses[i].GameID; ref != nil && *ref == id {
				st.Expenses[i].GameID = nil
			}
		}

		for i := range st.Mileage {
			if ref := st.Mileage[i].GameID; ref != nil && *ref == id {
				st.Mileage[i].GameID = nil
			}
		}

		return true, nil
	})
	if err != nil {
		return fmt.Errorf("deleting game %d: %w", id, err)
	}

	return nil
}

func (s *Store) AddExpense(ctx context.Context, in NewExpense) (Expense, error) {
	if err := in.Validate(); err != nil {
		return Expense{}, err
	}

	var added Expense

	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		if in.GameID != nil && !st.hasGame(*in.GameID) {
			return false, fmt.Errorf("%w: %d", ErrUnknownGame, *in.GameID)
		}

		added = in.record(nextID(st))
		st.Expenses = append(st.Expenses, added)

		return true, nil
	})
	if err != nil {
		return Expense{}, fmt.Errorf("adding expense: %w", err)
	}

	return added, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		before := len(st.Expenses)
		st.Expenses = slices.DeleteFunc(st.Expenses, func(e Expense) bool { return e.ID == id })

		return len(st.Expenses) != before, nil
	})
	if err != nil {
		return fmt.Errorf("deleting expense %d: %w", id, err)
	}

	return nil
}

func (s *Store) AddMileage(ctx context.Context, in NewMileage) (Mileage, error) {
	if err := in.Validate(); err != nil {
		return Mileage{}, err
	}

	var added Mileage

	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		if in.GameID != nil && !st.hasGame(*in.GameID) {
			return false, fmt.Errorf("%w: %d", ErrUnknownGame, *in.GameID)
		}

		added = in.record(nextID(st))
		st.Mileage = append(st.Mileage, added)

		return true, nil
	})
	if err != nil {
		return Mileage{}, fmt.Errorf("adding mileage: %w", err)
	}

	return added, nil
}

func (s *Store) DeleteMileage(ctx context.Context, id int64) error {
	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		before := len(st.Mileage)
		st.Mileage = slices.DeleteFunc(st.Mileage, func(m Mileage) bool { return m.ID == id })

		return len(st.Mileage) != before, nil
	})
	if err != nil {
		return fmt.Errorf("deleting mileage %d: %w", id, err)
	}

	return nil
}

// ClearAll resets every table and the identity counter.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.mutate(ctx, true, func(st *State) (bool, error) {
		*st = Empty()
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}

	return nil
}

// Replace overwrites the whole table set, e.g. with a snapshot pulled from
// the cloud. Change hooks are not run. The identity counter never moves
// backwards, so ids handed out before the swap stay retired.
func (s *Store) Replace(ctx context.Context, next State) error {
	next = next.Normalized()

	err := s.mutate(ctx, false, func(st *State) (bool, error) {
		next.LastID = max(next.LastID, st.LastID)
		*st = next

		return true, nil
	})
	if err != nil {
		return fmt.Errorf("replacing state: %w", err)
	}

	return nil
}

// Reset empties every table and restarts the identity counter without
// running change hooks.
func (s *Store) Reset(ctx context.Context) error {
	err := s.mutate(ctx, false, func(st *State) (bool, error) {
		*st = Empty()
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}

	return nil
}

// Reload re-reads the blob, picking up writes made by another process. An
// unreadable blob is an error and leaves the current state in place.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.repo.ReadBlob(ctx, s.key)
	if err != nil && !errors.Is(err, ErrBlobNotFound) {
		return fmt.Errorf("reading state: %w", err)
	}

	next := Empty()
	if err == nil {
		if next, err = Decode(raw); err != nil {
			return err
		}
	}

	s.state = next

	return nil
}

// Close exists for symmetry with the other services; every write is
// already durable when its method returns.
func (s *Store) Close() error {
	return nil
}

// mutate applies fn to a copy of the state and persists it. fn reports
// whether anything changed; unchanged states are not written.
func (s *Store) mutate(ctx context.Context, notify bool, fn func(st *State) (bool, error)) error {
	s.mu.Lock()

	next := s.state.Clone()

	changed, err := fn(&next)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}

	s.state = next

	var hooks []func(State)
	if notify {
		hooks = slices.Clone(s.hooks)
	}

	s.mu.Unlock()

	for _, h := range hooks {
		h(next.Clone())
	}

	return nil
}

func (s *Store) persist(ctx context.Context, st State) error {
	data, err := Encode(st)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if err := s.repo.WriteBlob(ctx, s.key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	return nil
}

func nextID(st *State) int64 {
	st.LastID++
	return st.LastID
}
