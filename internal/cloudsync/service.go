package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/refassist/internal/cloud"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

var ErrNotAuthenticated = errors.New("not authenticated")

const defaultTimeout = 30 * time.Second

// Session reports the signed-in user.
type Session interface {
	CurrentUser() (userID string, ok bool)
}

// LocalStore is the part of ledger.Store the service reads and overwrites.
type LocalStore interface {
	State() ledger.State
	Replace(ctx context.Context, next ledger.State) error
	Reset(ctx context.Context) error
}

// Service mirrors the local table set to a per-user cloud document. It
// never merges: a push overwrites the remote document and a pull overwrites
// local state.
//
// Every snapshot is tagged with a generation when it is captured. Pushes run
// one at a time and a push older than the last written generation is
// dropped, so a stale snapshot never lands after a fresher one.
type Service struct {
	remote  cloud.Repository
	local   LocalStore
	session Session
	timeout time.Duration
	logger  *slog.Logger

	// pushMu serialises remote writes and pulls.
	pushMu  sync.Mutex
	written uint64

	mu         sync.Mutex
	generation uint64
	cancelAuto context.CancelFunc
	status     Status
	subs       map[int]func(Status)
	nextSub    int
	closed     bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

type Option func(*Service)

// WithTimeout bounds each background push.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(remote cloud.Repository, local LocalStore, session Session, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Service{
		remote:     remote,
		local:      local,
		session:    session,
		timeout:    defaultTimeout,
		logger:     slog.Default(),
		status:     Status{Phase: PhaseIdle},
		subs:       map[int]func(Status){},
		baseCtx:    ctx,
		baseCancel: cancel,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SyncToCloud pushes the current table set. Failures are returned and
// reflected in the status; nothing is retried.
func (s *Service) SyncToCloud(ctx context.Context) error {
	userID, ok := s.session.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}

	gen, snap := s.capture()

	return s.push(ctx, userID, gen, snap)
}

// LoadFromCloud overwrites local state with the user's cloud document. When
// the user has no document yet it is created from local state, which is
// returned unchanged.
func (s *Service) LoadFromCloud(ctx context.Context) (ledger.State, error) {
	userID, ok := s.session.CurrentUser()
	if !ok {
		return ledger.State{}, ErrNotAuthenticated
	}

	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	s.setStatus(Status{Phase: PhaseSyncing})

	doc, err := s.remote.GetDocument(ctx, userID)
	if errors.Is(err, cloud.ErrNotFound) {
		gen, snap := s.capture()
		if err := s.write(ctx, userID, gen, snap); err != nil {
			return ledger.State{}, err
		}

		return snap, nil
	}

	if err != nil {
		s.fail(err)
		return ledger.State{}, fmt.Errorf("loading document: %w", err)
	}

	if err := s.local.Replace(ctx, doc.Snapshot.State()); err != nil {
		s.fail(err)
		return ledger.State{}, fmt.Errorf("applying document: %w", err)
	}

	// Snapshots captured before the overwrite are now stale.
	gen, st := s.capture()
	s.written = gen

	s.setStatus(Status{Phase: PhaseSynced, LastSyncedAt: &doc.UpdatedAt, Revision: doc.Revision.String()})

	return st, nil
}

// AutoSync starts a background push when a user is signed in and returns
// immediately. A still running earlier auto push is cancelled. Errors are
// logged and reflected in the status.
func (s *Service) AutoSync() {
	userID, ok := s.session.CurrentUser()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.cancelAuto != nil {
		s.cancelAuto()
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	s.cancelAuto = cancel

	s.generation++
	gen := s.generation
	snap := s.local.State()

	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := s.push(ctx, userID, gen, snap); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("auto sync failed", "user_id", userID, "error", err)
		}
	}()
}

// ClearAllUserData deletes the user's cloud document and resets local
// state. Local state is cleared even when the remote delete fails; that
// error is still returned.
func (s *Service) ClearAllUserData(ctx context.Context) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	var remoteErr error

	if userID, ok := s.session.CurrentUser(); ok {
		if err := s.remote.DeleteDocument(ctx, userID); err != nil {
			remoteErr = fmt.Errorf("clearing cloud data: %w", err)
			s.logger.Warn("failed to delete cloud data", "user_id", userID, "error", err)
		}
	}

	if err := s.local.Reset(ctx); err != nil {
		return errors.Join(remoteErr, fmt.Errorf("clearing local data: %w", err))
	}

	gen, _ := s.capture()
	s.written = gen

	if remoteErr != nil {
		s.fail(remoteErr)
		return remoteErr
	}

	s.setStatus(Status{Phase: PhaseIdle})

	return nil
}

// Close cancels background pushes and waits for them to return.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.baseCancel()
	s.wg.Wait()

	return nil
}

func (s *Service) capture() (uint64, ledger.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++

	return s.generation, s.local.State()
}

func (s *Service) push(ctx context.Context, userID string, gen uint64, snap ledger.State) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if gen <= s.written {
		s.logger.Debug("dropping stale push", "generation", gen, "written", s.written)
		return nil
	}

	s.setStatus(Status{Phase: PhaseSyncing})

	return s.write(ctx, userID, gen, snap)
}

// write stores snap remotely. The caller holds pushMu.
func (s *Service) write(ctx context.Context, userID string, gen uint64, snap ledger.State) error {
	doc, err := s.remote.PutDocument(ctx, userID, cloud.SnapshotOf(snap))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.setStatus(Status{Phase: PhaseIdle})
			return err
		}

		s.fail(err)

		return fmt.Errorf("pushing snapshot: %w", err)
	}

	s.written = gen
	s.setStatus(Status{Phase: PhaseSynced, LastSyncedAt: &doc.UpdatedAt, Revision: doc.Revision.String()})

	return nil
}

func (s *Service) fail(err error) {
	s.setStatus(Status{Phase: PhaseError, Error: err.Error()})
}
