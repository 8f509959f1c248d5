// Package app assembles the services shared by the API server and the
// terminal UI from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"

	"github.com/MrJamesThe3rd/refassist/internal/auth"
	"github.com/MrJamesThe3rd/refassist/internal/calendar"
	"github.com/MrJamesThe3rd/refassist/internal/calendar/google"
	cloudStore "github.com/MrJamesThe3rd/refassist/internal/cloud/store"
	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/config"
	"github.com/MrJamesThe3rd/refassist/internal/database"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

// App holds the wired services. Sync, Session and Calendar are nil when
// their features are not configured.
type App struct {
	Ledger   *ledger.Store
	Issuer   *auth.Issuer
	Session  *auth.Session
	Sync     *cloudsync.Service
	Calendar *calendar.Service
	Location *time.Location

	// WatchPath is the file other processes write the local data to. It is
	// empty for backends that cannot be watched.
	WatchPath string

	closers []func() error
}

// New opens the local store and, when enabled, connects cloud sync and the
// calendar. Every mutation of the local store triggers a background push.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a.Location = loc

	repo, err := a.openLocal(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.Ledger, err = ledger.Open(ctx, repo, ledger.WithLogger(logger))
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.closers = append(a.closers, a.Ledger.Close)

	if cfg.Sync.Enabled {
		if err := a.openSync(ctx, cfg, logger); err != nil {
			return nil, errors.Join(err, a.Close())
		}
	}

	creds := google.Credentials{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		RefreshToken: cfg.Calendar.RefreshToken,
		AccessToken:  cfg.Calendar.Token,
	}

	if creds.Configured() {
		// Refreshes outlive the startup context.
		tokens := creds.TokenSource(context.WithoutCancel(ctx))

		client, err := google.NewClient(ctx, cfg.Calendar.ID, loc.String(), option.WithTokenSource(tokens))
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}

		a.Calendar = calendar.NewService(client, a.Ledger, loc)
	}

	return a, nil
}

func (a *App) openLocal(ctx context.Context, cfg *config.Config) (ledger.Repository, error) {
	switch cfg.Local.Backend {
	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, db.Close)

		return ledgerStore.NewSQLiteStore(ctx, db)
	default:
		fs, err := ledgerStore.NewFileStore(cfg.Local.DataDir)
		if err != nil {
			return nil, err
		}

		a.WatchPath = fs.Path(ledger.BlobKey)

		return fs, nil
	}
}

func (a *App) openSync(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to cloud database: %w", err)
	}

	a.closers = append(a.closers, db.Close)

	return a.wireSync(ctx, db, cfg, logger)
}

func (a *App) wireSync(ctx context.Context, db *sql.DB, cfg *config.Config, logger *slog.Logger) error {
	remote := cloudStore.New(db)
	if err := remote.EnsureSchema(ctx); err != nil {
		return err
	}

	a.Issuer = auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
	a.Session = auth.NewSession(a.Issuer)
	a.Sync = cloudsync.NewService(remote, a.Ledger, a.Session,
		cloudsync.WithTimeout(cfg.Sync.Timeout),
		cloudsync.WithLogger(logger),
	)

	a.Ledger.OnChange(func(ledger.State) { a.Sync.AutoSync() })

	// The sync service goes first so pushes stop before the databases close.
	a.closers = append(a.closers, a.Sync.Close)

	return nil
}

// ClearAll wipes the user's data: cloud and local when sync is wired,
// local only otherwise.
func (a *App) ClearAll(ctx context.Context) error {
	if a.Sync != nil {
		return a.Sync.ClearAllUserData(ctx)
	}

	return a.Ledger.ClearAll(ctx)
}

// SignIn makes token's user current and loads their cloud data. A failed
// load is returned but the session stays active.
func (a *App) SignIn(ctx context.Context, token string) (string, error) {
	if a.Session == nil {
		return "", errors.New("sync is disabled")
	}

	userID, err := a.Session.SignIn(token)
	if err != nil {
		return "", err
	}

	if _, err := a.Sync.LoadFromCloud(ctx); err != nil {
		return userID, fmt.Errorf("loading cloud data: %w", err)
	}

	return userID, nil
}

// Close releases everything New opened, most recent first.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}
