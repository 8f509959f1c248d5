package cloud

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

var ErrNotFound = errors.New("document not found")

// Snapshot is the per-user document content. It carries the three tables
// but not the identity counter, which is recomputed from the identities
// when a snapshot is applied locally.
type Snapshot struct {
	Games    []ledger.Game    `json:"games"`
	Expenses []ledger.Expense `json:"expenses"`
	Mileage  []ledger.Mileage `json:"mileage"`
}

// SnapshotOf captures the tables of st.
func SnapshotOf(st ledger.State) Snapshot {
	st = st.Clone()

	return Snapshot{
		Games:    st.Games,
		Expenses: st.Expenses,
		Mileage:  st.Mileage,
	}
}

// State converts the snapshot into a full table set.
func (s Snapshot) State() ledger.State {
	return ledger.State{
		Games:    s.Games,
		Expenses: s.Expenses,
		Mileage:  s.Mileage,
	}.Normalized()
}

// Document is the stored snapshot of one user. Revision changes on every
// write.
type Document struct {
	UserID    string
	Snapshot  Snapshot
	Revision  uuid.UUID
	UpdatedAt time.Time
}

//go:generate mockgen -source=cloud.go -destination=repository_mock.go -package=cloud
type Repository interface {
	// GetDocument returns ErrNotFound when the user has no document.
	GetDocument(ctx context.Context, userID string) (*Document, error)
	// PutDocument creates or replaces the user's document. The server
	// assigns the revision and the timestamp.
	PutDocument(ctx context.Context, userID string, snap Snapshot) (*Document, error)
	// DeleteDocument is a no-op when the user has no document.
	DeleteDocument(ctx context.Context, userID string) error
}
