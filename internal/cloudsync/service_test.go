package cloudsync_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/refassist/internal/cloud"
	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

type session struct{ user string }

func (s session) CurrentUser() (string, bool) { return s.user, s.user != "" }

type memRepo struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (r *memRepo) ReadBlob(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.blobs[key]
	if !ok {
		return nil, ledger.ErrBlobNotFound
	}

	return data, nil
}

func (r *memRepo) WriteBlob(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blobs[key] = data

	return nil
}

func newLocal(t *testing.T) *ledger.Store {
	t.Helper()

	s, err := ledger.Open(context.Background(), &memRepo{blobs: map[string][]byte{}})
	require.NoError(t, err)

	return s
}

func seed(t *testing.T, s *ledger.Store) ledger.Game {
	t.Helper()

	g, err := s.AddGame(context.Background(), ledger.NewGame{Date: "2024-05-01", Time: "10:00", Pay: decimal.NewFromInt(50)})
	require.NoError(t, err)

	_, err = s.AddExpense(context.Background(), ledger.NewExpense{Date: "2024-05-01", Amount: decimal.RequireFromString("12.50"), GameID: ledger.Ref(g.ID)})
	require.NoError(t, err)

	return g
}

func document(snap cloud.Snapshot) *cloud.Document {
	return &cloud.Document{
		UserID:    "ref-1",
		Snapshot:  snap,
		Revision:  uuid.New(),
		UpdatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestService_NotAuthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := cloud.NewMockRepository(ctrl)
	svc := cloudsync.NewService(remote, newLocal(t), session{})
	defer svc.Close()

	err := svc.SyncToCloud(context.Background())
	assert.ErrorIs(t, err, cloudsync.ErrNotAuthenticated)

	_, err = svc.LoadFromCloud(context.Background())
	assert.ErrorIs(t, err, cloudsync.ErrNotAuthenticated)

	svc.AutoSync()

	assert.Equal(t, cloudsync.PhaseIdle, svc.Status().Phase)
}

func TestService_SyncToCloud(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *cloud.MockRepository, local ledger.State)
		wantPhase cloudsync.Phase
		wantErr   string
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *cloud.MockRepository, local ledger.State) {
				m.EXPECT().
					PutDocument(gomock.Any(), "ref-1", cloud.SnapshotOf(local)).
					Return(document(cloud.SnapshotOf(local)), nil)
			},
			wantPhase: cloudsync.PhaseSynced,
		},
		{
			name: "RemoteFailure",
			setupMock: func(m *cloud.MockRepository, _ ledger.State) {
				m.EXPECT().
					PutDocument(gomock.Any(), "ref-1", gomock.Any()).
					Return(nil, errors.New("connection refused"))
			},
			wantPhase: cloudsync.PhaseError,
			wantErr:   "pushing snapshot: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			local := newLocal(t)
			seed(t, local)
			before := local.State()

			remote := cloud.NewMockRepository(ctrl)
			tt.setupMock(remote, before)

			svc := cloudsync.NewService(remote, local, session{user: "ref-1"})
			defer svc.Close()

			err := svc.SyncToCloud(context.Background())
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.NotEmpty(t, svc.Status().Error)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, svc.Status().LastSyncedAt)
			}

			assert.Equal(t, tt.wantPhase, svc.Status().Phase)
			assert.Equal(t, before, local.State())
		})
	}
}

func TestService_LoadFromCloud_NoDocumentUploadsLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	local := newLocal(t)
	seed(t, local)
	before := local.State()

	remote := cloud.NewMockRepository(ctrl)
	remote.EXPECT().GetDocument(gomock.Any(), "ref-1").Return(nil, cloud.ErrNotFound)
	remote.EXPECT().
		PutDocument(gomock.Any(), "ref-1", cloud.SnapshotOf(before)).
		Return(document(cloud.SnapshotOf(before)), nil)

	svc := cloudsync.NewService(remote, local, session{user: "ref-1"})
	defer svc.Close()

	got, err := svc.LoadFromCloud(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, got)
	assert.Equal(t, before, local.State())
	assert.Equal(t, cloudsync.PhaseSynced, svc.Status().Phase)
}

func TestService_LoadFromCloud_OverwritesLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	local := newLocal(t)
	seed(t, local)

	var hookCalls int

	local.OnChange(func(ledger.State) { hookCalls++ })

	remoteSnap := cloud.Snapshot{
		Games:    []ledger.Game{{ID: 7, Date: "2024-06-01", Time: "09:00", Pay: decimal.NewFromInt(35), Paid: true}},
		Expenses: []ledger.Expense{{ID: 11, Date: "2024-06-01", Amount: decimal.NewFromInt(4)}},
	}

	remote := cloud.NewMockRepository(ctrl)
	remote.EXPECT().GetDocument(gomock.Any(), "ref-1").Return(document(remoteSnap), nil)

	svc := cloudsync.NewService(remote, local, session{user: "ref-1"})
	defer svc.Close()

	got, err := svc.LoadFromCloud(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(11), got.LastID)
	assert.Equal(t, remoteSnap.Games, got.Games)
	assert.Equal(t, remoteSnap.Expenses, got.Expenses)
	assert.Equal(t, []ledger.Mileage{}, got.Mileage)
	assert.Equal(t, got, local.State())
	assert.Zero(t, hookCalls)

	g, err := local.AddGame(context.Background(), ledger.NewGame{Date: "2024-06-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), g.ID)
}

func TestService_PushPullKeepsDeletedIDsRetired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	local := newLocal(t)

	var ids []int64

	for range 3 {
		e, err := local.AddExpense(ctx, ledger.NewExpense{Date: "2024-05-01", Amount: decimal.NewFromInt(5)})
		require.NoError(t, err)

		ids = append(ids, e.ID)
	}

	deleted := ids[2]
	require.NoError(t, local.DeleteExpense(ctx, deleted))

	var stored *cloud.Document

	remote := cloud.NewMockRepository(ctrl)
	remote.EXPECT().
		PutDocument(gomock.Any(), "ref-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, snap cloud.Snapshot) (*cloud.Document, error) {
			stored = document(snap)
			return stored, nil
		})
	remote.EXPECT().
		GetDocument(gomock.Any(), "ref-1").
		DoAndReturn(func(context.Context, string) (*cloud.Document, error) { return stored, nil })

	svc := cloudsync.NewService(remote, local, session{user: "ref-1"})
	defer svc.Close()

	require.NoError(t, svc.SyncToCloud(ctx))

	_, err := svc.LoadFromCloud(ctx)
	require.NoError(t, err)

	e, err := local.AddExpense(ctx, ledger.NewExpense{Date: "2024-05-02", Amount: decimal.NewFromInt(7)})
	require.NoError(t, err)
	assert.NotEqual(t, deleted, e.ID)
	assert.NotContains(t, ids, e.ID)
}

func TestService_LoadFromCloud_FailureLeavesLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	local := newLocal(t)
	seed(t, local)
	before := local.State()

	remote := cloud.NewMockRepository(ctrl)
	remote.EXPECT().GetDocument(gomock.Any(), "ref-1").Return(nil, errors.New("timeout"))

	svc := cloudsync.NewService(remote, local, session{user: "ref-1"})
	defer svc.Close()

	_, err := svc.LoadFromCloud(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, local.State())
	assert.Equal(t, cloudsync.PhaseError, svc.Status().Phase)
}

func TestService_ClearAllUserData(t *testing.T) {
	type testCase struct {
		name      string
		user      string
		setupMock func(m *cloud.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			user: "ref-1",
			setupMock: func(m *cloud.MockRepository) {
				m.EXPECT().DeleteDocument(gomock.Any(), "ref-1").Return(nil)
			},
		},
		{
			name: "RemoteFailureStillClearsLocal",
			user: "ref-1",
			setupMock: func(m *cloud.MockRepository) {
				m.EXPECT().DeleteDocument(gomock.Any(), "ref-1").Return(errors.New("unavailable"))
			},
			wantErr: true,
		},
		{
			name:      "SignedOutClearsLocalOnly",
			setupMock: func(*cloud.MockRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			local := newLocal(t)
			seed(t, local)

			remote := cloud.NewMockRepository(ctrl)
			tt.setupMock(remote)

			svc := cloudsync.NewService(remote, local, session{user: tt.user})
			defer svc.Close()

			err := svc.ClearAllUserData(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, ledger.Empty(), local.State())

			e, err := local.AddExpense(context.Background(), ledger.NewExpense{Date: "2024-05-01", Amount: decimal.NewFromInt(1)})
			require.NoError(t, err)
			assert.Equal(t, int64(1), e.ID)
		})
	}
}

func TestService_AutoSync_CancelsEarlierPush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	local := newLocal(t)
	remote := cloud.NewMockRepository(ctrl)

	started := make(chan struct{})

	var pushed cloud.Snapshot

	gomock.InOrder(
		remote.EXPECT().
			PutDocument(gomock.Any(), "ref-1", gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ string, _ cloud.Snapshot) (*cloud.Document, error) {
				close(started)
				<-ctx.Done()

				return nil, ctx.Err()
			}),
		remote.EXPECT().
			PutDocument(gomock.Any(), "ref-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, snap cloud.Snapshot) (*cloud.Document, error) {
				pushed = snap
				return document(snap), nil
			}),
	)

	svc := cloudsync.NewService(remote, local, session{user: "ref-1"}, cloudsync.WithTimeout(5*time.Second))

	synced := make(chan struct{}, 1)
	unsubscribe := svc.Subscribe(func(st cloudsync.Status) {
		if st.Phase == cloudsync.PhaseSynced {
			select {
			case synced <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	svc.AutoSync()
	<-started

	local.OnChange(func(ledger.State) { svc.AutoSync() })

	_, err := local.AddGame(context.Background(), ledger.NewGame{Date: "2024-05-01", Pay: decimal.NewFromInt(50)})
	require.NoError(t, err)

	select {
	case <-synced:
	case <-time.After(5 * time.Second):
		t.Fatal("auto sync did not complete")
	}

	require.NoError(t, svc.Close())

	assert.Len(t, pushed.Games, 1)
	assert.Equal(t, cloudsync.PhaseSynced, svc.Status().Phase)
}
