package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/refassist/internal/calendar"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

func sampleGame() ledger.Game {
	return ledger.Game{ID: 4, Date: "2024-05-01", Time: "18:30", League: "U14", Home: "Rovers", Away: "United", Pay: decimal.NewFromInt(45)}
}

func TestBuildEvent(t *testing.T) {
	ev, err := calendar.BuildEvent(sampleGame(), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Referee: Rovers vs United", ev.Summary)
	assert.Equal(t, time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, 2*time.Hour, ev.End.Sub(ev.Start))
	assert.Equal(t, "Referee Assignment\n\nTeams: Rovers vs United\nLevel: U14\nPay: $45.00\n\nCreated by Ref Assistant", ev.Description)
	assert.Equal(t, calendar.DefaultReminders, ev.Reminders)
}

func TestBuildEvent_Defaults(t *testing.T) {
	ev, err := calendar.BuildEvent(ledger.Game{ID: 1, Date: "2024-05-01"}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Referee: Game", ev.Summary)
	assert.Equal(t, 12, ev.Start.Hour())
	assert.Contains(t, ev.Description, "Teams: Home vs Away")
	assert.Contains(t, ev.Description, "Level: N/A")
	assert.Contains(t, ev.Description, "Pay: $0.00")
}

func TestBuildEvent_BadDate(t *testing.T) {
	_, err := calendar.BuildEvent(ledger.Game{ID: 1, Date: "someday"}, time.UTC)
	assert.Error(t, err)
}

func TestService_CreateForGame(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(c *calendar.MockClient, s *calendar.MockGameStore)
		want      string
		wantErr   bool
	}

	game := sampleGame()

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(c *calendar.MockClient, s *calendar.MockGameStore) {
				c.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("evt-1", nil)
				s.EXPECT().
					UpdateGame(gomock.Any(), game.ID, ledger.GameUpdate{CalendarEventID: ledger.Some("evt-1")}).
					Return(ledger.Game{}, true, nil)
			},
			want: "evt-1",
		},
		{
			name: "InsertFails",
			setupMock: func(c *calendar.MockClient, _ *calendar.MockGameStore) {
				c.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("", errors.New("forbidden"))
			},
			wantErr: true,
		},
		{
			name: "GameDeletedMeanwhile",
			setupMock: func(c *calendar.MockClient, s *calendar.MockGameStore) {
				c.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("evt-1", nil)
				s.EXPECT().UpdateGame(gomock.Any(), game.ID, gomock.Any()).Return(ledger.Game{}, false, nil)
				c.EXPECT().DeleteEvent(gomock.Any(), "evt-1").Return(nil)
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := calendar.NewMockClient(ctrl)
			games := calendar.NewMockGameStore(ctrl)
			tt.setupMock(client, games)

			svc := calendar.NewService(client, games, time.UTC)

			got, err := svc.CreateForGame(context.Background(), game)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_UpdateForGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := calendar.NewMockClient(ctrl)
	games := calendar.NewMockGameStore(ctrl)

	g := sampleGame()
	g.CalendarEventID = "evt-9"

	client.EXPECT().UpdateEvent(gomock.Any(), "evt-9", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ev calendar.Event) error {
			assert.Equal(t, "Referee: Rovers vs United", ev.Summary)
			return nil
		})

	svc := calendar.NewService(client, games, time.UTC)
	require.NoError(t, svc.UpdateForGame(context.Background(), g))
}

func TestService_DeleteForGame(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := calendar.NewMockClient(ctrl)
	client.EXPECT().DeleteEvent(gomock.Any(), "evt-9").Return(nil)

	svc := calendar.NewService(client, calendar.NewMockGameStore(ctrl), time.UTC)

	g := sampleGame()
	require.NoError(t, svc.DeleteForGame(context.Background(), g))

	g.CalendarEventID = "evt-9"
	require.NoError(t, svc.DeleteForGame(context.Background(), g))
}

func TestService_SyncAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := calendar.NewMockClient(ctrl)
	games := calendar.NewMockGameStore(ctrl)

	games.EXPECT().State().Return(ledger.State{Games: []ledger.Game{
		{ID: 1, Date: "2024-05-01", CalendarEventID: "evt-1"},
		{ID: 2, Date: "2024-05-02"},
		{ID: 3, Date: "2024-05-03"},
	}})

	client.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("evt-2", nil)
	client.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("", errors.New("rate limited"))
	games.EXPECT().
		UpdateGame(gomock.Any(), int64(2), ledger.GameUpdate{CalendarEventID: ledger.Some("evt-2")}).
		Return(ledger.Game{}, true, nil)

	svc := calendar.NewService(client, games, time.UTC)

	created, err := svc.SyncAll(context.Background())
	assert.Equal(t, 1, created)
	assert.Error(t, err)
}

func TestService_SyncAll_WritesBackToStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()

	store, err := ledger.Open(ctx, &memRepo{blobs: map[string][]byte{}})
	require.NoError(t, err)

	g, err := store.AddGame(ctx, ledger.NewGame{Date: "2024-05-01", Time: "10:00"})
	require.NoError(t, err)

	client := calendar.NewMockClient(ctrl)
	client.EXPECT().InsertEvent(gomock.Any(), gomock.Any()).Return("evt-42", nil)

	svc := calendar.NewService(client, store, time.UTC)

	created, err := svc.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	got, ok := store.Game(g.ID)
	require.True(t, ok)
	assert.Equal(t, "evt-42", got.CalendarEventID)
}

type memRepo struct{ blobs map[string][]byte }

func (r *memRepo) ReadBlob(_ context.Context, key string) ([]byte, error) {
	data, ok := r.blobs[key]
	if !ok {
		return nil, ledger.ErrBlobNotFound
	}

	return data, nil
}

func (r *memRepo) WriteBlob(_ context.Context, key string, data []byte) error {
	r.blobs[key] = data
	return nil
}
