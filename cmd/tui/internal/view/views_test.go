package view

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/export"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

func newStore(t *testing.T) *ledger.Store {
	t.Helper()

	fs, err := ledgerStore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, err := ledger.Open(context.Background(), fs)
	require.NoError(t, err)

	return s
}

func addGame(t *testing.T, s *ledger.Store, date string) ledger.Game {
	t.Helper()

	g, err := s.AddGame(context.Background(), ledger.NewGame{
		Date: date,
		Time: "18:00",
		Home: "Hawks",
		Away: "Owls",
		Pay:  decimal.NewFromInt(45),
	})
	require.NoError(t, err)

	return g
}

// fakeCalendar records the games it was asked to mirror.
type fakeCalendar struct {
	created, updated, deleted []int64
}

func (f *fakeCalendar) CreateForGame(_ context.Context, g ledger.Game) (string, error) {
	f.created = append(f.created, g.ID)
	return "evt", nil
}

func (f *fakeCalendar) UpdateForGame(_ context.Context, g ledger.Game) error {
	f.updated = append(f.updated, g.ID)
	return nil
}

func (f *fakeCalendar) DeleteForGame(_ context.Context, g ledger.Game) error {
	f.deleted = append(f.deleted, g.ID)
	return nil
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$12.50", FormatMoney(decimal.RequireFromString("12.5")))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
}

func TestGamesModel_TogglePaid(t *testing.T) {
	s := newStore(t)
	g := addGame(t, s, "2024-05-01")

	m := NewGamesModel(s, nil)
	require.Len(t, m.games, 1)

	cmd := m.toggleCmd(func(g ledger.Game) ledger.GameUpdate {
		return ledger.GameUpdate{Paid: ledger.Some(!g.Paid)}
	})
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(GamesModel)

	stored, ok := s.Game(g.ID)
	require.True(t, ok)
	assert.True(t, stored.Paid)
	assert.True(t, m.games[0].Paid)
}

func TestGamesModel_PaidFilter(t *testing.T) {
	s := newStore(t)
	paid := addGame(t, s, "2024-05-01")
	addGame(t, s, "2024-05-02")

	_, _, err := s.UpdateGame(context.Background(), paid.ID, ledger.GameUpdate{Paid: ledger.Some(true)})
	require.NoError(t, err)

	m := NewGamesModel(s, nil)
	assert.Len(t, m.games, 2)

	m.paidFilterIdx = 1
	m.reload()
	require.Len(t, m.games, 1)
	assert.False(t, m.games[0].Paid)

	m.paidFilterIdx = 2
	m.reload()
	require.Len(t, m.games, 1)
	assert.Equal(t, paid.ID, m.games[0].ID)
}

func TestGamesModel_AddAndDelete_MirrorCalendar(t *testing.T) {
	s := newStore(t)
	cal := &fakeCalendar{}

	m := NewGamesModel(s, cal)

	msg := m.addCmd(gameInput{date: "2024-05-03", time: "10:00", home: "A", away: "B", pay: "30"})()
	saved, ok := msg.(gameSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	next, _ := m.Update(msg)
	m = next.(GamesModel)
	require.Len(t, m.games, 1)
	assert.Equal(t, []int64{m.games[0].ID}, cal.created)

	id := m.games[0].ID

	next, _ = m.Update(m.deleteCmd()())
	m = next.(GamesModel)
	assert.Empty(t, m.games)
	assert.Equal(t, []int64{id}, cal.deleted)
}

func TestGamesModel_AddRejectsBadPay(t *testing.T) {
	s := newStore(t)
	m := NewGamesModel(s, nil)

	msg := m.addCmd(gameInput{date: "2024-05-03", pay: "lots"})()
	saved, ok := msg.(gameSavedMsg)
	require.True(t, ok)
	assert.Error(t, saved.err)
	assert.Empty(t, s.State().Games)
}

func TestExpensesModel_AddLinkedAndDelete(t *testing.T) {
	s := newStore(t)
	g := addGame(t, s, "2024-05-01")

	m := NewExpensesModel(s)

	msg := m.addCmd(expenseInput{date: "2024-05-01", description: "Parking", amount: "12.50", gameID: g.ID})()
	next, _ := m.Update(msg)
	m = next.(ExpensesModel)

	require.Len(t, m.expenses, 1)
	require.NotNil(t, m.expenses[0].GameID)
	assert.Equal(t, g.ID, *m.expenses[0].GameID)
	assert.Contains(t, m.View(), "$12.50")

	next, _ = m.Update(m.deleteCmd()())
	m = next.(ExpensesModel)
	assert.Empty(t, m.expenses)
	assert.Empty(t, s.State().Expenses)
}

func TestExpensesModel_NoGameSelected(t *testing.T) {
	s := newStore(t)
	m := NewExpensesModel(s)

	msg := m.addCmd(expenseInput{date: "2024-05-01", amount: "3"})()
	next, _ := m.Update(msg)
	m = next.(ExpensesModel)

	require.Len(t, m.expenses, 1)
	assert.Nil(t, m.expenses[0].GameID)
}

func TestMileageModel_AddWithRate(t *testing.T) {
	s := newStore(t)
	m := NewMileageModel(s)

	msg := m.addCmd(tripInput{date: "2024-05-01", from: "Home", to: "Field", miles: "20", rate: "0.655", roundTrip: true})()
	next, _ := m.Update(msg)
	m = next.(MileageModel)

	require.Len(t, m.trips, 1)
	trip := m.trips[0]
	assert.True(t, trip.RoundTrip)
	require.NotNil(t, trip.Total)
	assert.Equal(t, "13.1", trip.Total.String())
}

func TestMileageModel_AddWithoutRate(t *testing.T) {
	s := newStore(t)
	m := NewMileageModel(s)

	next, _ := m.Update(m.addCmd(tripInput{date: "2024-05-01", miles: "7"})())
	m = next.(MileageModel)

	require.Len(t, m.trips, 1)
	assert.Nil(t, m.trips[0].Rate)
	assert.Nil(t, m.trips[0].Total)
}

func TestGameOptions(t *testing.T) {
	s := newStore(t)
	addGame(t, s, "2024-05-02")
	addGame(t, s, "2024-05-01")

	opts := gameOptions(s.State())
	require.Len(t, opts, 3)
	assert.Equal(t, "None", opts[0].Key)
	assert.Equal(t, int64(0), opts[0].Value)
	assert.Equal(t, "2024-05-01 Hawks v Owls", opts[1].Key)
}

func TestDashboardModel_ReloadsOnDataChange(t *testing.T) {
	s := newStore(t)
	m := NewDashboardModel(s)
	assert.Zero(t, m.dashboard.Unpaid)

	addGame(t, s, time.Now().Format(time.DateOnly))

	next, _ := m.Update(DataChangedMsg{})
	m = next.(DashboardModel)
	assert.Equal(t, 1, m.dashboard.Unpaid)
	assert.Contains(t, m.View(), "Hawks v Owls")
}

func TestExportModel_ExportAll(t *testing.T) {
	s := newStore(t)

	_, err := s.AddExpense(context.Background(), ledger.NewExpense{
		Date:        "2024-05-01",
		Description: "Parking",
		Amount:      decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)

	m := NewExportModel(export.NewService(s), s, time.UTC)
	dir := filepath.Join(t.TempDir(), "out")

	summary, err := m.exportAll(dir)
	require.NoError(t, err)
	assert.Contains(t, summary, "Parking")

	for _, name := range []string{"expenses.csv", "mileage.csv", "refassist.xlsx", "games.ics", "summary.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestSyncModel_Disabled(t *testing.T) {
	s := newStore(t)
	addGame(t, s, "2024-05-01")

	m := NewSyncModel(nil, nil, s.ClearAll)
	assert.Contains(t, m.View(), "disabled")

	next, _ := m.Update(m.clearCmd()())
	m = next.(SyncModel)

	assert.Empty(t, s.State().Games)
	assert.Contains(t, m.message, "cleared")
}
