package cloud_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/cloud"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

func TestSnapshot_StateRecomputesCounter(t *testing.T) {
	snap := cloud.Snapshot{
		Games:   []ledger.Game{{ID: 3, Date: "2024-05-01"}},
		Mileage: []ledger.Mileage{{ID: 8, Date: "2024-05-01", Miles: decimal.NewFromInt(4)}},
	}

	st := snap.State()
	assert.Equal(t, int64(8), st.LastID)
	assert.Equal(t, []ledger.Expense{}, st.Expenses)
}

func TestSnapshotOf_OmitsCounter(t *testing.T) {
	st := ledger.State{
		LastID:   40,
		Games:    []ledger.Game{{ID: 1, Date: "2024-05-01", Pay: decimal.NewFromInt(50)}},
		Expenses: []ledger.Expense{{ID: 2, Date: "2024-05-01", Amount: decimal.RequireFromString("12.5"), GameID: ledger.Ref(1)}},
		Mileage:  []ledger.Mileage{},
	}

	data, err := json.Marshal(cloud.SnapshotOf(st))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"games": [{"id":1,"date":"2024-05-01","time":"","pay":50,"updated":false,"paid":false}],
		"expenses": [{"id":2,"date":"2024-05-01","amount":12.5,"gameId":1}],
		"mileage": []
	}`, string(data))
}

func TestSnapshotOf_Copies(t *testing.T) {
	st := ledger.State{Expenses: []ledger.Expense{{ID: 2, GameID: ledger.Ref(1)}}}

	snap := cloud.SnapshotOf(st)
	*snap.Expenses[0].GameID = 9

	assert.Equal(t, int64(1), *st.Expenses[0].GameID)
}
