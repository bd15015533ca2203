package split

import (
	"testing"

	"github.com/SmartSplit/smart-split-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func userExpense(payerID, payerName string, splits ...types.SplitRecord) types.ExpenseRecord {
	return types.ExpenseRecord{
		PayerUserID: strPtr(payerID),
		PayerName:   payerName,
		Splits:      splits,
	}
}

func userSplit(id, name string, share float64) types.SplitRecord {
	return types.SplitRecord{
		ParticipantUserID: strPtr(id),
		ParticipantName:   name,
		ShareAmount:       share,
	}
}

func TestNetFromExpenses_Empty(t *testing.T) {
	assert.Empty(t, NetFromExpenses(nil))
	assert.Empty(t, NetFromExpenses([]types.ExpenseRecord{}))
}

func TestNetFromExpenses_SingleDirection(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 12.50)),
	})

	require.Len(t, payments, 1)
	assert.Equal(t, "bob", payments[0].FromMemberID)
	assert.Equal(t, "alice", payments[0].ToMemberID)
	assert.InDelta(t, 12.50, payments[0].Amount, 0.001)
}

func TestNetFromExpenses_SumsRepeatedPairs(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 10)),
		userExpense("alice", "Alice", userSplit("bob", "Bob", 5.25)),
	})

	require.Len(t, payments, 1)
	assert.InDelta(t, 15.25, payments[0].Amount, 0.001)
}

func TestNetFromExpenses_NetsBidirectionalDebts(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 40)),
		userExpense("bob", "Bob", userSplit("alice", "Alice", 15)),
	})

	require.Len(t, payments, 1)
	assert.Equal(t, "bob", payments[0].FromMemberID)
	assert.Equal(t, "alice", payments[0].ToMemberID)
	assert.InDelta(t, 25.00, payments[0].Amount, 0.001)
}

func TestNetFromExpenses_EqualDebtsCancel(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 20)),
		userExpense("bob", "Bob", userSplit("alice", "Alice", 20)),
	})
	assert.Empty(t, payments)
}

func TestNetFromExpenses_DirectionFlipSymmetry(t *testing.T) {
	forward := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 40)),
		userExpense("bob", "Bob", userSplit("alice", "Alice", 15)),
	})
	flipped := NetFromExpenses([]types.ExpenseRecord{
		userExpense("bob", "Bob", userSplit("alice", "Alice", 40)),
		userExpense("alice", "Alice", userSplit("bob", "Bob", 15)),
	})

	require.Len(t, forward, 1)
	require.Len(t, flipped, 1)
	assert.InDelta(t, forward[0].Amount, flipped[0].Amount, 0.001)
	assert.Equal(t, forward[0].FromMemberID, flipped[0].ToMemberID)
	assert.Equal(t, forward[0].ToMemberID, flipped[0].FromMemberID)
}

func TestNetFromExpenses_SelfDebtExcluded(t *testing.T) {
	// The payer appears in their own split list; that entry must not become a
	// payment from a member to themself.
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice",
			userSplit("alice", "Alice", 10),
			userSplit("bob", "Bob", 10),
		),
	})

	require.Len(t, payments, 1)
	for _, p := range payments {
		assert.NotEqual(t, p.FromMemberID, p.ToMemberID)
	}
	assert.Equal(t, "bob", payments[0].FromMemberID)
	assert.InDelta(t, 10.0, payments[0].Amount, 0.001)
}

func TestNetFromExpenses_SkipsUnidentifiableParties(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		// No payer ID at all: whole record skipped.
		{
			PayerName: "Mystery",
			Splits:    []types.SplitRecord{userSplit("bob", "Bob", 10)},
		},
		// Participant without any ID: that split skipped, rest kept.
		userExpense("alice", "Alice",
			types.SplitRecord{ParticipantName: "Nobody", ShareAmount: 99},
			userSplit("bob", "Bob", 7),
		),
	})

	require.Len(t, payments, 1)
	assert.Equal(t, "bob", payments[0].FromMemberID)
	assert.Equal(t, "alice", payments[0].ToMemberID)
	assert.InDelta(t, 7.0, payments[0].Amount, 0.001)
}

func TestNetFromExpenses_RoundsNetToCents(t *testing.T) {
	// A->B 100.004 against B->A 40.001 nets to exactly 60.00.
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("b", "B", userSplit("a", "A", 100.004)),
		userExpense("a", "A", userSplit("b", "B", 40.001)),
	})

	require.Len(t, payments, 1)
	assert.Equal(t, "a", payments[0].FromMemberID)
	assert.Equal(t, "b", payments[0].ToMemberID)
	assert.Equal(t, 60.00, payments[0].Amount)
}

func TestNetFromExpenses_DropsSubCentNets(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		userExpense("alice", "Alice", userSplit("bob", "Bob", 10.005)),
		userExpense("bob", "Bob", userSplit("alice", "Alice", 10.001)),
	})
	assert.Empty(t, payments)
}

func TestNetFromExpenses_PlaceholderParties(t *testing.T) {
	payments := NetFromExpenses([]types.ExpenseRecord{
		{
			PayerPlaceholderID: strPtr("ph-1"),
			PayerName:          "Guest",
			Splits: []types.SplitRecord{
				userSplit("bob", "Bob", 18),
			},
		},
	})

	require.Len(t, payments, 1)
	assert.Equal(t, "ph-1", payments[0].ToMemberID)
	assert.True(t, payments[0].ToIsPlaceholder)
	assert.False(t, payments[0].FromIsPlaceholder)
}

func TestNetFromExpenses_StableOutputOrder(t *testing.T) {
	records := []types.ExpenseRecord{
		userExpense("c", "C", userSplit("a", "A", 5)),
		userExpense("b", "B", userSplit("a", "A", 3)),
		userExpense("c", "C", userSplit("b", "B", 9)),
	}

	first := NetFromExpenses(records)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NetFromExpenses(records))
	}
}
