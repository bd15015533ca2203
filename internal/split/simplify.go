// Package split holds the pure settlement math: reducing a group's net
// balances to a minimal transfer set, and netting raw per-expense debts
// between member pairs. Nothing in this package touches storage.
package split

import (
	"math"

	"github.com/SmartSplit/smart-split-backend/types"
)

// Epsilon is the cent threshold below which balances and transfers are
// treated as settled. Amounts at or below it are floating point noise.
const Epsilon = 0.01

// RoundCents rounds to two decimal places, half away from zero.
func RoundCents(v float64) float64 {
	if v < 0 {
		return -math.Floor(-v*100+0.5) / 100
	}
	return math.Floor(v*100+0.5) / 100
}

type party struct {
	balance   types.Balance
	remaining float64 // always positive
}

// Simplify reduces a set of net balances to a minimal list of transfers using
// greedy largest-creditor / largest-debtor matching. Each iteration pairs the
// biggest outstanding creditor with the biggest outstanding debtor and moves
// min(creditor, debtor) between them, which settles at least one of the two,
// so the result has at most n-1 payments for n non-zero balances.
//
// The input does not have to be perfectly zero-sum; upstream rounding residue
// is tolerated and whoever is left under Epsilon is simply dropped. Ties
// between equal-magnitude parties resolve to the earliest input position,
// which keeps the output deterministic for a given input ordering.
func Simplify(balances []types.Balance) []types.Payment {
	var creditors, debtors []*party
	for _, b := range balances {
		switch {
		case b.NetAmount > Epsilon:
			creditors = append(creditors, &party{balance: b, remaining: b.NetAmount})
		case b.NetAmount < -Epsilon:
			debtors = append(debtors, &party{balance: b, remaining: -b.NetAmount})
		}
	}

	var payments []types.Payment
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)
		creditor := creditors[ci]
		debtor := debtors[di]

		amount := RoundCents(math.Min(creditor.remaining, debtor.remaining))
		if amount > Epsilon {
			payments = append(payments, types.Payment{
				FromMemberID:      debtor.balance.MemberID,
				FromDisplayName:   debtor.balance.DisplayName,
				FromIsPlaceholder: debtor.balance.IsPlaceholder,
				ToMemberID:        creditor.balance.MemberID,
				ToDisplayName:     creditor.balance.DisplayName,
				ToIsPlaceholder:   creditor.balance.IsPlaceholder,
				Amount:            amount,
			})
		}

		creditor.remaining -= amount
		debtor.remaining -= amount
		if creditor.remaining <= Epsilon {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtor.remaining <= Epsilon {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	return payments
}

// largest returns the index of the party with the biggest remaining amount.
// Strict comparison keeps the first occurrence on ties.
func largest(parties []*party) int {
	best := 0
	for i, p := range parties {
		if p.remaining > parties[best].remaining {
			best = i
		}
	}
	return best
}
