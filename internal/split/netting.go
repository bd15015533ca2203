package split

import (
	"sort"

	"github.com/SmartSplit/smart-split-backend/types"
)

type memberInfo struct {
	name        string
	placeholder bool
}

type pairKey struct {
	from string
	to   string
}

// NetFromExpenses computes "who actually owes whom, per original expense":
// every split participant owes the expense payer their share, debts between
// the same ordered pair are summed, and opposite directions between the same
// two members collapse into a single net payment.
//
// This is a best-effort view: a split for the payer themself is skipped
// (self-debt is meaningless), and any payer or participant without a usable
// ID is skipped rather than failing the whole computation, so one malformed
// expense never blanks the settlement view.
func NetFromExpenses(expenses []types.ExpenseRecord) []types.Payment {
	gross := make(map[pairKey]float64)
	members := make(map[string]memberInfo)

	for i := range expenses {
		exp := &expenses[i]
		payerID, payerPlaceholder := exp.PayerID()
		if payerID == "" {
			continue
		}
		registerMember(members, payerID, exp.PayerName, payerPlaceholder)

		for j := range exp.Splits {
			sp := &exp.Splits[j]
			participantID, participantPlaceholder := sp.ParticipantID()
			if participantID == "" || participantID == payerID {
				continue
			}
			registerMember(members, participantID, sp.ParticipantName, participantPlaceholder)
			gross[pairKey{from: participantID, to: payerID}] += sp.ShareAmount
		}
	}

	// Canonical unordered pairs, sorted so the output order is stable.
	seen := make(map[pairKey]bool)
	var pairs []pairKey
	for key := range gross {
		canonical := key
		if canonical.from > canonical.to {
			canonical.from, canonical.to = canonical.to, canonical.from
		}
		if !seen[canonical] {
			seen[canonical] = true
			pairs = append(pairs, canonical)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})

	var payments []types.Payment
	for _, pair := range pairs {
		forward := gross[pairKey{from: pair.from, to: pair.to}]
		backward := gross[pairKey{from: pair.to, to: pair.from}]
		net := RoundCents(forward - backward)

		switch {
		case net > Epsilon:
			payments = append(payments, newPayment(members, pair.from, pair.to, net))
		case net < -Epsilon:
			payments = append(payments, newPayment(members, pair.to, pair.from, -net))
		}
	}

	return payments
}

func registerMember(members map[string]memberInfo, id, name string, placeholder bool) {
	if _, ok := members[id]; !ok {
		members[id] = memberInfo{name: name, placeholder: placeholder}
	}
}

func newPayment(members map[string]memberInfo, fromID, toID string, amount float64) types.Payment {
	from := members[fromID]
	to := members[toID]
	return types.Payment{
		FromMemberID:      fromID,
		FromDisplayName:   from.name,
		FromIsPlaceholder: from.placeholder,
		ToMemberID:        toID,
		ToDisplayName:     to.name,
		ToIsPlaceholder:   to.placeholder,
		Amount:            amount,
	}
}
