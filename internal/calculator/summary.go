package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
)

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	ParticipantID string
	Name          string
	Paid          decimal.Decimal // Total paid as invoice creditor
	Owed          decimal.Decimal // Sum of this participant's invoice shares
	Net           decimal.Decimal // Paid - Owed; positive = owed money
}

// Summarize reports paid, owed and net amounts per participant, in
// participant order, without touching the participants' balances.
func Summarize(f *models.Festival) ([]MemberBalance, error) {
	balances := make([]MemberBalance, len(f.Participants))
	index := make(map[string]*MemberBalance, len(f.Participants))
	for i, p := range f.Participants {
		balances[i] = MemberBalance{ParticipantID: p.ID, Name: p.Name}
		index[p.ID] = &balances[i]
	}

	err := allocate(f.Invoices, func(id string, amount decimal.Decimal) {
		if b, ok := index[id]; ok {
			b.Paid = b.Paid.Add(amount)
		}
	}, func(id string, share decimal.Decimal) {
		if b, ok := index[id]; ok {
			b.Owed = b.Owed.Add(share)
		}
	})
	if err != nil {
		return nil, err
	}

	for i := range balances {
		balances[i].Net = balances[i].Paid.Sub(balances[i].Owed)
	}
	return balances, nil
}
