package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoice(title, amount, creditor string, sharers ...string) models.Invoice {
	return models.Invoice{
		ID:         title,
		FestivalID: "fest",
		Title:      title,
		Amount:     d(amount),
		CreditorID: creditor,
		SharerIDs:  sharers,
	}
}

// newFestival builds a festival with participants named after their IDs.
// partners lists pairs that are linked in both directions.
func newFestival(ids []string, partners [][2]string, invoices ...models.Invoice) *models.Festival {
	f := &models.Festival{ID: "fest", Title: "Festival1", Invoices: invoices}
	for _, id := range ids {
		f.Participants = append(f.Participants, &models.Participant{ID: id, Name: id})
	}
	for _, pair := range partners {
		f.Participant(pair[0]).PartnerID = pair[1]
		f.Participant(pair[1]).PartnerID = pair[0]
	}
	return f
}

func balanceOf(f *models.Festival, id string) string {
	return f.Participant(id).Balance.StringFixed(2)
}

// residuals applies the transfers to the balances: recipients are repaid,
// payers pay off their debt.
func residuals(participants []*models.Participant, transfers []models.Transfer) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(participants))
	for _, p := range participants {
		out[p.ID] = p.Balance
	}
	for _, t := range transfers {
		out[t.RecipientID] = out[t.RecipientID].Sub(t.Amount)
		out[t.PayerID] = out[t.PayerID].Add(t.Amount)
	}
	return out
}

func assertZeroSum(t *testing.T, participants []*models.Participant) {
	t.Helper()
	sum := decimal.Zero
	for _, p := range participants {
		sum = sum.Add(p.Balance)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %s, want 0", sum)
	}
}
