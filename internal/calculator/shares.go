package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
)

// SplitEvenly divides amount into n shares that add up exactly to amount.
// The amount is rounded half-up to the cent first. Every share gets the
// floored cent quotient and the leftover cents go one each to the first
// shares, so 100.00 over three sharers gives 33.34, 33.33, 33.33.
func SplitEvenly(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	cents := amount.Round(2).Shift(2).IntPart()
	base, rem := cents/int64(n), cents%int64(n)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		c := base
		if int64(i) < rem {
			c++
		}
		shares[i] = decimal.New(c, -2)
	}
	return shares
}

// CalculateShares computes the balance of every festival participant from
// the festival's invoices.
//
// Algorithm:
// - Reset every participant balance to zero
// - For each invoice: creditor.balance += amount, sharer.balance -= share
//
// Shares come from SplitEvenly. Creditors or sharers who are not festival
// participants are skipped. Nothing is persisted.
func CalculateShares(f *models.Festival) error {
	for _, p := range f.Participants {
		p.Balance = decimal.Zero
	}

	index := participantIndex(f.Participants)
	return allocate(f.Invoices, func(creditorID string, amount decimal.Decimal) {
		if p, ok := index[creditorID]; ok {
			p.Balance = p.Balance.Add(amount)
		}
	}, func(sharerID string, share decimal.Decimal) {
		if p, ok := index[sharerID]; ok {
			p.Balance = p.Balance.Sub(share)
		}
	})
}

// allocate walks the invoices and reports every credit and every share.
// All invoices are validated before the first callback runs.
func allocate(invoices []models.Invoice, credit, debit func(id string, amount decimal.Decimal)) error {
	for i := range invoices {
		if err := validateInvoice(&invoices[i]); err != nil {
			return err
		}
	}

	for i := range invoices {
		inv := &invoices[i]
		amount := inv.Amount.Round(2)
		credit(inv.CreditorID, amount)
		for j, share := range SplitEvenly(amount, len(inv.SharerIDs)) {
			debit(inv.SharerIDs[j], share)
		}
	}
	return nil
}

func validateInvoice(inv *models.Invoice) error {
	if len(inv.SharerIDs) == 0 {
		return fmt.Errorf("%w: invoice %q has no sharers", ErrInvalidInvoiceState, inv.Title)
	}
	if inv.Amount.IsNegative() {
		return fmt.Errorf("%w: invoice %q has negative amount %s", ErrInvalidInvoiceState, inv.Title, inv.Amount)
	}
	return nil
}

func participantIndex(participants []*models.Participant) map[string]*models.Participant {
	index := make(map[string]*models.Participant, len(participants))
	for _, p := range participants {
		index[p.ID] = p
	}
	return index
}
