package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
)

// position tracks what is left to settle for one participant.
// remaining follows the balance sign: positive is still owed, negative still owes.
type position struct {
	participant *models.Participant
	remaining   decimal.Decimal
}

// CalculateTransfers turns computed balances into the payments that settle
// them. It does not persist anything and leaves the participants' balances as
// they are; the caller stores the transfers and closes the festival.
//
// Algorithm (greedy, partner first):
// - Recipients are participants with a positive balance, in input order
// - The payer pool is every participant who still owes money, shared by all
// recipients and drained as transfers are generated
// - For each recipient, payers are picked until the amount owed reaches zero:
// the recipient's partner if still in the pool, else the first payer without
// a partner, else the first payer
// - Each transfer moves min(still owed, payer debt), rounded to the cent
//
// Returns ErrSettlementImbalance if the pool empties while a recipient is
// still owed money, or if debt remains once every recipient is repaid.
func CalculateTransfers(f *models.Festival, participants []*models.Participant) ([]models.Transfer, error) {
	positions := make([]*position, len(participants))
	for i, p := range participants {
		positions[i] = &position{participant: p, remaining: p.Balance.Round(2)}
	}

	var transfers []models.Transfer
	for _, recipient := range positions {
		if !recipient.remaining.IsPositive() {
			continue
		}

		outstanding := recipient.remaining
		for outstanding.IsPositive() {
			payers := debtors(positions)
			if len(payers) == 0 {
				return nil, fmt.Errorf("%w: %s is still owed %s with no payers left",
					ErrSettlementImbalance, recipient.participant.Name, outstanding.StringFixed(2))
			}

			payer := nextPayer(recipient.participant, payers)
			amount := decimal.Min(outstanding, payer.remaining.Neg()).Round(2)

			transfers = append(transfers, models.Transfer{
				FestivalID:  f.ID,
				RecipientID: recipient.participant.ID,
				PayerID:     payer.participant.ID,
				Amount:      amount,
			})

			payer.remaining = payer.remaining.Add(amount).Round(2)
			outstanding = outstanding.Sub(amount).Round(2)
		}
		recipient.remaining = decimal.Zero
	}

	if left := debtors(positions); len(left) > 0 {
		return nil, fmt.Errorf("%w: %s still owes %s with no recipients left",
			ErrSettlementImbalance, left[0].participant.Name, left[0].remaining.Neg().StringFixed(2))
	}

	return transfers, nil
}

// debtors filters the positions that still owe money, keeping input order.
func debtors(positions []*position) []*position {
	var out []*position
	for _, p := range positions {
		if p.remaining.IsNegative() {
			out = append(out, p)
		}
	}
	return out
}

// nextPayer picks who pays the recipient next. payers must not be empty.
func nextPayer(recipient *models.Participant, payers []*position) *position {
	if recipient.HasPartner() {
		for _, p := range payers {
			if p.participant.ID == recipient.PartnerID {
				return p
			}
		}
	}
	for _, p := range payers {
		if !p.participant.HasPartner() {
			return p
		}
	}
	return payers[0]
}
