package models

import "github.com/shopspring/decimal"

// Invoice is an expense paid by one creditor and owed jointly by its sharers.
type Invoice struct {
	// ID is the unique identifier for the invoice (UUID format).
	ID string

	// FestivalID is the festival this invoice belongs to.
	FestivalID string

	// Title is a short description (e.g., "Fuel", "Beer").
	Title string

	// Amount is the total paid by the creditor. Never negative.
	Amount decimal.Decimal

	// CreditorID is the member who paid the invoice.
	CreditorID string

	// SharerIDs are the members who split the amount equally, in stored order.
	// The creditor may or may not be one of them.
	SharerIDs []string

	// CreatedAt is the Unix timestamp when the invoice was recorded.
	CreatedAt int64
}

// References reports whether the member is the creditor or a sharer.
func (i *Invoice) References(memberID string) bool {
	if i.CreditorID == memberID {
		return true
	}
	for _, id := range i.SharerIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
