package models

import "github.com/shopspring/decimal"

// Transfer is a payment generated when a festival is closed.
type Transfer struct {
	// ID is the unique identifier for the transfer (UUID format).
	ID string

	// FestivalID is the festival this transfer settles.
	FestivalID string

	// RecipientID is the participant being repaid.
	RecipientID string

	// PayerID is the participant paying down their debt.
	PayerID string

	// Amount is the payment amount, always positive.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the festival was closed.
	CreatedAt int64
}
