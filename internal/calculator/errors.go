package calculator

import "errors"

var (
	// ErrInvalidInvoiceState is returned for an invoice that cannot be
	// allocated: it has no sharers or a negative amount.
	ErrInvalidInvoiceState = errors.New("invalid invoice state")

	// ErrSettlementImbalance is returned when the payer pool runs dry before
	// every recipient has been repaid. Balances did not sum to zero, which
	// points at inconsistent data upstream.
	ErrSettlementImbalance = errors.New("settlement imbalance")
)
