package models

import "github.com/shopspring/decimal"

// Update info values recorded on a festival after a lifecycle event.
const (
	UpdateFestivalCreated  = "festival_created"
	UpdateUserJoined       = "user_joined"
	UpdateUserLeft         = "user_left"
	UpdateNewInvoice       = "new_invoice"
	UpdateInvoiceDeleted   = "invoice_deleted"
	UpdateFestivalClosed   = "festival_closed"
	UpdateFestivalReopened = "festival_reopened"
)

// Festival is the settlement aggregate: its participants, the invoices they
// share and, while closed, the transfers that settle them.
type Festival struct {
	// ID is the unique identifier for the festival (UUID format).
	ID string

	// Title is the human-readable, unique name of the festival.
	Title string

	// Info is a free-form description.
	Info string

	// CreatorID is the member who created the festival.
	CreatorID string

	// StartDate and EndDate use the YYYY-MM-DD layout.
	StartDate string
	EndDate   string

	// Closed is true once the festival has been settled.
	// Open festivals never have transfers; closed ones always have the full set.
	Closed bool

	// UpdateInfo names the last lifecycle event (one of the Update* constants).
	UpdateInfo string

	// ModifiedAt is the Unix timestamp of the last change.
	ModifiedAt int64

	// Participants, Invoices and Transfers are only populated when the
	// aggregate has been loaded for settlement.
	Participants []*Participant
	Invoices     []Invoice
	Transfers    []Transfer
}

// Participant is a member as seen by the settlement engine of one festival.
type Participant struct {
	ID        string
	Name      string
	PartnerID string

	// Balance is the transient net amount: positive means the participant is
	// owed money, negative means they owe money. It is reset by every balance
	// calculation and never persisted.
	Balance decimal.Decimal
}

// HasPartner reports whether the participant is paired with someone.
func (p *Participant) HasPartner() bool {
	return p.PartnerID != ""
}

// Participant returns the participant with the given ID, or nil.
func (f *Festival) Participant(id string) *Participant {
	for _, p := range f.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}
