package service

import "github.com/shopspring/decimal"

// Member is the wire form of a member.
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PartnerID string `json:"partner_id,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Festival is the wire form of a festival header.
type Festival struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Info       string `json:"info,omitempty"`
	CreatorID  string `json:"creator_id,omitempty"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Closed     bool   `json:"closed"`
	UpdateInfo string `json:"update_info"`
	ModifiedAt int64  `json:"modified_at"`
}

// Invoice is the wire form of an invoice. Amounts travel as decimal strings.
type Invoice struct {
	ID         string          `json:"id"`
	FestivalID string          `json:"festival_id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	CreditorID string          `json:"creditor_id"`
	SharerIDs  []string        `json:"sharer_ids"`
	CreatedAt  int64           `json:"created_at"`
}

// Transfer is a payment from payer to recipient.
type Transfer struct {
	ID          string          `json:"id,omitempty"`
	FestivalID  string          `json:"festival_id"`
	RecipientID string          `json:"recipient_id"`
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   int64           `json:"created_at,omitempty"`
}

// Balance summarises one participant. Net > 0 means the participant is owed money.
type Balance struct {
	ParticipantID string          `json:"participant_id"`
	Name          string          `json:"name"`
	Paid          decimal.Decimal `json:"paid"`
	Owed          decimal.Decimal `json:"owed"`
	Net           decimal.Decimal `json:"net"`
}

type CreateMemberRequest struct {
	Name string `json:"name"`
}

type CreateMemberResponse struct {
	Member *Member `json:"member"`
}

type SetPartnerRequest struct {
	MemberID  string `json:"member_id"`
	PartnerID string `json:"partner_id"`
}

type SetPartnerResponse struct{}

type ClearPartnerRequest struct {
	MemberID string `json:"member_id"`
}

type ClearPartnerResponse struct{}

type CreateFestivalRequest struct {
	Title     string `json:"title"`
	Info      string `json:"info,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type CreateFestivalResponse struct {
	Festival *Festival `json:"festival"`
}

type GetFestivalRequest struct {
	FestivalID string `json:"festival_id"`
}

type GetFestivalResponse struct {
	Festival  *Festival  `json:"festival"`
	Invoices  []Invoice  `json:"invoices"`
	Transfers []Transfer `json:"transfers"`
}

type ListFestivalsRequest struct{}

type ListFestivalsResponse struct {
	Festivals []*Festival `json:"festivals"`
}

// JoinFestivalRequest adds a member to a festival. MemberID defaults to the caller.
type JoinFestivalRequest struct {
	FestivalID string `json:"festival_id"`
	MemberID   string `json:"member_id,omitempty"`
}

type JoinFestivalResponse struct{}

// LeaveFestivalRequest removes a member from a festival. MemberID defaults to the caller.
type LeaveFestivalRequest struct {
	FestivalID string `json:"festival_id"`
	MemberID   string `json:"member_id,omitempty"`
}

type LeaveFestivalResponse struct{}

// AddInvoiceRequest records an expense. CreditorID defaults to the caller.
type AddInvoiceRequest struct {
	FestivalID string          `json:"festival_id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	CreditorID string          `json:"creditor_id,omitempty"`
	SharerIDs  []string        `json:"sharer_ids"`
}

type AddInvoiceResponse struct {
	Invoice *Invoice `json:"invoice"`
}

type DeleteInvoiceRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type DeleteInvoiceResponse struct{}

type PreviewSettlementRequest struct {
	FestivalID string `json:"festival_id"`
}

type PreviewSettlementResponse struct {
	Festival  *Festival  `json:"festival"`
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}

type CloseFestivalRequest struct {
	FestivalID string `json:"festival_id"`
}

type CloseFestivalResponse struct {
	Festival  *Festival  `json:"festival"`
	Transfers []Transfer `json:"transfers"`
}

type ReopenFestivalRequest struct {
	FestivalID string `json:"festival_id"`
}

type ReopenFestivalResponse struct {
	Festival         *Festival `json:"festival"`
	DeletedTransfers int       `json:"deleted_transfers"`
}

// Transfer directions relative to ListTransfersRequest.MemberID.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// ListTransfersRequest lists the transfers of a festival. When MemberID is
// set only transfers involving that member are returned, optionally narrowed
// to one direction.
type ListTransfersRequest struct {
	FestivalID string `json:"festival_id"`
	MemberID   string `json:"member_id,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

type ListTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
}
