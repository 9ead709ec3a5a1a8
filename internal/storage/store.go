// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/myfestival/internal/models"
)

var (
	// ErrNotFound is returned when a member, festival or invoice does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFestivalClosed is returned when invoices or participation of a closed
	// festival are changed.
	ErrFestivalClosed = errors.New("festival is closed")

	// ErrParticipantInUse is returned when a participant leaves a festival while
	// still being creditor or sharer of one of its invoices.
	ErrParticipantInUse = errors.New("participant is referenced by an invoice")

	// ErrNotParticipant is returned when an invoice references a member who has
	// not joined the festival.
	ErrNotParticipant = errors.New("member has not joined the festival")

	// ErrSelfPartner is returned when a member is paired with themselves.
	ErrSelfPartner = errors.New("member cannot partner with themselves")
)

// Store defines the interface for festival storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateMember persists a new member. ID and CreatedAt are populated by the store.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// ListMembers retrieves all members ordered by name.
	ListMembers(ctx context.Context) ([]*models.Member, error)

	// SetPartner pairs two members, clearing any previous partner of either
	// side so that pairing stays symmetric.
	SetPartner(ctx context.Context, memberID, partnerID string) error

	// ClearPartner removes the pairing of the member and of their partner.
	ClearPartner(ctx context.Context, memberID string) error

	// CreateFestival persists a new, open festival.
	CreateFestival(ctx context.Context, festival *models.Festival) error

	// GetFestival retrieves a festival without its aggregate collections.
	GetFestival(ctx context.Context, festivalID string) (*models.Festival, error)

	// ListFestivals retrieves all festivals, most recent start date first.
	ListFestivals(ctx context.Context) ([]*models.Festival, error)

	// JoinFestival adds a member to the festival participants. Joining twice is a no-op.
	JoinFestival(ctx context.Context, festivalID, memberID string) error

	// LeaveFestival removes a member from the festival participants.
	LeaveFestival(ctx context.Context, festivalID, memberID string) error

	// CreateInvoice persists a new invoice with its sharers.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// ListInvoices retrieves the invoices of a festival in creation order.
	ListInvoices(ctx context.Context, festivalID string) ([]models.Invoice, error)

	// DeleteInvoice removes an invoice of an open festival.
	DeleteInvoice(ctx context.Context, invoiceID string) error

	// ListTransfers retrieves the transfers of a festival in generation order.
	ListTransfers(ctx context.Context, festivalID string) ([]models.Transfer, error)

	// LoadFestival returns the festival aggregate from one consistent read.
	// It does not take the festival write lock, so it never waits on a
	// running close or reopen.
	LoadFestival(ctx context.Context, festivalID string) (*models.Festival, error)

	// WithFestival runs fn inside one transaction that holds a write lock on
	// the festival. The transaction commits if fn returns nil and rolls back
	// otherwise.
	WithFestival(ctx context.Context, festivalID string, fn func(ctx context.Context, tx FestivalTx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// FestivalTx is the set of operations available on a locked festival.
type FestivalTx interface {
	// Load returns the festival aggregate: participants (with partners),
	// invoices (with sharers) and existing transfers.
	Load(ctx context.Context) (*models.Festival, error)

	// InsertTransfers persists the transfers. IDs and CreatedAt are populated.
	InsertTransfers(ctx context.Context, transfers []models.Transfer) error

	// DeleteTransfers removes every transfer of the festival and returns how
	// many were deleted.
	DeleteTransfers(ctx context.Context) (int, error)

	// SetClosed updates the closed flag and records the lifecycle event.
	SetClosed(ctx context.Context, closed bool, updateInfo string) error
}
