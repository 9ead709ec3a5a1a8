package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/myfestival/internal/calculator"
	"github.com/mmynk/myfestival/internal/lock"
	"github.com/mmynk/myfestival/internal/settlement"
	"github.com/mmynk/myfestival/internal/storage"
)

// errInvalidRequest marks request validation failures.
var errInvalidRequest = errors.New("invalid request")

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var code connect.Code
	switch {
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, settlement.ErrPrecondition),
		errors.Is(err, storage.ErrFestivalClosed),
		errors.Is(err, storage.ErrParticipantInUse):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, calculator.ErrInvalidInvoiceState),
		errors.Is(err, storage.ErrNotParticipant),
		errors.Is(err, storage.ErrSelfPartner):
		code = connect.CodeInvalidArgument
	case errors.Is(err, lock.ErrBusy), errors.Is(err, lock.ErrLockLost):
		code = connect.CodeUnavailable
	default:
		// Includes calculator.ErrSettlementImbalance, which means stored data
		// is inconsistent.
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
