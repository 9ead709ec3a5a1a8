package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/myfestival/internal/models"
)

// AddInvoice records an expense paid by the creditor and shared by the sharers.
func (s *FestivalService) AddInvoice(ctx context.Context, req *connect.Request[AddInvoiceRequest]) (*connect.Response[AddInvoiceResponse], error) {
	slog.Info("AddInvoice request received",
		"festival_id", req.Msg.FestivalID,
		"amount", req.Msg.Amount.String(),
		"sharers_count", len(req.Msg.SharerIDs),
	)

	if err := validateInvoiceRequest(req.Msg); err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		FestivalID: req.Msg.FestivalID,
		Title:      strings.TrimSpace(req.Msg.Title),
		Amount:     req.Msg.Amount.Round(2),
		CreditorID: orCaller(ctx, req.Msg.CreditorID),
		SharerIDs:  req.Msg.SharerIDs,
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		slog.Warn("AddInvoice failed", "festival_id", req.Msg.FestivalID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Invoice created", "invoice_id", invoice.ID, "festival_id", invoice.FestivalID)
	inv := toInvoice(invoice)
	return connect.NewResponse(&AddInvoiceResponse{Invoice: &inv}), nil
}

func validateInvoiceRequest(msg *AddInvoiceRequest) *connect.Error {
	if msg.FestivalID == "" {
		return invalid("festival_id is required")
	}
	if strings.TrimSpace(msg.Title) == "" {
		return invalid("title is required")
	}
	if msg.Amount.IsNegative() {
		return invalid("amount must not be negative")
	}
	if len(msg.SharerIDs) == 0 {
		return invalid("at least one sharer is required")
	}
	seen := make(map[string]bool, len(msg.SharerIDs))
	for _, id := range msg.SharerIDs {
		if id == "" {
			return invalid("sharer ids must not be empty")
		}
		if seen[id] {
			return invalid("sharer %s listed twice", id)
		}
		seen[id] = true
	}
	return nil
}

// DeleteInvoice removes an invoice of an open festival.
func (s *FestivalService) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	if err := s.store.DeleteInvoice(ctx, req.Msg.InvoiceID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Invoice deleted", "invoice_id", req.Msg.InvoiceID)
	return connect.NewResponse(&DeleteInvoiceResponse{}), nil
}
