package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/myfestival/internal/models"
)

// PreviewSettlement returns balances and the transfers a close would produce.
func (s *FestivalService) PreviewSettlement(ctx context.Context, req *connect.Request[PreviewSettlementRequest]) (*connect.Response[PreviewSettlementResponse], error) {
	preview, err := s.settlement.Preview(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&PreviewSettlementResponse{
		Festival:  toFestival(preview.Festival),
		Balances:  toBalances(preview.Balances),
		Transfers: toTransfers(preview.Transfers),
	}), nil
}

// CloseFestival settles a festival and persists its transfers.
func (s *FestivalService) CloseFestival(ctx context.Context, req *connect.Request[CloseFestivalRequest]) (*connect.Response[CloseFestivalResponse], error) {
	festival, err := s.settlement.Close(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&CloseFestivalResponse{
		Festival:  toFestival(festival),
		Transfers: toTransfers(festival.Transfers),
	}), nil
}

// ReopenFestival discards the transfers of a closed festival.
func (s *FestivalService) ReopenFestival(ctx context.Context, req *connect.Request[ReopenFestivalRequest]) (*connect.Response[ReopenFestivalResponse], error) {
	deleted, err := s.settlement.Reopen(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}

	festival, err := s.store.GetFestival(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&ReopenFestivalResponse{
		Festival:         toFestival(festival),
		DeletedTransfers: deleted,
	}), nil
}

// ListTransfers returns the transfers of a festival, optionally only those
// a member receives or pays.
func (s *FestivalService) ListTransfers(ctx context.Context, req *connect.Request[ListTransfersRequest]) (*connect.Response[ListTransfersResponse], error) {
	switch req.Msg.Direction {
	case "", DirectionIncoming, DirectionOutgoing:
	default:
		return nil, invalid("direction must be %q or %q", DirectionIncoming, DirectionOutgoing)
	}
	if req.Msg.Direction != "" && req.Msg.MemberID == "" {
		return nil, invalid("direction requires member_id")
	}

	transfers, err := s.store.ListTransfers(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.MemberID != "" {
		transfers = filterTransfers(transfers, req.Msg.MemberID, req.Msg.Direction)
	}

	return connect.NewResponse(&ListTransfersResponse{Transfers: toTransfers(transfers)}), nil
}

func filterTransfers(transfers []models.Transfer, memberID, direction string) []models.Transfer {
	var out []models.Transfer
	for _, t := range transfers {
		incoming := t.RecipientID == memberID
		outgoing := t.PayerID == memberID
		switch {
		case direction == DirectionIncoming && incoming,
			direction == DirectionOutgoing && outgoing,
			direction == "" && (incoming || outgoing):
			out = append(out, t)
		}
	}
	return out
}
