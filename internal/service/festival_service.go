package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/myfestival/internal/middleware"
	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/settlement"
	"github.com/mmynk/myfestival/internal/storage"
)

const dateLayout = "2006-01-02"

// FestivalService implements the Connect FestivalService.
type FestivalService struct {
	store      storage.Store
	settlement *settlement.Service
}

// NewFestivalService creates a new FestivalService.
func NewFestivalService(store storage.Store, settle *settlement.Service) *FestivalService {
	return &FestivalService{store: store, settlement: settle}
}

// NewFestivalServiceHandler builds an HTTP handler serving every procedure of
// svc. It returns the path prefix to mount the handler on.
func NewFestivalServiceHandler(svc *FestivalService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	handle(mux, CreateMemberProcedure, svc.CreateMember, opts)
	handle(mux, SetPartnerProcedure, svc.SetPartner, opts)
	handle(mux, ClearPartnerProcedure, svc.ClearPartner, opts)
	handle(mux, CreateFestivalProcedure, svc.CreateFestival, opts)
	handle(mux, GetFestivalProcedure, svc.GetFestival, opts)
	handle(mux, ListFestivalsProcedure, svc.ListFestivals, opts)
	handle(mux, JoinFestivalProcedure, svc.JoinFestival, opts)
	handle(mux, LeaveFestivalProcedure, svc.LeaveFestival, opts)
	handle(mux, AddInvoiceProcedure, svc.AddInvoice, opts)
	handle(mux, DeleteInvoiceProcedure, svc.DeleteInvoice, opts)
	handle(mux, PreviewSettlementProcedure, svc.PreviewSettlement, opts)
	handle(mux, CloseFestivalProcedure, svc.CloseFestival, opts)
	handle(mux, ReopenFestivalProcedure, svc.ReopenFestival, opts)
	handle(mux, ListTransfersProcedure, svc.ListTransfers, opts)

	return "/" + FestivalServiceName + "/", mux
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func invalid(format string, args ...any) *connect.Error {
	return toConnectError(fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...)))
}

// CreateMember registers a new member.
func (s *FestivalService) CreateMember(ctx context.Context, req *connect.Request[CreateMemberRequest]) (*connect.Response[CreateMemberResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalid("name is required")
	}

	member := &models.Member{Name: name}
	if err := s.store.CreateMember(ctx, member); err != nil {
		slog.Error("CreateMember failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member created", "member_id", member.ID)
	return connect.NewResponse(&CreateMemberResponse{Member: toMember(member)}), nil
}

// SetPartner pairs two members.
func (s *FestivalService) SetPartner(ctx context.Context, req *connect.Request[SetPartnerRequest]) (*connect.Response[SetPartnerResponse], error) {
	if req.Msg.MemberID == "" || req.Msg.PartnerID == "" {
		return nil, invalid("member_id and partner_id are required")
	}

	if err := s.store.SetPartner(ctx, req.Msg.MemberID, req.Msg.PartnerID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Partner set", "member_id", req.Msg.MemberID, "partner_id", req.Msg.PartnerID)
	return connect.NewResponse(&SetPartnerResponse{}), nil
}

// ClearPartner removes a member's pairing on both sides.
func (s *FestivalService) ClearPartner(ctx context.Context, req *connect.Request[ClearPartnerRequest]) (*connect.Response[ClearPartnerResponse], error) {
	if req.Msg.MemberID == "" {
		return nil, invalid("member_id is required")
	}

	if err := s.store.ClearPartner(ctx, req.Msg.MemberID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ClearPartnerResponse{}), nil
}

// CreateFestival creates an open festival owned by the caller.
func (s *FestivalService) CreateFestival(ctx context.Context, req *connect.Request[CreateFestivalRequest]) (*connect.Response[CreateFestivalResponse], error) {
	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	start, err := time.Parse(dateLayout, req.Msg.StartDate)
	if err != nil {
		return nil, invalid("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.Msg.EndDate)
	if err != nil {
		return nil, invalid("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, invalid("end_date is before start_date")
	}

	creatorID := middleware.GetMemberID(ctx)
	if _, err := s.store.GetMember(ctx, creatorID); err != nil {
		return nil, toConnectError(err)
	}

	festival := &models.Festival{
		Title:     title,
		Info:      req.Msg.Info,
		CreatorID: creatorID,
		StartDate: req.Msg.StartDate,
		EndDate:   req.Msg.EndDate,
	}
	if err := s.store.CreateFestival(ctx, festival); err != nil {
		slog.Error("CreateFestival failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Festival created", "festival_id", festival.ID, "creator_id", creatorID)
	return connect.NewResponse(&CreateFestivalResponse{Festival: toFestival(festival)}), nil
}

// GetFestival returns a festival with its invoices and transfers.
func (s *FestivalService) GetFestival(ctx context.Context, req *connect.Request[GetFestivalRequest]) (*connect.Response[GetFestivalResponse], error) {
	festival, err := s.store.GetFestival(ctx, req.Msg.FestivalID)
	if err != nil {
		return nil, toConnectError(err)
	}
	invoices, err := s.store.ListInvoices(ctx, festival.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	transfers, err := s.store.ListTransfers(ctx, festival.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetFestivalResponse{
		Festival:  toFestival(festival),
		Invoices:  toInvoices(invoices),
		Transfers: toTransfers(transfers),
	}), nil
}

// ListFestivals returns every festival, most recent first.
func (s *FestivalService) ListFestivals(ctx context.Context, req *connect.Request[ListFestivalsRequest]) (*connect.Response[ListFestivalsResponse], error) {
	festivals, err := s.store.ListFestivals(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*Festival, len(festivals))
	for i, f := range festivals {
		out[i] = toFestival(f)
	}
	return connect.NewResponse(&ListFestivalsResponse{Festivals: out}), nil
}

// JoinFestival adds a member, by default the caller, to a festival.
func (s *FestivalService) JoinFestival(ctx context.Context, req *connect.Request[JoinFestivalRequest]) (*connect.Response[JoinFestivalResponse], error) {
	memberID := orCaller(ctx, req.Msg.MemberID)
	if err := s.store.JoinFestival(ctx, req.Msg.FestivalID, memberID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member joined festival", "festival_id", req.Msg.FestivalID, "member_id", memberID)
	return connect.NewResponse(&JoinFestivalResponse{}), nil
}

// LeaveFestival removes a member, by default the caller, from a festival.
func (s *FestivalService) LeaveFestival(ctx context.Context, req *connect.Request[LeaveFestivalRequest]) (*connect.Response[LeaveFestivalResponse], error) {
	memberID := orCaller(ctx, req.Msg.MemberID)
	if err := s.store.LeaveFestival(ctx, req.Msg.FestivalID, memberID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member left festival", "festival_id", req.Msg.FestivalID, "member_id", memberID)
	return connect.NewResponse(&LeaveFestivalResponse{}), nil
}

func orCaller(ctx context.Context, memberID string) string {
	if memberID != "" {
		return memberID
	}
	return middleware.GetMemberID(ctx)
}
