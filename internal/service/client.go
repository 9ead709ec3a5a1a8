package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// FestivalClient calls FestivalService over the Connect protocol with JSON.
type FestivalClient struct {
	createMember      *connect.Client[CreateMemberRequest, CreateMemberResponse]
	setPartner        *connect.Client[SetPartnerRequest, SetPartnerResponse]
	clearPartner      *connect.Client[ClearPartnerRequest, ClearPartnerResponse]
	createFestival    *connect.Client[CreateFestivalRequest, CreateFestivalResponse]
	getFestival       *connect.Client[GetFestivalRequest, GetFestivalResponse]
	listFestivals     *connect.Client[ListFestivalsRequest, ListFestivalsResponse]
	joinFestival      *connect.Client[JoinFestivalRequest, JoinFestivalResponse]
	leaveFestival     *connect.Client[LeaveFestivalRequest, LeaveFestivalResponse]
	addInvoice        *connect.Client[AddInvoiceRequest, AddInvoiceResponse]
	deleteInvoice     *connect.Client[DeleteInvoiceRequest, DeleteInvoiceResponse]
	previewSettlement *connect.Client[PreviewSettlementRequest, PreviewSettlementResponse]
	closeFestival     *connect.Client[CloseFestivalRequest, CloseFestivalResponse]
	reopenFestival    *connect.Client[ReopenFestivalRequest, ReopenFestivalResponse]
	listTransfers     *connect.Client[ListTransfersRequest, ListTransfersResponse]
}

// NewFestivalClient creates a client for the service at baseURL.
func NewFestivalClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *FestivalClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &FestivalClient{
		createMember:      connect.NewClient[CreateMemberRequest, CreateMemberResponse](httpClient, baseURL+CreateMemberProcedure, opts...),
		setPartner:        connect.NewClient[SetPartnerRequest, SetPartnerResponse](httpClient, baseURL+SetPartnerProcedure, opts...),
		clearPartner:      connect.NewClient[ClearPartnerRequest, ClearPartnerResponse](httpClient, baseURL+ClearPartnerProcedure, opts...),
		createFestival:    connect.NewClient[CreateFestivalRequest, CreateFestivalResponse](httpClient, baseURL+CreateFestivalProcedure, opts...),
		getFestival:       connect.NewClient[GetFestivalRequest, GetFestivalResponse](httpClient, baseURL+GetFestivalProcedure, opts...),
		listFestivals:     connect.NewClient[ListFestivalsRequest, ListFestivalsResponse](httpClient, baseURL+ListFestivalsProcedure, opts...),
		joinFestival:      connect.NewClient[JoinFestivalRequest, JoinFestivalResponse](httpClient, baseURL+JoinFestivalProcedure, opts...),
		leaveFestival:     connect.NewClient[LeaveFestivalRequest, LeaveFestivalResponse](httpClient, baseURL+LeaveFestivalProcedure, opts...),
		addInvoice:        connect.NewClient[AddInvoiceRequest, AddInvoiceResponse](httpClient, baseURL+AddInvoiceProcedure, opts...),
		deleteInvoice:     connect.NewClient[DeleteInvoiceRequest, DeleteInvoiceResponse](httpClient, baseURL+DeleteInvoiceProcedure, opts...),
		previewSettlement: connect.NewClient[PreviewSettlementRequest, PreviewSettlementResponse](httpClient, baseURL+PreviewSettlementProcedure, opts...),
		closeFestival:     connect.NewClient[CloseFestivalRequest, CloseFestivalResponse](httpClient, baseURL+CloseFestivalProcedure, opts...),
		reopenFestival:    connect.NewClient[ReopenFestivalRequest, ReopenFestivalResponse](httpClient, baseURL+ReopenFestivalProcedure, opts...),
		listTransfers:     connect.NewClient[ListTransfersRequest, ListTransfersResponse](httpClient, baseURL+ListTransfersProcedure, opts...),
	}
}

func (c *FestivalClient) CreateMember(ctx context.Context, req *connect.Request[CreateMemberRequest]) (*connect.Response[CreateMemberResponse], error) {
	return c.createMember.CallUnary(ctx, req)
}

func (c *FestivalClient) SetPartner(ctx context.Context, req *connect.Request[SetPartnerRequest]) (*connect.Response[SetPartnerResponse], error) {
	return c.setPartner.CallUnary(ctx, req)
}

func (c *FestivalClient) ClearPartner(ctx context.Context, req *connect.Request[ClearPartnerRequest]) (*connect.Response[ClearPartnerResponse], error) {
	return c.clearPartner.CallUnary(ctx, req)
}

func (c *FestivalClient) CreateFestival(ctx context.Context, req *connect.Request[CreateFestivalRequest]) (*connect.Response[CreateFestivalResponse], error) {
	return c.createFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) GetFestival(ctx context.Context, req *connect.Request[GetFestivalRequest]) (*connect.Response[GetFestivalResponse], error) {
	return c.getFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) ListFestivals(ctx context.Context, req *connect.Request[ListFestivalsRequest]) (*connect.Response[ListFestivalsResponse], error) {
	return c.listFestivals.CallUnary(ctx, req)
}

func (c *FestivalClient) JoinFestival(ctx context.Context, req *connect.Request[JoinFestivalRequest]) (*connect.Response[JoinFestivalResponse], error) {
	return c.joinFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) LeaveFestival(ctx context.Context, req *connect.Request[LeaveFestivalRequest]) (*connect.Response[LeaveFestivalResponse], error) {
	return c.leaveFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) AddInvoice(ctx context.Context, req *connect.Request[AddInvoiceRequest]) (*connect.Response[AddInvoiceResponse], error) {
	return c.addInvoice.CallUnary(ctx, req)
}

func (c *FestivalClient) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	return c.deleteInvoice.CallUnary(ctx, req)
}

func (c *FestivalClient) PreviewSettlement(ctx context.Context, req *connect.Request[PreviewSettlementRequest]) (*connect.Response[PreviewSettlementResponse], error) {
	return c.previewSettlement.CallUnary(ctx, req)
}

func (c *FestivalClient) CloseFestival(ctx context.Context, req *connect.Request[CloseFestivalRequest]) (*connect.Response[CloseFestivalResponse], error) {
	return c.closeFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) ReopenFestival(ctx context.Context, req *connect.Request[ReopenFestivalRequest]) (*connect.Response[ReopenFestivalResponse], error) {
	return c.reopenFestival.CallUnary(ctx, req)
}

func (c *FestivalClient) ListTransfers(ctx context.Context, req *connect.Request[ListTransfersRequest]) (*connect.Response[ListTransfersResponse], error) {
	return c.listTransfers.CallUnary(ctx, req)
}
