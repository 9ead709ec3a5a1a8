package service

import "github.com/mmynk/myfestival/internal/middleware"

// FestivalServiceName is the fully-qualified name of the festival service.
const FestivalServiceName = "myfestival.v1.FestivalService"

// Procedure paths of FestivalService.
const (
	CreateMemberProcedure      = "/" + FestivalServiceName + "/CreateMember"
	SetPartnerProcedure        = "/" + FestivalServiceName + "/SetPartner"
	ClearPartnerProcedure      = "/" + FestivalServiceName + "/ClearPartner"
	CreateFestivalProcedure    = "/" + FestivalServiceName + "/CreateFestival"
	GetFestivalProcedure       = "/" + FestivalServiceName + "/GetFestival"
	ListFestivalsProcedure     = "/" + FestivalServiceName + "/ListFestivals"
	JoinFestivalProcedure      = "/" + FestivalServiceName + "/JoinFestival"
	LeaveFestivalProcedure     = "/" + FestivalServiceName + "/LeaveFestival"
	AddInvoiceProcedure        = "/" + FestivalServiceName + "/AddInvoice"
	DeleteInvoiceProcedure     = "/" + FestivalServiceName + "/DeleteInvoice"
	PreviewSettlementProcedure = "/" + FestivalServiceName + "/PreviewSettlement"
	CloseFestivalProcedure     = "/" + FestivalServiceName + "/CloseFestival"
	ReopenFestivalProcedure    = "/" + FestivalServiceName + "/ReopenFestival"
	ListTransfersProcedure     = "/" + FestivalServiceName + "/ListTransfers"
)

// AuthPolicy returns the access rules of FestivalService: reads are public,
// festival lifecycle and membership creation are reserved to organizers.
func AuthPolicy() middleware.Policy {
	return middleware.Policy{
		Public: map[string]bool{
			GetFestivalProcedure:       true,
			ListFestivalsProcedure:     true,
			PreviewSettlementProcedure: true,
			ListTransfersProcedure:     true,
		},
		Organizer: map[string]bool{
			CreateMemberProcedure:   true,
			CreateFestivalProcedure: true,
			CloseFestivalProcedure:  true,
			ReopenFestivalProcedure: true,
		},
	}
}
