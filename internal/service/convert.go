package service

import (
	"github.com/mmynk/myfestival/internal/calculator"
	"github.com/mmynk/myfestival/internal/models"
)

func toMember(m *models.Member) *Member {
	return &Member{
		ID:        m.ID,
		Name:      m.Name,
		PartnerID: m.PartnerID,
		CreatedAt: m.CreatedAt,
	}
}

func toFestival(f *models.Festival) *Festival {
	return &Festival{
		ID:         f.ID,
		Title:      f.Title,
		Info:       f.Info,
		CreatorID:  f.CreatorID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Closed:     f.Closed,
		UpdateInfo: f.UpdateInfo,
		ModifiedAt: f.ModifiedAt,
	}
}

func toInvoice(inv *models.Invoice) Invoice {
	return Invoice{
		ID:         inv.ID,
		FestivalID: inv.FestivalID,
		Title:      inv.Title,
		Amount:     inv.Amount,
		CreditorID: inv.CreditorID,
		SharerIDs:  inv.SharerIDs,
		CreatedAt:  inv.CreatedAt,
	}
}

func toInvoices(invoices []models.Invoice) []Invoice {
	out := make([]Invoice, len(invoices))
	for i := range invoices {
		out[i] = toInvoice(&invoices[i])
	}
	return out
}

func toTransfers(transfers []models.Transfer) []Transfer {
	out := make([]Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = Transfer{
			ID:          t.ID,
			FestivalID:  t.FestivalID,
			RecipientID: t.RecipientID,
			PayerID:     t.PayerID,
			Amount:      t.Amount,
			CreatedAt:   t.CreatedAt,
		}
	}
	return out
}

func toBalances(balances []calculator.MemberBalance) []Balance {
	out := make([]Balance, len(balances))
	for i, b := range balances {
		out[i] = Balance{
			ParticipantID: b.ParticipantID,
			Name:          b.Name,
			Paid:          b.Paid,
			Owed:          b.Owed,
			Net:           b.Net,
		}
	}
	return out
}
