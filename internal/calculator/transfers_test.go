package calculator

import (
	"errors"
	"testing"

	"github.com/mmynk/myfestival/internal/models"
)

type wantTransfer struct {
	recipient, payer, amount string
}

func checkTransfers(t *testing.T, got []models.Transfer, want []wantTransfer) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.RecipientID != w.recipient || g.PayerID != w.payer || g.Amount.StringFixed(2) != w.amount {
			t.Errorf("transfer %d = %s <- %s %s, want %s <- %s %s", i,
				g.RecipientID, g.PayerID, g.Amount.StringFixed(2), w.recipient, w.payer, w.amount)
		}
		if g.FestivalID != "fest" {
			t.Errorf("transfer %d festival = %q, want fest", i, g.FestivalID)
		}
	}
}

func checkSettled(t *testing.T, participants []*models.Participant, transfers []models.Transfer) {
	t.Helper()
	for id, rest := range residuals(participants, transfers) {
		if !rest.IsZero() {
			t.Errorf("%s left with residual %s", id, rest.StringFixed(2))
		}
	}
}

func settle(t *testing.T, f *models.Festival) []models.Transfer {
	t.Helper()
	if err := CalculateShares(f); err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	transfers, err := CalculateTransfers(f, f.Participants)
	if err != nil {
		t.Fatalf("CalculateTransfers() error = %v", err)
	}
	return transfers
}

func TestCalculateTransfers_Scenarios(t *testing.T) {
	t.Run("partners settle first", func(t *testing.T) {
		users := []string{"U1", "U2", "U3"}
		f := newFestival(users, [][2]string{{"U1", "U2"}},
			invoice("Fuel", "60.00", "U3", users...),
			invoice("Food", "200.00", "U2", users...),
			invoice("Beer", "150.25", "U1", "U1", "U2"),
		)
		transfers := settle(t, f)
		checkTransfers(t, transfers, []wantTransfer{
			{"U2", "U1", "11.55"},
			{"U2", "U3", "26.66"},
		})
		checkSettled(t, f.Participants, transfers)
	})

	t.Run("one creditor repaid by two sharers", func(t *testing.T) {
		users := []string{"U1", "U2", "U3"}
		f := newFestival(users, nil, invoice("Camping", "100.00", "U1", users...))
		transfers := settle(t, f)
		checkTransfers(t, transfers, []wantTransfer{
			{"U1", "U2", "33.33"},
			{"U1", "U3", "33.33"},
		})
		checkSettled(t, f.Participants, transfers)
	})

	t.Run("creditor sole sharer needs no transfer", func(t *testing.T) {
		f := newFestival([]string{"U1", "U2"}, nil, invoice("Snacks", "9.99", "U1", "U1"))
		transfers := settle(t, f)
		if len(transfers) != 0 {
			t.Errorf("got %d transfers, want none", len(transfers))
		}
	})

	t.Run("ten participants with two couples", func(t *testing.T) {
		users := []string{"EW", "LB", "MJ", "MN", "PL", "RV", "CP", "TB", "TN", "OK"}
		var withoutTN []string
		for _, u := range users {
			if u != "TN" {
				withoutTN = append(withoutTN, u)
			}
		}
		f := newFestival(users, [][2]string{{"TB", "TN"}, {"MJ", "MN"}},
			invoice("Tanken 1", "66.57", "EW", users...),
			invoice("Tanken 2", "67.03", "MN", users...),
			invoice("Bier", "153.5", "MN", withoutTN...),
			invoice("DM", "17.51", "MN", users...),
			invoice("Tanken 3", "50.0", "PL", users...),
			invoice("Kaufland", "215.0", "PL", users...),
			invoice("Tanken 4", "80.0", "RV", users...),
		)
		transfers := settle(t, f)
		checkTransfers(t, transfers, []wantTransfer{
			{"MN", "MJ", "66.68"},
			{"MN", "EW", "0.12"},
			{"MN", "LB", "66.68"},
			{"MN", "CP", "37.89"},
			{"PL", "CP", "28.77"},
			{"PL", "OK", "66.65"},
			{"PL", "TB", "66.65"},
			{"PL", "TN", "36.26"},
			{"RV", "TN", "13.34"},
		})
		checkSettled(t, f.Participants, transfers)
	})
}

func TestCalculateTransfers_PayerSelection(t *testing.T) {
	tests := []struct {
		name     string
		ids      []string
		partners [][2]string
		balances map[string]string
		want     []wantTransfer
	}{
		{
			name:     "partner is picked before earlier payers",
			ids:      []string{"R", "X", "P"},
			partners: [][2]string{{"R", "P"}},
			balances: map[string]string{"R": "30", "X": "-10", "P": "-20"},
			want:     []wantTransfer{{"R", "P", "20.00"}, {"R", "X", "10.00"}},
		},
		{
			name:     "payers without partner come before partnered payers",
			ids:      []string{"R", "A", "B", "C"},
			partners: [][2]string{{"A", "B"}},
			balances: map[string]string{"R": "30", "A": "-10", "B": "0", "C": "-20"},
			want:     []wantTransfer{{"R", "C", "20.00"}, {"R", "A", "10.00"}},
		},
		{
			name:     "settled partner falls through to partnered payer",
			ids:      []string{"R", "P", "X", "Y"},
			partners: [][2]string{{"R", "P"}, {"X", "Y"}},
			balances: map[string]string{"R": "10", "P": "0", "X": "-10", "Y": "0"},
			want:     []wantTransfer{{"R", "X", "10.00"}},
		},
		{
			name:     "payer pool is shared across recipients",
			ids:      []string{"R1", "R2", "P"},
			balances: map[string]string{"R1": "5", "R2": "7.50", "P": "-12.50"},
			want:     []wantTransfer{{"R1", "P", "5.00"}, {"R2", "P", "7.50"}},
		},
		{
			name:     "partner paying another recipient first",
			ids:      []string{"R1", "R2", "P", "X"},
			partners: [][2]string{{"R2", "P"}},
			balances: map[string]string{"R1": "10", "R2": "10", "P": "-15", "X": "-5"},
			want:     []wantTransfer{{"R1", "X", "5.00"}, {"R1", "P", "5.00"}, {"R2", "P", "10.00"}},
		},
		{
			name:     "all settled",
			ids:      []string{"A", "B"},
			balances: map[string]string{"A": "0", "B": "0"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFestival(tt.ids, tt.partners)
			for id, b := range tt.balances {
				f.Participant(id).Balance = d(b)
			}

			transfers, err := CalculateTransfers(f, f.Participants)
			if err != nil {
				t.Fatalf("CalculateTransfers() error = %v", err)
			}
			checkTransfers(t, transfers, tt.want)
			checkSettled(t, f.Participants, transfers)

			for id, b := range tt.balances {
				if got := balanceOf(f, id); got != d(b).StringFixed(2) {
					t.Errorf("%s balance changed to %s", id, got)
				}
			}
		})
	}
}

func TestCalculateTransfers_Imbalance(t *testing.T) {
	f := newFestival([]string{"A", "B"}, nil)
	f.Participant("A").Balance = d("10")
	f.Participant("B").Balance = d("-5")

	transfers, err := CalculateTransfers(f, f.Participants)
	if !errors.Is(err, ErrSettlementImbalance) {
		t.Fatalf("CalculateTransfers() error = %v, want ErrSettlementImbalance", err)
	}
	if transfers != nil {
		t.Errorf("expected no transfers on failure, got %d", len(transfers))
	}
}

func TestCalculateTransfers_ExcessDebt(t *testing.T) {
	f := newFestival([]string{"A", "B"}, nil)
	f.Participant("A").Balance = d("5")
	f.Participant("B").Balance = d("-10")

	transfers, err := CalculateTransfers(f, f.Participants)
	if !errors.Is(err, ErrSettlementImbalance) {
		t.Fatalf("CalculateTransfers() error = %v, want ErrSettlementImbalance", err)
	}
	if transfers != nil {
		t.Errorf("expected no transfers on failure, got %d", len(transfers))
	}
	if got := balanceOf(f, "B"); got != "-10.00" {
		t.Errorf("B balance changed to %s", got)
	}
}

func TestCalculateTransfers_NonMemberCreditorImbalance(t *testing.T) {
	f := newFestival([]string{"U1", "U2"}, nil, invoice("Fuel", "30", "U9", "U1", "U2"))
	if err := CalculateShares(f); err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	if _, err := CalculateTransfers(f, f.Participants); !errors.Is(err, ErrSettlementImbalance) {
		t.Fatalf("CalculateTransfers() error = %v, want ErrSettlementImbalance", err)
	}
}

func TestCalculateTransfers_NonMemberSharerImbalance(t *testing.T) {
	f := newFestival([]string{"U1", "U2"}, nil, invoice("Fuel", "30", "U1", "U1", "U2", "U9"))
	if err := CalculateShares(f); err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	if _, err := CalculateTransfers(f, f.Participants); !errors.Is(err, ErrSettlementImbalance) {
		t.Fatalf("CalculateTransfers() error = %v, want ErrSettlementImbalance", err)
	}
}
