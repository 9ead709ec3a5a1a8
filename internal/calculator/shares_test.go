package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		n      int
		want   []string
	}{
		{name: "exact split", amount: "60", n: 3, want: []string{"20.00", "20.00", "20.00"}},
		{name: "remainder cent goes to first sharer", amount: "100", n: 3, want: []string{"33.34", "33.33", "33.33"}},
		{name: "two remainder cents", amount: "200", n: 3, want: []string{"66.67", "66.67", "66.66"}},
		{name: "odd cent over two", amount: "150.25", n: 2, want: []string{"75.13", "75.12"}},
		{name: "sub-cent amount rounds half up", amount: "10.005", n: 1, want: []string{"10.01"}},
		{name: "zero amount", amount: "0", n: 2, want: []string{"0.00", "0.00"}},
		{name: "no sharers", amount: "10", n: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitEvenly(d(tt.amount), tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitEvenly() returned %d shares, want %d", len(got), len(tt.want))
			}
			sum := decimal.Zero
			for i, share := range got {
				if share.StringFixed(2) != tt.want[i] {
					t.Errorf("share %d = %s, want %s", i, share.StringFixed(2), tt.want[i])
				}
				sum = sum.Add(share)
			}
			if tt.n > 0 && !sum.Equal(d(tt.amount).Round(2)) {
				t.Errorf("shares sum to %s, want %s", sum, d(tt.amount).Round(2))
			}
		})
	}
}

func TestCalculateShares(t *testing.T) {
	users := []string{"U1", "U2", "U3"}

	t.Run("three invoices with partial sharers", func(t *testing.T) {
		f := newFestival(users, [][2]string{{"U1", "U2"}},
			invoice("Fuel", "60.00", "U3", users...),
			invoice("Food", "200.00", "U2", users...),
			invoice("Beer", "150.25", "U1", "U1", "U2"),
		)
		if err := CalculateShares(f); err != nil {
			t.Fatalf("CalculateShares() error = %v", err)
		}

		// U1: 150.25 - 20 - 66.67 - 75.13
		// U2: 200 - 20 - 66.67 - 75.12
		// U3: 60 - 20 - 66.66
		want := map[string]string{"U1": "-11.55", "U2": "38.21", "U3": "-26.66"}
		for id, w := range want {
			if got := balanceOf(f, id); got != w {
				t.Errorf("%s balance = %s, want %s", id, got, w)
			}
		}
		assertZeroSum(t, f.Participants)
	})

	t.Run("creditor among three sharers", func(t *testing.T) {
		f := newFestival(users, nil, invoice("Camping", "100.00", "U1", users...))
		if err := CalculateShares(f); err != nil {
			t.Fatalf("CalculateShares() error = %v", err)
		}
		want := map[string]string{"U1": "66.66", "U2": "-33.33", "U3": "-33.33"}
		for id, w := range want {
			if got := balanceOf(f, id); got != w {
				t.Errorf("%s balance = %s, want %s", id, got, w)
			}
		}
	})

	t.Run("creditor is the only sharer", func(t *testing.T) {
		f := newFestival(users, nil, invoice("Snacks", "12.50", "U2", "U2"))
		if err := CalculateShares(f); err != nil {
			t.Fatalf("CalculateShares() error = %v", err)
		}
		for _, id := range users {
			if got := balanceOf(f, id); got != "0.00" {
				t.Errorf("%s balance = %s, want 0.00", id, got)
			}
		}
	})

	t.Run("balances are reset on every run", func(t *testing.T) {
		f := newFestival(users, nil, invoice("Fuel", "30", "U1", users...))
		for _, p := range f.Participants {
			p.Balance = d("999")
		}
		for i := 0; i < 2; i++ {
			if err := CalculateShares(f); err != nil {
				t.Fatalf("CalculateShares() error = %v", err)
			}
		}
		if got := balanceOf(f, "U1"); got != "20.00" {
			t.Errorf("U1 balance = %s, want 20.00", got)
		}
	})

	t.Run("non-participants are untouched", func(t *testing.T) {
		f := newFestival([]string{"U1", "U2"}, nil, invoice("Fuel", "30", "U1", "U1", "U2", "U9"))
		if err := CalculateShares(f); err != nil {
			t.Fatalf("CalculateShares() error = %v", err)
		}
		if got := balanceOf(f, "U1"); got != "20.00" {
			t.Errorf("U1 balance = %s, want 20.00", got)
		}
		if got := balanceOf(f, "U2"); got != "-10.00" {
			t.Errorf("U2 balance = %s, want -10.00", got)
		}
	})

	t.Run("invoice without sharers is rejected", func(t *testing.T) {
		f := newFestival(users, nil,
			invoice("Fuel", "30", "U1", users...),
			invoice("Ghost", "10", "U2"),
		)
		err := CalculateShares(f)
		if !errors.Is(err, ErrInvalidInvoiceState) {
			t.Fatalf("CalculateShares() error = %v, want ErrInvalidInvoiceState", err)
		}
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		f := newFestival(users, nil, invoice("Refund", "-5", "U1", users...))
		if err := CalculateShares(f); !errors.Is(err, ErrInvalidInvoiceState) {
			t.Fatalf("CalculateShares() error = %v, want ErrInvalidInvoiceState", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	users := []string{"U1", "U2", "U3"}
	f := newFestival(users, nil,
		invoice("Fuel", "60.00", "U3", users...),
		invoice("Beer", "150.25", "U1", "U1", "U2"),
	)
	f.Participant("U1").Balance = d("1")

	balances, err := Summarize(f)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("Summarize() returned %d balances, want 3", len(balances))
	}

	want := []struct{ paid, owed, net string }{
		{"150.25", "95.13", "55.12"},
		{"0.00", "95.12", "-95.12"},
		{"60.00", "20.00", "40.00"},
	}
	for i, w := range want {
		b := balances[i]
		if b.Paid.StringFixed(2) != w.paid || b.Owed.StringFixed(2) != w.owed || b.Net.StringFixed(2) != w.net {
			t.Errorf("%s = paid %s owed %s net %s, want %s/%s/%s", b.Name,
				b.Paid.StringFixed(2), b.Owed.StringFixed(2), b.Net.StringFixed(2), w.paid, w.owed, w.net)
		}
	}
	if got := balanceOf(f, "U1"); got != "1.00" {
		t.Errorf("Summarize changed U1 balance to %s", got)
	}
}
