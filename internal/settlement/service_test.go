package settlement

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mmynk/myfestival/internal/calculator"
	"github.com/mmynk/myfestival/internal/lock"
	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
	"github.com/mmynk/myfestival/internal/storage/sqlite"
)

type fixture struct {
	store    *sqlite.SQLiteStore
	svc      *Service
	metrics  *Metrics
	spans    *tracetest.SpanRecorder
	festival *models.Festival
	members  map[string]*models.Member
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "settlement.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	metrics := NewMetrics(prometheus.NewRegistry())

	fx := &fixture{
		store:   store,
		svc:     NewService(store, lock.NewLocal(), WithMetrics(metrics), WithTracer(tp.Tracer("test"))),
		metrics: metrics,
		spans:   spans,
		members: make(map[string]*models.Member),
	}

	for _, name := range names {
		m := &models.Member{Name: name}
		require.NoError(t, store.CreateMember(ctx, m))
		fx.members[name] = m
	}

	fx.festival = &models.Festival{Title: "Summer", StartDate: "2026-07-01", EndDate: "2026-07-03"}
	require.NoError(t, store.CreateFestival(ctx, fx.festival))
	for _, name := range names {
		require.NoError(t, store.JoinFestival(ctx, fx.festival.ID, fx.members[name].ID))
	}
	return fx
}

func (fx *fixture) id(name string) string { return fx.members[name].ID }

func (fx *fixture) addInvoice(t *testing.T, amount, creditor string, sharers ...string) {
	t.Helper()
	inv := &models.Invoice{
		FestivalID: fx.festival.ID,
		Title:      "invoice",
		Amount:     decimal.RequireFromString(amount),
		CreditorID: fx.id(creditor),
	}
	for _, s := range sharers {
		inv.SharerIDs = append(inv.SharerIDs, fx.id(s))
	}
	require.NoError(t, fx.store.CreateInvoice(context.Background(), inv))
}

func TestService_Close(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()
	require.NoError(t, fx.store.SetPartner(ctx, fx.id("Alice"), fx.id("Carol")))
	fx.addInvoice(t, "90", "Alice", "Alice", "Bob", "Carol")

	closed, err := fx.svc.Close(ctx, fx.festival.ID)
	require.NoError(t, err)

	assert.True(t, closed.Closed)
	assert.Equal(t, models.UpdateFestivalClosed, closed.UpdateInfo)
	require.Len(t, closed.Transfers, 2)

	// Alice's partner pays first.
	assert.Equal(t, fx.id("Alice"), closed.Transfers[0].RecipientID)
	assert.Equal(t, fx.id("Carol"), closed.Transfers[0].PayerID)
	assert.Equal(t, "30.00", closed.Transfers[0].Amount.StringFixed(2))
	assert.Equal(t, fx.id("Bob"), closed.Transfers[1].PayerID)
	assert.Equal(t, "30.00", closed.Transfers[1].Amount.StringFixed(2))

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, closed.Transfers[0].ID, stored[0].ID)

	f, err := fx.store.GetFestival(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.True(t, f.Closed)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.closes.WithLabelValues(outcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(fx.metrics.transfers))
	require.Len(t, fx.spans.Ended(), 1)
	assert.Equal(t, "settlement.Close", fx.spans.Ended()[0].Name())
}

func TestService_CloseTwice(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob")
	fx.addInvoice(t, "10", "Alice", "Bob")
	ctx := context.Background()

	_, err := fx.svc.Close(ctx, fx.festival.ID)
	require.NoError(t, err)

	_, err = fx.svc.Close(ctx, fx.festival.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	assert.ErrorIs(t, err, ErrPrecondition)

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "second close must not add transfers")
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.closes.WithLabelValues(outcomePrecondition)))
}

func TestService_CloseWithoutInvoices(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob")

	closed, err := fx.svc.Close(context.Background(), fx.festival.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assert.Empty(t, closed.Transfers)
}

func TestService_CloseInvalidInvoiceRollsBack(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob")
	ctx := context.Background()
	fx.addInvoice(t, "10", "Alice", "Bob")
	fx.addInvoice(t, "25", "Bob") // no sharers

	_, err := fx.svc.Close(ctx, fx.festival.ID)
	require.ErrorIs(t, err, calculator.ErrInvalidInvoiceState)

	f, err := fx.store.GetFestival(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.False(t, f.Closed)

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.closes.WithLabelValues(outcomeInvalidInvoice)))
}

func TestService_CloseUnknownFestival(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Close(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_Reopen(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()
	fx.addInvoice(t, "90", "Alice", "Alice", "Bob", "Carol")

	_, err := fx.svc.Close(ctx, fx.festival.ID)
	require.NoError(t, err)

	deleted, err := fx.svc.Reopen(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	f, err := fx.store.GetFestival(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.False(t, f.Closed)
	assert.Equal(t, models.UpdateFestivalReopened, f.UpdateInfo)

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	t.Run("reopen of open festival fails", func(t *testing.T) {
		_, err := fx.svc.Reopen(ctx, fx.festival.ID)
		assert.ErrorIs(t, err, ErrNotClosed)
	})

	t.Run("close after reopen sees new invoices", func(t *testing.T) {
		fx.addInvoice(t, "30", "Bob", "Carol")
		closed, err := fx.svc.Close(ctx, fx.festival.ID)
		require.NoError(t, err)

		got := calculatorResiduals(closed)
		for id, r := range got {
			assert.Truef(t, r.IsZero(), "participant %s left with %s", id, r)
		}
	})
}

func TestService_Preview(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob", "Carol")
	ctx := context.Background()
	fx.addInvoice(t, "100", "Alice", "Alice", "Bob", "Carol")

	preview, err := fx.svc.Preview(ctx, fx.festival.ID)
	require.NoError(t, err)
	require.Len(t, preview.Balances, 3)
	assert.Equal(t, "66.66", preview.Balances[0].Net.StringFixed(2))
	require.Len(t, preview.Transfers, 2)
	assert.Equal(t, "33.33", preview.Transfers[0].Amount.StringFixed(2))

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Empty(t, stored, "preview does not persist")

	closed, err := fx.svc.Close(ctx, fx.festival.ID)
	require.NoError(t, err)

	preview, err = fx.svc.Preview(ctx, fx.festival.ID)
	require.NoError(t, err)
	require.Len(t, preview.Transfers, 2)
	assert.Equal(t, closed.Transfers[0].ID, preview.Transfers[0].ID)
}

func TestService_PreviewDoesNotWaitForClose(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob")
	fx.addInvoice(t, "10", "Alice", "Bob")
	ctx := context.Background()

	err := fx.store.WithFestival(ctx, fx.festival.ID, func(context.Context, storage.FestivalTx) error {
		readCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		preview, err := fx.svc.Preview(readCtx, fx.festival.ID)
		if assert.NoError(t, err) {
			assert.Len(t, preview.Transfers, 1)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestService_ConcurrentClose(t *testing.T) {
	fx := newFixture(t, "Alice", "Bob")
	fx.addInvoice(t, "10", "Alice", "Bob")
	ctx := context.Background()

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Close(ctx, fx.festival.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyClosed)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := fx.store.ListTransfers(ctx, fx.festival.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, outcomeOK, outcome(nil))
	assert.Equal(t, outcomePrecondition, outcome(ErrNotClosed))
	assert.Equal(t, outcomeImbalance, outcome(calculator.ErrSettlementImbalance))
	assert.Equal(t, outcomeNotFound, outcome(storage.ErrNotFound))
	assert.Equal(t, outcomeError, outcome(assert.AnError))
}

// calculatorResiduals recomputes balances of a closed festival and applies
// its transfers; every entry must end at zero.
func calculatorResiduals(f *models.Festival) map[string]decimal.Decimal {
	if err := calculator.CalculateShares(f); err != nil {
		panic(err)
	}
	out := make(map[string]decimal.Decimal, len(f.Participants))
	for _, p := range f.Participants {
		out[p.ID] = p.Balance
	}
	for _, tr := range f.Transfers {
		out[tr.RecipientID] = out[tr.RecipientID].Sub(tr.Amount)
		out[tr.PayerID] = out[tr.PayerID].Add(tr.Amount)
	}
	return out
}
