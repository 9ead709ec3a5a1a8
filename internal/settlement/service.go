// Package settlement closes and reopens festivals: it turns the invoices of
// a festival into persisted transfers and back.
package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/myfestival/internal/calculator"
	"github.com/mmynk/myfestival/internal/lock"
	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

const tracerName = "github.com/mmynk/myfestival/internal/settlement"

// Service runs the festival lifecycle.
type Service struct {
	store   storage.Store
	locker  lock.Locker
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records close and reopen outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates a Service. Without WithMetrics the collectors are
// created but not registered.
func NewService(store storage.Store, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:  store,
		locker: locker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Preview is what a close would produce for a festival.
type Preview struct {
	Festival  *models.Festival
	Balances  []calculator.MemberBalance
	Transfers []models.Transfer
}

// Close settles an open festival. Balances are computed from its invoices,
// transfers are generated and persisted, and the festival is marked closed,
// all in one transaction. On any error nothing is persisted.
func (s *Service) Close(ctx context.Context, festivalID string) (*models.Festival, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Close",
		trace.WithAttributes(attribute.String("festival.id", festivalID)))
	defer span.End()

	start := time.Now()
	var closed *models.Festival
	err := s.locker.WithLock(ctx, lock.FestivalKey(festivalID), func(ctx context.Context) error {
		return s.store.WithFestival(ctx, festivalID, func(ctx context.Context, tx storage.FestivalTx) error {
			f, err := tx.Load(ctx)
			if err != nil {
				return err
			}
			if f.Closed {
				return ErrAlreadyClosed
			}

			transfers, err := settle(f)
			if err != nil {
				return err
			}
			if err := tx.InsertTransfers(ctx, transfers); err != nil {
				return err
			}
			if err := tx.SetClosed(ctx, true, models.UpdateFestivalClosed); err != nil {
				return err
			}

			f.Closed = true
			f.UpdateInfo = models.UpdateFestivalClosed
			f.Transfers = transfers
			closed = f
			return nil
		})
	})

	transferCount := 0
	if closed != nil {
		transferCount = len(closed.Transfers)
	}
	s.metrics.observeClose(err, transferCount, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("Close festival failed", "festival_id", festivalID, "error", err)
		return nil, fmt.Errorf("close festival %s: %w", festivalID, err)
	}

	span.SetAttributes(attribute.Int("settlement.transfers", transferCount))
	slog.Info("Festival closed",
		"festival_id", festivalID,
		"participants", len(closed.Participants),
		"invoices", len(closed.Invoices),
		"transfers", transferCount,
	)
	return closed, nil
}

// Reopen deletes every transfer of a closed festival and marks it open
// again. It returns the number of deleted transfers.
func (s *Service) Reopen(ctx context.Context, festivalID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Reopen",
		trace.WithAttributes(attribute.String("festival.id", festivalID)))
	defer span.End()

	start := time.Now()
	deleted := 0
	err := s.locker.WithLock(ctx, lock.FestivalKey(festivalID), func(ctx context.Context) error {
		return s.store.WithFestival(ctx, festivalID, func(ctx context.Context, tx storage.FestivalTx) error {
			f, err := tx.Load(ctx)
			if err != nil {
				return err
			}
			if !f.Closed {
				return ErrNotClosed
			}

			n, err := tx.DeleteTransfers(ctx)
			if err != nil {
				return err
			}
			if err := tx.SetClosed(ctx, false, models.UpdateFestivalReopened); err != nil {
				return err
			}
			deleted = n
			return nil
		})
	})
	s.metrics.observeReopen(err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("Reopen festival failed", "festival_id", festivalID, "error", err)
		return 0, fmt.Errorf("reopen festival %s: %w", festivalID, err)
	}

	span.SetAttributes(attribute.Int("settlement.transfers_deleted", deleted))
	slog.Info("Festival reopened", "festival_id", festivalID, "transfers_deleted", deleted)
	return deleted, nil
}

// Preview computes balances and the transfers a close would generate
// without persisting anything or taking the festival lock. For a closed
// festival the stored transfers are returned instead.
func (s *Service) Preview(ctx context.Context, festivalID string) (*Preview, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Preview",
		trace.WithAttributes(attribute.String("festival.id", festivalID)))
	defer span.End()

	preview, err := s.preview(ctx, festivalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("preview festival %s: %w", festivalID, err)
	}
	return preview, nil
}

func (s *Service) preview(ctx context.Context, festivalID string) (*Preview, error) {
	f, err := s.store.LoadFestival(ctx, festivalID)
	if err != nil {
		return nil, err
	}

	balances, err := calculator.Summarize(f)
	if err != nil {
		return nil, err
	}

	transfers := f.Transfers
	if !f.Closed {
		if transfers, err = settle(f); err != nil {
			return nil, err
		}
	}
	return &Preview{Festival: f, Balances: balances, Transfers: transfers}, nil
}

// settle runs the balance calculator and the transfer generator on f.
func settle(f *models.Festival) ([]models.Transfer, error) {
	if err := calculator.CalculateShares(f); err != nil {
		return nil, err
	}
	return calculator.CalculateTransfers(f, f.Participants)
}
