package application

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/partner"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultReconcileConcurrency = 4

// SweepReport summarises one reconciliation pass.
type SweepReport struct {
	Checked     int       `json:"checked"`
	Orphans     int       `json:"orphans"`
	Unreachable int       `json:"unreachable"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// Reconciler compares stored trips with the bookings they reference and
// records every reference that no longer resolves in the orphan ledger.
type Reconciler struct {
	tx          uow.Manager
	flights     partner.FlightService
	hotels      partner.HotelService
	orphans     *OrphanService
	concurrency int
	logger      *zap.Logger

	mu sync.Mutex
}

// NewReconciler creates a Reconciler; a non-positive concurrency selects the default.
func NewReconciler(
	tx uow.Manager,
	flights partner.FlightService,
	hotels partner.HotelService,
	orphans *OrphanService,
	concurrency int,
	logger *zap.Logger,
) *Reconciler {
	if concurrency <= 0 {
		concurrency = defaultReconcileConcurrency
	}
	return &Reconciler{
		tx:          tx,
		flights:     flights,
		hotels:      hotels,
		orphans:     orphans,
		concurrency: concurrency,
		logger:      logger,
	}
}

type tripCheck struct {
	orphans     int
	unreachable int
	// the composite was deleted while it was being checked
	gone bool
}

// Sweep checks every stored trip. Partners that cannot be reached are counted
// and skipped; they are retried on the next pass.
func (r *Reconciler) Sweep(ctx context.Context) (*SweepReport, error) {
	// one sweep at a time; the worker and the manual trigger can overlap
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &SweepReport{StartedAt: time.Now().UTC()}
	trips, err := r.tx.Repositories().TravelAgentBookings().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]tripCheck, len(trips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, trip := range trips {
		i, trip := i, trip
		g.Go(func() error {
			res, err := r.checkTrip(gctx, trip)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Checked = len(trips)
	for _, res := range results {
		report.Orphans += res.orphans
		report.Unreachable += res.unreachable
	}
	report.FinishedAt = time.Now().UTC()

	r.logger.Info("reconciliation sweep finished",
		zap.Int("checked", report.Checked),
		zap.Int("orphans", report.Orphans),
		zap.Int("unreachable", report.Unreachable),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (r *Reconciler) checkTrip(ctx context.Context, trip *travelagent.TravelAgentBooking) (tripCheck, error) {
	var res tripCheck
	tripID := trip.ID()

	_, err := r.tx.Repositories().Bookings().FindByID(ctx, trip.TaxiBookingID())
	if err := r.classify(ctx, &res, tripID, travelagent.ResourceTaxiBooking, trip.TaxiBookingID().String(), err); err != nil || res.gone {
		return res, err
	}

	_, err = r.flights.FindByID(ctx, trip.FlightBookingID())
	if err := r.classify(ctx, &res, tripID, travelagent.ResourceFlightBooking, strconv.FormatInt(trip.FlightBookingID(), 10), err); err != nil || res.gone {
		return res, err
	}

	_, err = r.hotels.FindByID(ctx, trip.HotelBookingID())
	if err := r.classify(ctx, &res, tripID, travelagent.ResourceHotelBooking, strconv.FormatInt(trip.HotelBookingID(), 10), err); err != nil {
		return res, err
	}
	return res, nil
}

// classify turns a lookup result into a ledger entry, an unreachable count or
// nothing. Only a failure to write the ledger aborts the sweep.
func (r *Reconciler) classify(ctx context.Context, res *tripCheck, tripID uuid.UUID, kind travelagent.ResourceKind, resourceID string, lookupErr error) error {
	switch {
	case lookupErr == nil:
		return nil
	case domain.IsNotFound(lookupErr):
		// a concurrent DeleteTrip removes the parts before the composite
		_, err := r.tx.Repositories().TravelAgentBookings().FindByID(ctx, tripID)
		if domain.IsNotFound(err) {
			r.logger.Debug("trip deleted during reconciliation", zap.String("trip_id", tripID.String()))
			res.gone = true
			return nil
		}
		if err != nil {
			r.logger.Warn("failed to re-read trip", zap.String("trip_id", tripID.String()), zap.Error(err))
			res.unreachable++
			return nil
		}
		reason := "trip " + tripID.String() + " references a " + string(kind) + " that no longer exists"
		if err := r.orphans.Record(ctx, &tripID, kind, resourceID, reason, travelagent.SourceReconciliation); err != nil {
			return err
		}
		res.orphans++
	default:
		r.logger.Warn("reconciliation lookup failed",
			zap.String("trip_id", tripID.String()),
			zap.String("kind", string(kind)),
			zap.String("resource_id", resourceID),
			zap.Error(lookupErr),
		)
		res.unreachable++
	}
	return nil
}
