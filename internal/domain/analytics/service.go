package analytics

import (
	"context"
	"time"

	"locality/internal/domain/visits"
)

// Service replays raw visit data into daily aggregate rows.
type Service struct {
	visits     visits.Store
	aggregates Store
}

func NewService(visitStore visits.Store, aggregateStore Store) *Service {
	return &Service{visits: visitStore, aggregates: aggregateStore}
}

// GenerateDaily recomputes the aggregate for one (store, date) pair from the
// underlying visit and interaction rows and upserts the result. Running it
// twice over the same data writes the same row. Two concurrent runs race on
// the upsert with last-write-wins; the unique key still prevents duplicates.
func (s *Service) GenerateDaily(ctx context.Context, storeID int64, date time.Time) (*DailyAggregate, error) {
	vs, err := s.visits.ListByStoreAndDay(ctx, storeID, date)
	if err != nil {
		return nil, err
	}

	ins, err := s.visits.ListInteractionsByStoreAndDay(ctx, storeID, date)
	if err != nil {
		return nil, err
	}

	agg := Compute(storeID, date, vs, ins)
	if err := s.aggregates.Upsert(ctx, agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// Range returns the stored aggregates for a date window.
func (s *Service) Range(ctx context.Context, storeID int64, from, to time.Time) ([]DailyAggregate, error) {
	return s.aggregates.ListByStore(ctx, storeID, from, to)
}

// Daily returns the stored aggregate for one date without recomputing it.
// ErrAggregateNotFound means the day has not been aggregated yet.
func (s *Service) Daily(ctx context.Context, storeID int64, date time.Time) (*DailyAggregate, error) {
	return s.aggregates.GetByStoreAndDate(ctx, storeID, date)
}
