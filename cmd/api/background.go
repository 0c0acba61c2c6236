package main

import (
	"context"
	"time"
)

// recomputeDailyAnalyticsEveryNight rolls up yesterday's visits into daily
// aggregate rows shortly after midnight. The aggregation is a pure replay of
// visit rows, so a missed or repeated run self-corrects on the next pass.
func (app *application) recomputeDailyAnalyticsEveryNight() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 0, 15, 0, 0, now.Location()).AddDate(0, 0, 1)
			time.Sleep(time.Until(next))

			app.recomputeDailyAnalytics(time.Now().AddDate(0, 0, -1))
		}
	}()
}

func (app *application) recomputeDailyAnalytics(day time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	storeIDs, err := app.store.Visits.StoreIDsWithVisits(ctx, day)
	if err != nil {
		app.logger.Errorw("nightly analytics: listing visited stores failed", "error", err)
		return
	}

	var failed int
	for _, storeID := range storeIDs {
		if _, err := app.analytics.GenerateDaily(ctx, storeID, day); err != nil {
			failed++
			app.logger.Errorw("nightly analytics: aggregation failed", "store_id", storeID, "error", err)
		}
	}

	app.logger.Infow("nightly analytics complete",
		"date", day.Format("2006-01-02"),
		"stores", len(storeIDs),
		"failed", failed,
	)
}
