package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"locality/internal/authz"
	"locality/internal/domain/analytics"
	"locality/internal/domain/roles"
)

// getStoreAnalyticsHandler godoc
//
//	@Summary		Daily analytics for a store
//	@Description	Owner, admin or a user with the read grant on analytics. Returns one row per day in the window.
//	@Tags			analytics
//	@Produce		json
//	@Param			storeID	path		int		true	"Store ID"
//	@Param			from	query		string	false	"start date YYYY-MM-DD (default 30 days ago)"
//	@Param			to		query		string	false	"end date YYYY-MM-DD (default today)"
//	@Success		200		{array}		analytics.DailyAggregate
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/{storeID}/analytics [get]
func (app *application) getStoreAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	// Analytics are never public, even for verified stores. The carve-out
	// applies only to the stores resource.
	if d := authz.AuthorizeOn(user, analytics.ResourceName, store, roles.ActionRead); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	now := time.Now()
	from, err := readDate(r.URL.Query().Get("from"), now.AddDate(0, 0, -30))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	to, err := readDate(r.URL.Query().Get("to"), now)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if to.Before(from) {
		app.badRequestResponse(w, r, fmt.Errorf("to date is before from date"))
		return
	}

	aggs, err := app.analytics.Range(r.Context(), store.ID, from, to)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, aggs); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getDailyAnalyticsHandler godoc
//
//	@Summary		One day's stored aggregate
//	@Description	Returns the aggregate row as last computed; 404 when the day has not been aggregated yet.
//	@Tags			analytics
//	@Produce		json
//	@Param			storeID	path		int		true	"Store ID"
//	@Param			date	query		string	false	"date YYYY-MM-DD (default yesterday)"
//	@Success		200		{object}	analytics.DailyAggregate
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/{storeID}/analytics/daily [get]
func (app *application) getDailyAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.AuthorizeOn(user, analytics.ResourceName, store, roles.ActionRead); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	date, err := readDate(r.URL.Query().Get("date"), time.Now().AddDate(0, 0, -1))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	agg, err := app.analytics.Daily(r.Context(), store.ID, date)
	if err != nil {
		if errors.Is(err, analytics.ErrAggregateNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, agg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// generateDailyAnalyticsHandler godoc
//
//	@Summary		Recompute one day's aggregate
//	@Description	Replays the day's visits into the aggregate row. Safe to run repeatedly.
//	@Tags			analytics
//	@Produce		json
//	@Param			storeID	path		int		true	"Store ID"
//	@Param			date	query		string	false	"date YYYY-MM-DD (default yesterday)"
//	@Success		200		{object}	analytics.DailyAggregate
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/{storeID}/analytics/daily [post]
func (app *application) generateDailyAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.AuthorizeOn(user, analytics.ResourceName, store, roles.ActionRead); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	date, err := readDate(r.URL.Query().Get("date"), time.Now().AddDate(0, 0, -1))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	agg, err := app.analytics.GenerateDaily(r.Context(), store.ID, date)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, agg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// readDate parses in server-local time: day windows are built from the
// date's location, and the nightly job works in local time too, so a manual
// recompute must bucket the exact same visits.
func readDate(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}
