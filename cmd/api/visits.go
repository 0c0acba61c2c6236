package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"locality/internal/domain/stores"
	"locality/internal/domain/visits"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// trackVisit records a page view for an allowed store read. It never fails
// the request it rides on; tracking errors are logged and dropped. The visit
// id goes out in the X-Visit-ID header so the client can close the visit or
// attach section interactions later.
func (app *application) trackVisit(w http.ResponseWriter, r *http.Request, store *stores.Store) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	in := &visits.TrackVisitInput{
		StoreID:   store.ID,
		SessionID: sessionID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
	if user := getUserFromContext(r); user != nil {
		in.UserID = &user.ID
	}

	visit, err := app.store.Visits.TrackVisit(r.Context(), in)
	if err != nil {
		app.logger.Warnw("failed to track visit", "store_id", store.ID, "error", err)
		return
	}

	w.Header().Set("X-Visit-ID", strconv.FormatInt(visit.ID, 10))
}

// endVisitHandler godoc
//
//	@Summary		End a visit
//	@Description	Closes an open visit and records its duration
//	@Tags			visits
//	@Produce		json
//	@Param			visitID	path		int	true	"Visit ID"
//	@Success		200		{object}	visits.Visit
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/visits/{visitID}/end [post]
func (app *application) endVisitHandler(w http.ResponseWriter, r *http.Request) {
	visitID, err := strconv.ParseInt(chi.URLParam(r, "visitID"), 10, 64)
	if err != nil || visitID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid visit ID"))
		return
	}

	visit, err := app.store.Visits.EndVisit(r.Context(), visitID)
	if err != nil {
		if errors.Is(err, visits.ErrVisitNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, visit); err != nil {
		app.internalServerError(w, r, err)
	}
}

// recordInteractionHandler godoc
//
//	@Summary		Record a section interaction
//	@Description	Counts a menu or gallery view against an open visit
//	@Tags			visits
//	@Produce		json
//	@Param			visitID	path		int		true	"Visit ID"
//	@Param			section	path		string	true	"menu|gallery"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/visits/{visitID}/sections/{section} [post]
func (app *application) recordInteractionHandler(w http.ResponseWriter, r *http.Request) {
	visitID, err := strconv.ParseInt(chi.URLParam(r, "visitID"), 10, 64)
	if err != nil || visitID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid visit ID"))
		return
	}

	section := chi.URLParam(r, "section")
	if section != visits.SectionMenu && section != visits.SectionGallery {
		app.badRequestResponse(w, r, fmt.Errorf("unknown section %q", section))
		return
	}

	visit, err := app.store.Visits.GetVisitByID(r.Context(), visitID)
	if err != nil {
		if errors.Is(err, visits.ErrVisitNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Visits.RecordInteraction(r.Context(), visit.ID, visit.StoreID, section); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{
		"message": "interaction recorded",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
