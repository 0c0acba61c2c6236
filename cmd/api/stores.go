package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"locality/internal/authz"
	"locality/internal/domain/roles"
	"locality/internal/domain/stores"

	"github.com/go-chi/chi/v5"
)

type CreateStorePayload struct {
	Name           string            `json:"name" validate:"required,max=120"`
	Category       string            `json:"category" validate:"required,storecategory"`
	Description    *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address        string            `json:"address" validate:"required,max=255"`
	PhoneNumber    string            `json:"phone_number" validate:"required,phonenumber"`
	Website        *string           `json:"website,omitempty" validate:"omitempty,url,max=255"`
	SocialMedia    map[string]string `json:"social_media,omitempty"`
	OperatingHours map[string]string `json:"operating_hours,omitempty"`
}

// createStoreHandler godoc
//
//	@Summary		Create a store listing
//	@Description	Creates a store owned by the authenticated user. Requires the create grant on stores.
//	@Tags			stores
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateStorePayload	true	"Store payload"
//	@Success		201		{object}	stores.Store
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores [post]
func (app *application) createStoreHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if d := authz.Authorize(user, nil, roles.ActionCreate); !d.Allowed {
		app.forbiddenResponse(w, r, d.RequiredPermission)
		return
	}

	var payload CreateStorePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	exists, err := app.store.Stores.CheckIfStoreExists(r.Context(), payload.Name, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if exists {
		app.badRequestResponse(w, r, fmt.Errorf("you already have a store named %q", payload.Name))
		return
	}

	code, err := app.publicCodes.EncodeInt64([]int64{user.ID, time.Now().UnixNano() % 100000})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	store := &stores.Store{
		OwnerID:        user.ID,
		PublicCode:     code,
		Name:           strings.TrimSpace(payload.Name),
		Category:       payload.Category,
		Description:    payload.Description,
		Address:        strings.TrimSpace(payload.Address),
		PhoneNumber:    strings.TrimSpace(payload.PhoneNumber),
		Website:        payload.Website,
		SocialMedia:    payload.SocialMedia,
		OperatingHours: payload.OperatingHours,
	}

	if err := app.store.Stores.Create(r.Context(), store); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, store); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listStoresHandler godoc
//
//	@Summary		List store listings
//	@Description	Public listing. Anonymous callers only see verified, active stores.
//	@Tags			stores
//	@Produce		json
//	@Param			category	query		string	false	"store|freelancer|service|tourism"
//	@Param			page		query		int		false	"page number (default 1)"
//	@Param			limit		query		int		false	"page size (default 20, max 60)"
//	@Success		200			{array}		stores.StoreListing
//	@Failure		500			{object}	error
//	@Router			/stores [get]
func (app *application) listStoresHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	q := r.URL.Query()

	filter := stores.StoreFilter{
		Page:  readInt(q.Get("page"), 1),
		Limit: readInt(q.Get("limit"), 20),
		// Only admins see unverified listings in the index.
		VerifiedOnly: user == nil || !user.HasRole(roles.RoleAdmin),
	}
	if c := strings.TrimSpace(q.Get("category")); c != "" {
		filter.Category = &c
	}

	out, err := app.store.Stores.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyStoresHandler godoc
//
//	@Summary		List own stores
//	@Description	Every store owned by the caller, including unverified and deactivated ones
//	@Tags			stores
//	@Produce		json
//	@Success		200	{array}		stores.StoreListing
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/mine [get]
func (app *application) listMyStoresHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	out, err := app.store.Stores.GetOwnedStores(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getStoreHandler godoc
//
//	@Summary		Get one store
//	@Description	Verified and active stores are public; otherwise owner, admin or a read grant is required. Each allowed read records a visit.
//	@Tags			stores
//	@Produce		json
//	@Param			storeID	path		int	true	"Store ID"
//	@Success		200		{object}	stores.Store
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Router			/stores/{storeID} [get]
func (app *application) getStoreHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.Authorize(user, store, roles.ActionRead); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	// Visit tracking piggybacks on the read. It must never fail the read
	// itself, so errors stop here.
	app.trackVisit(w, r, store)

	if err := app.jsonResponse(w, http.StatusOK, store); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateStorePayload struct {
	Name           *string           `json:"name,omitempty" validate:"omitempty,max=120"`
	Category       *string           `json:"category,omitempty" validate:"omitempty,storecategory"`
	Description    *string           `json:"description,omitempty" validate:"omitempty,max=2000"`
	Address        *string           `json:"address,omitempty" validate:"omitempty,max=255"`
	PhoneNumber    *string           `json:"phone_number,omitempty" validate:"omitempty,phonenumber"`
	Website        *string           `json:"website,omitempty" validate:"omitempty,url,max=255"`
	SocialMedia    map[string]string `json:"social_media,omitempty"`
	OperatingHours map[string]string `json:"operating_hours,omitempty"`
}

// updateStoreHandler godoc
//
//	@Summary		Update a store
//	@Description	Owner or a user with the update grant on stores
//	@Tags			stores
//	@Accept			json
//	@Produce		json
//	@Param			storeID	path		int					true	"Store ID"
//	@Param			payload	body		UpdateStorePayload	true	"Fields to update"
//	@Success		200		{object}	stores.Store
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/{storeID} [patch]
func (app *application) updateStoreHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.Authorize(user, store, roles.ActionUpdate); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	var payload UpdateStorePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.Category != nil {
		updates["category"] = *payload.Category
	}
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Address != nil {
		updates["address"] = strings.TrimSpace(*payload.Address)
	}
	if payload.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*payload.PhoneNumber)
	}
	if payload.Website != nil {
		updates["website"] = *payload.Website
	}
	if payload.SocialMedia != nil {
		updates["social_media"] = payload.SocialMedia
	}
	if payload.OperatingHours != nil {
		updates["operating_hours"] = payload.OperatingHours
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("no fields to update"))
		return
	}

	if err := app.store.Stores.Update(r.Context(), store.ID, updates); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	updated, err := app.store.Stores.GetByID(r.Context(), store.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteStoreHandler godoc
//
//	@Summary		Deactivate a store
//	@Description	Soft-disables the listing; visit history is retained
//	@Tags			stores
//	@Produce		json
//	@Param			storeID	path		int	true	"Store ID"
//	@Success		200		{object}	map[string]string
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/stores/{storeID} [delete]
func (app *application) deleteStoreHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.Authorize(user, store, roles.ActionDelete); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	if err := app.store.Stores.Deactivate(r.Context(), store.ID); err != nil {
		if errors.Is(err, stores.ErrStoreNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "store deactivated",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// storeFromURL loads the store named by the storeID route param. Writes the
// error response and returns ok=false when the id is bad or unknown: a
// missing store is always 404, never 403.
func (app *application) storeFromURL(w http.ResponseWriter, r *http.Request) (*stores.Store, bool) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil || storeID <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid store ID"))
		return nil, false
	}

	store, err := app.store.Stores.GetByID(r.Context(), storeID)
	if err != nil {
		if errors.Is(err, stores.ErrStoreNotFound) {
			app.notFoundResponse(w, r, err)
			return nil, false
		}
		app.internalServerError(w, r, err)
		return nil, false
	}
	return store, true
}

// denyResponse maps a gate denial onto 401 or 403.
func (app *application) denyResponse(w http.ResponseWriter, r *http.Request, d authz.Decision) {
	if d.Reason == authz.DenyUnauthenticated {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("authentication required"))
		return
	}
	app.forbiddenResponse(w, r, d.RequiredPermission)
}

func readInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
