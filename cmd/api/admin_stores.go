package main

import (
	"context"
	"net/http"
	"time"

	"locality/internal/authz"
	"locality/internal/domain/roles"
	"locality/internal/mailer"
)

type VerifyStorePayload struct {
	IsVerified        *bool  `json:"is_verified" validate:"required"`
	VerificationNotes string `json:"verification_notes" validate:"max=1000"`
}

// verifyStoreHandler godoc
//
//	@Summary		Verify or reject a store
//	@Description	Sets the verification outcome. Owning the store grants no access here; the verify grant (or admin) is required.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			storeID	path		int					true	"Store ID"
//	@Param			payload	body		VerifyStorePayload	true	"Verification outcome"
//	@Success		200		{object}	stores.Store
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/stores/{storeID}/verify [put]
func (app *application) verifyStoreHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := app.storeFromURL(w, r)
	if !ok {
		return
	}
	user := getUserFromContext(r)

	if d := authz.Authorize(user, store, roles.ActionVerify); !d.Allowed {
		app.denyResponse(w, r, d)
		return
	}

	var payload VerifyStorePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	updated, err := app.store.Stores.SetVerification(r.Context(), store.ID, *payload.IsVerified, payload.VerificationNotes, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if updated.IsVerified && !store.IsVerified {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			owner, err := app.store.Users.GetByID(ctx, updated.OwnerID)
			if err != nil {
				app.logger.Errorw("failed to load store owner for verification email", "store_id", updated.ID, "error", err)
				return
			}
			data := struct {
				Username  string
				StoreName string
			}{Username: owner.FirstName, StoreName: updated.Name}
			if _, err := app.mailer.Send(mailer.StoreVerifiedTemplate, owner.FirstName, owner.Email, data); err != nil {
				app.logger.Errorw("failed to send verification email", "store_id", updated.ID, "error", err)
			}
		}()
	}

	if err := app.jsonResponse(w, http.StatusOK, updated); err != nil {
		app.internalServerError(w, r, err)
	}
}
