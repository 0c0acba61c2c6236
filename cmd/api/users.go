package main

import (
	"net/http"

	"locality/internal/domain/users"
)

type userKey string

const userCtx userKey = "user"

// getUserFromContext returns the authenticated user or nil for anonymous
// requests. Handlers pass the result straight into the authorization gate.
func getUserFromContext(r *http.Request) *users.User {
	if user, ok := r.Context().Value(userCtx).(*users.User); ok {
		return user
	}
	return nil
}

type UpdateUserPayload struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,phonenumber"`
}

// updateUserHandler godoc
//
//	@Summary		Update own profile
//	@Description	Updates the authenticated user's profile fields
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateUserPayload	true	"Fields to update"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users [put]
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	updates := map[string]interface{}{}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.Phone != nil {
		updates["phone"] = *payload.Phone
	}

	if err := app.store.Users.UpdateUser(r.Context(), user.ID, updates); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "profile updated",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deactivateUserHandler godoc
//
//	@Summary		Deactivate own account
//	@Description	Soft-disables the account and revokes the refresh token
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Security		ApiKeyAuth
//	@Router			/users [delete]
func (app *application) deactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.store.Users.Deactivate(r.Context(), user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.DeleteRefreshToken(r.Context(), user.ID); err != nil {
		app.logger.Errorw("failed to revoke refresh token on deactivation", "user_id", user.ID, "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "account deactivated",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
