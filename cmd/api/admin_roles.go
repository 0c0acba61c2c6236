package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"locality/internal/domain/roles"

	"github.com/go-chi/chi/v5"
)

// adminListRolesHandler godoc
//
//	@Summary		List all roles
//	@Tags			admin
//	@Produce		json
//	@Success		200	{array}		roles.Role
//	@Failure		403	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/roles [get]
func (app *application) adminListRolesHandler(w http.ResponseWriter, r *http.Request) {
	out, err := app.store.Roles.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateRolePermissionsPayload struct {
	Permissions roles.PermissionSet `json:"permissions" validate:"required"`
}

// adminUpdateRolePermissionsHandler godoc
//
//	@Summary		Replace a role's permission document
//	@Description	The full permission set is replaced; actions outside the known enum are rejected.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			roleID	path		int								true	"Role ID"
//	@Param			payload	body		UpdateRolePermissionsPayload	true	"Permission document"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/roles/{roleID}/permissions [put]
func (app *application) adminUpdateRolePermissionsHandler(w http.ResponseWriter, r *http.Request) {
	roleID, ok := app.int64Param(w, r, "roleID")
	if !ok {
		return
	}

	var payload UpdateRolePermissionsPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := payload.Permissions.Validate(); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Roles.UpdatePermissions(r.Context(), roleID, payload.Permissions); err != nil {
		if errors.Is(err, roles.ErrRoleNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "permissions updated",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminGetUserRolesHandler godoc
//
//	@Summary		List a user's roles
//	@Tags			admin
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{array}		roles.Role
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/users/{userID}/roles [get]
func (app *application) adminGetUserRolesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.int64Param(w, r, "userID")
	if !ok {
		return
	}

	out, err := app.store.Roles.GetUserRoles(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AssignRolePayload struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

// adminAssignUserRoleHandler godoc
//
//	@Summary		Assign a role to a user
//	@Description	Assigning an already-held role is a no-op.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			userID	path		int					true	"User ID"
//	@Param			payload	body		AssignRolePayload	true	"Role to assign"
//	@Success		201		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/users/{userID}/roles [post]
func (app *application) adminAssignUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.int64Param(w, r, "userID")
	if !ok {
		return
	}

	var payload AssignRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	if err := app.store.Roles.AssignRole(r.Context(), userID, payload.RoleID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{
		"message": "role assigned",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminRemoveUserRoleHandler godoc
//
//	@Summary		Remove a role from a user
//	@Tags			admin
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Param			roleID	path		int	true	"Role ID"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/users/{userID}/roles/{roleID} [delete]
func (app *application) adminRemoveUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.int64Param(w, r, "userID")
	if !ok {
		return
	}
	roleID, ok := app.int64Param(w, r, "roleID")
	if !ok {
		return
	}

	if err := app.store.Roles.RemoveRole(r.Context(), userID, roleID); err != nil {
		if errors.Is(err, roles.ErrRoleNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "role removed",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		app.badRequestResponse(w, r, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return v, true
}
