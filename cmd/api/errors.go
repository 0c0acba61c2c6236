package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusNotFound, "not found")
}

// unauthorizedErrorResponse: no usable identity on the request. Always 401.
func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

// forbiddenResponse: identity present, gate said no. The response names the
// grant that was missing but never anything about other users' data.
func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, requiredPermission string) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "required_permission", requiredPermission)

	type envelope struct {
		Success            bool   `json:"success"`
		Message            string `json:"message"`
		Status             int    `json:"status"`
		RequiredPermission string `json:"required_permission,omitempty"`
	}

	writeJSON(w, http.StatusForbidden, &envelope{
		Success:            false,
		Message:            "insufficient privileges",
		Status:             http.StatusForbidden,
		RequiredPermission: requiredPermission,
	})
}

func (app *application) forbiddenRoleResponse(w http.ResponseWriter, r *http.Request, requiredRoles ...string) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "required_roles", requiredRoles)

	type envelope struct {
		Success       bool     `json:"success"`
		Message       string   `json:"message"`
		Status        int      `json:"status"`
		RequiredRoles []string `json:"required_roles,omitempty"`
	}

	writeJSON(w, http.StatusForbidden, &envelope{
		Success:       false,
		Message:       "insufficient privileges",
		Status:        http.StatusForbidden,
		RequiredRoles: requiredRoles,
	})
}

// failedValidationResponse turns validator errors into per-field messages.
func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("validation failed", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("failed on the %q rule", fe.Tag())
	}

	type envelope struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Status  int               `json:"status"`
		Fields  map[string]string `json:"fields"`
	}

	writeJSON(w, http.StatusUnprocessableEntity, &envelope{
		Success: false,
		Message: "validation failed",
		Status:  http.StatusUnprocessableEntity,
		Fields:  fields,
	})
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}
