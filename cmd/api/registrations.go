package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"locality/internal/domain/registrations"
	"locality/internal/domain/storage"
	"locality/internal/domain/stores"
	"locality/internal/mailer"
)

type CreateRegistrationRequestPayload struct {
	BusinessName string  `json:"business_name" validate:"required,max=120"`
	Category     string  `json:"category" validate:"required,storecategory"`
	Address      string  `json:"address" validate:"required,max=255"`
	PhoneNumber  string  `json:"phone_number" validate:"required,phonenumber"`
	ContactEmail string  `json:"contact_email" validate:"required,email,max=255"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Website      *string `json:"website,omitempty" validate:"omitempty,url,max=255"`
}

// createRegistrationRequestHandler godoc
//
//	@Summary		Submit a business registration request
//	@Description	Public endpoint; no account required. An admin reviews the request and approval creates the store.
//	@Tags			registrations
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateRegistrationRequestPayload	true	"Business details"
//	@Success		201		{object}	registrations.RegistrationRequest
//	@Failure		400		{object}	error
//	@Failure		422		{object}	error
//	@Failure		429		{object}	error
//	@Router			/registration-requests [post]
func (app *application) createRegistrationRequestHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateRegistrationRequestPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ip := clientIP(r)
	ua := r.UserAgent()

	request, err := app.store.Registrations.CreateRequest(r.Context(), &registrations.CreateRequestInput{
		BusinessName:       strings.TrimSpace(payload.BusinessName),
		Category:           payload.Category,
		Address:            strings.TrimSpace(payload.Address),
		PhoneNumber:        strings.TrimSpace(payload.PhoneNumber),
		ContactEmail:       strings.ToLower(strings.TrimSpace(payload.ContactEmail)),
		Description:        payload.Description,
		Website:            payload.Website,
		RequesterIP:        &ip,
		RequesterUserAgent: &ua,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, request); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminListRegistrationRequestsHandler godoc
//
//	@Summary		List registration requests
//	@Tags			admin
//	@Produce		json
//	@Param			status	query		string	false	"submitted|approved|rejected"
//	@Param			page	query		int		false	"page number (default 1)"
//	@Param			limit	query		int		false	"page size (default 20)"
//	@Success		200		{array}		registrations.RegistrationRequest
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/registration-requests [get]
func (app *application) adminListRegistrationRequestsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := registrations.RequestFilter{
		Page:  readInt(q.Get("page"), 1),
		Limit: readInt(q.Get("limit"), 20),
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := registrations.RequestStatus(raw)
		switch status {
		case registrations.RequestSubmitted, registrations.RequestApproved, registrations.RequestRejected:
			filter.Status = &status
		default:
			app.badRequestResponse(w, r, fmt.Errorf("unknown status %q", raw))
			return
		}
	}

	out, err := app.store.Registrations.ListRequests(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, out); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ApproveRegistrationRequestPayload struct {
	// OwnerID is the account the new store is assigned to; the requester
	// signs up separately before approval.
	OwnerID   int64   `json:"owner_id" validate:"required,gt=0"`
	AdminNote *string `json:"admin_note,omitempty" validate:"omitempty,max=1000"`
}

// adminApproveRegistrationRequestHandler godoc
//
//	@Summary		Approve a registration request
//	@Description	Creates the store (unverified) from the request details and marks the request approved. Only submitted requests can be approved.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int									true	"Request ID"
//	@Param			payload	body		ApproveRegistrationRequestPayload	true	"Approval details"
//	@Success		201		{object}	stores.Store
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		422		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/registration-requests/{id}/approve [post]
func (app *application) adminApproveRegistrationRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, ok := app.int64Param(w, r, "id")
	if !ok {
		return
	}
	admin := getUserFromContext(r)

	var payload ApproveRegistrationRequestPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	request, err := app.store.Registrations.GetRequestByID(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, registrations.ErrRequestNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if request.Status != registrations.RequestSubmitted {
		app.badRequestResponse(w, r, fmt.Errorf("request is already %s", request.Status))
		return
	}

	if _, err := app.store.Users.GetByID(r.Context(), payload.OwnerID); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("owner account %d not found", payload.OwnerID))
		return
	}

	code, err := app.publicCodes.EncodeInt64([]int64{payload.OwnerID, time.Now().UnixNano() % 100000})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	store := &stores.Store{
		OwnerID:     payload.OwnerID,
		PublicCode:  code,
		Name:        request.BusinessName,
		Category:    request.Category,
		Description: request.Description,
		Address:     request.Address,
		PhoneNumber: request.PhoneNumber,
		Website:     request.Website,
	}

	// Store creation and the status flip commit together; a failure on either
	// side leaves no half-approved request behind.
	err = app.store.WithApprovalTx(r.Context(), func(a *storage.ApprovalTx) error {
		if err := a.Stores.Create(r.Context(), store); err != nil {
			return err
		}
		return a.Registrations.MarkRequestApproved(r.Context(), requestID, admin.ID, payload.AdminNote)
	})
	if err != nil {
		if errors.Is(err, registrations.ErrRequestNotFound) {
			// Lost a race with another reviewer; the tx rolled the store back.
			app.badRequestResponse(w, r, fmt.Errorf("request was already reviewed"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	go func() {
		data := struct {
			BusinessName string
			StoreName    string
		}{BusinessName: request.BusinessName, StoreName: store.Name}
		if _, err := app.mailer.Send(mailer.RegistrationApprovedTemplate, request.BusinessName, request.ContactEmail, data); err != nil {
			app.logger.Errorw("failed to send approval email", "request_id", requestID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusCreated, store); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RejectRegistrationRequestPayload struct {
	AdminNote *string `json:"admin_note,omitempty" validate:"omitempty,max=1000"`
}

// adminRejectRegistrationRequestHandler godoc
//
//	@Summary		Reject a registration request
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int									true	"Request ID"
//	@Param			payload	body		RejectRegistrationRequestPayload	true	"Rejection note"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/admin/registration-requests/{id}/reject [post]
func (app *application) adminRejectRegistrationRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID, ok := app.int64Param(w, r, "id")
	if !ok {
		return
	}
	admin := getUserFromContext(r)

	// The note is optional, so an empty body is fine.
	var payload RejectRegistrationRequestPayload
	if err := readJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		app.badRequestResponse(w, r, err)
		return
	}

	request, err := app.store.Registrations.GetRequestByID(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, registrations.ErrRequestNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Registrations.MarkRequestRejected(r.Context(), requestID, admin.ID, payload.AdminNote); err != nil {
		if errors.Is(err, registrations.ErrRequestNotFound) {
			app.badRequestResponse(w, r, fmt.Errorf("request is already %s", request.Status))
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	go func() {
		data := struct {
			BusinessName string
		}{BusinessName: request.BusinessName}
		if _, err := app.mailer.Send(mailer.RegistrationRejectedTemplate, request.BusinessName, request.ContactEmail, data); err != nil {
			app.logger.Errorw("failed to send rejection email", "request_id", requestID, "error", err)
		}
	}()

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "request rejected",
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
