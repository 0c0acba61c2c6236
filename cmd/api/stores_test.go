package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"locality/internal/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp() *application {
	return &application{logger: zap.NewNop().Sugar()}
}

func TestDenyResponseUnauthenticated(t *testing.T) {
	app := newTestApp()
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/stores/1", nil)

	app.denyResponse(rr, r, authz.Decision{Reason: authz.DenyUnauthenticated})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDenyResponsePrivilegeNamesMissingGrant(t *testing.T) {
	app := newTestApp()
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPut, "/v1/admin/stores/1/verify", nil)

	app.denyResponse(rr, r, authz.Decision{
		Reason:             authz.DenyInsufficientPrivilege,
		RequiredPermission: "verify on stores",
	})

	assert.Equal(t, http.StatusForbidden, rr.Code)

	var body struct {
		Success            bool   `json:"success"`
		Message            string `json:"message"`
		Status             int    `json:"status"`
		RequiredPermission string `json:"required_permission"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusForbidden, body.Status)
	assert.Equal(t, "verify on stores", body.RequiredPermission)
}

func TestReadInt(t *testing.T) {
	assert.Equal(t, 1, readInt("", 1))
	assert.Equal(t, 5, readInt("5", 1))
	assert.Equal(t, 1, readInt("abc", 1))
	assert.Equal(t, 1, readInt("-3", 1))
	assert.Equal(t, 1, readInt("0", 1))
}

func TestReadDate(t *testing.T) {
	def := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)

	got, err := readDate("", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)

	// Parsed dates are server-local midnight, matching the day windows the
	// nightly aggregation builds. A UTC parse would shift the window on any
	// host where local time is not UTC.
	got, err = readDate("2026-08-30", def)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local), got)
	assert.Equal(t, time.Local, got.Location())

	_, err = readDate("30/08/2026", def)
	assert.Error(t, err)
}
