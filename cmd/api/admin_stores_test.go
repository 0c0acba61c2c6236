package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"locality/internal/domain/roles"
	"locality/internal/domain/storage"
	"locality/internal/domain/stores"
	"locality/internal/domain/users"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type verificationCall struct {
	storeID    int64
	verified   bool
	notes      string
	reviewerID int64
}

type fakeStoreRepo struct {
	store  *stores.Store
	result *stores.Store
	calls  []verificationCall
}

func (f *fakeStoreRepo) GetByID(ctx context.Context, storeID int64) (*stores.Store, error) {
	if f.store != nil && f.store.ID == storeID {
		cp := *f.store
		return &cp, nil
	}
	return nil, stores.ErrStoreNotFound
}

func (f *fakeStoreRepo) SetVerification(ctx context.Context, storeID int64, verified bool, notes string, reviewerID int64) (*stores.Store, error) {
	f.calls = append(f.calls, verificationCall{storeID, verified, notes, reviewerID})
	cp := *f.result
	return &cp, nil
}

func (f *fakeStoreRepo) Create(ctx context.Context, store *stores.Store) error { return nil }
func (f *fakeStoreRepo) GetOwnedStores(ctx context.Context, userID int64) ([]stores.StoreListing, error) {
	return nil, nil
}
func (f *fakeStoreRepo) CheckIfStoreExists(ctx context.Context, name string, ownerID int64) (bool, error) {
	return false, nil
}
func (f *fakeStoreRepo) List(ctx context.Context, filter stores.StoreFilter) ([]stores.StoreListing, error) {
	return nil, nil
}
func (f *fakeStoreRepo) Update(ctx context.Context, storeID int64, updateData map[string]interface{}) error {
	return nil
}
func (f *fakeStoreRepo) Deactivate(ctx context.Context, storeID int64) error { return nil }

type fakeUserStore struct {
	users.Store
	owner *users.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, userID int64) (*users.User, error) {
	return f.owner, nil
}

type fakeMailer struct{}

func (f *fakeMailer) Send(templateFile, username, email string, data any) (int, error) {
	return http.StatusOK, nil
}

func newVerifyApp(repo *fakeStoreRepo) *application {
	return &application{
		logger: zap.NewNop().Sugar(),
		store: &storage.Container{
			Stores: repo,
			Users:  &fakeUserStore{owner: &users.User{ID: 2, FirstName: "Mira", Email: "mira@example.com"}},
		},
		mailer: &fakeMailer{},
	}
}

func verifyRequest(user *users.User, storeID, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/v1/admin/stores/"+storeID+"/verify", strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("storeID", storeID)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if user != nil {
		ctx = context.WithValue(ctx, userCtx, user)
	}
	return r.WithContext(ctx)
}

func TestVerifyStoreDeniedOwnerNeverWrites(t *testing.T) {
	repo := &fakeStoreRepo{
		store: &stores.Store{ID: 10, OwnerID: 2},
	}
	app := newVerifyApp(repo)

	// The owner of the store, but with no verify grant.
	owner := &users.User{ID: 2}
	rr := httptest.NewRecorder()
	app.verifyStoreHandler(rr, verifyRequest(owner, "10", `{"is_verified":true}`))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "verify on stores")

	// A denial never touches the resource.
	assert.Empty(t, repo.calls)
}

func TestVerifyStoreAdminStampsVerification(t *testing.T) {
	now := time.Now()
	repo := &fakeStoreRepo{
		store: &stores.Store{ID: 10, OwnerID: 2},
		result: &stores.Store{
			ID: 10, OwnerID: 2,
			IsVerified:       true,
			VerificationDate: &now,
		},
	}
	app := newVerifyApp(repo)

	admin := &users.User{ID: 9, Roles: []roles.Role{{Name: string(roles.RoleAdmin)}}}
	rr := httptest.NewRecorder()
	app.verifyStoreHandler(rr, verifyRequest(admin, "10", `{"is_verified":true,"verification_notes":"documents checked"}`))

	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, repo.calls, 1)
	call := repo.calls[0]
	assert.Equal(t, int64(10), call.storeID)
	assert.True(t, call.verified)
	assert.Equal(t, "documents checked", call.notes)
	assert.Equal(t, int64(9), call.reviewerID)

	assert.Contains(t, rr.Body.String(), `"is_verified":true`)
	assert.Contains(t, rr.Body.String(), `"verification_date"`)
}

func TestVerifyStoreRejectKeepsVerificationDate(t *testing.T) {
	repo := &fakeStoreRepo{
		store: &stores.Store{ID: 10, OwnerID: 2},
		// A rejection leaves the store unverified and never stamps a date.
		result: &stores.Store{ID: 10, OwnerID: 2, IsVerified: false},
	}
	app := newVerifyApp(repo)

	admin := &users.User{ID: 9, Roles: []roles.Role{{Name: string(roles.RoleAdmin)}}}
	rr := httptest.NewRecorder()
	app.verifyStoreHandler(rr, verifyRequest(admin, "10", `{"is_verified":false,"verification_notes":"address unconfirmed"}`))

	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, repo.calls, 1)
	assert.False(t, repo.calls[0].verified)
	assert.Equal(t, "address unconfirmed", repo.calls[0].notes)

	assert.Contains(t, rr.Body.String(), `"is_verified":false`)
	assert.NotContains(t, rr.Body.String(), `"verification_date"`)
}

func TestVerifyStoreMissingIs404(t *testing.T) {
	repo := &fakeStoreRepo{}
	app := newVerifyApp(repo)

	admin := &users.User{ID: 9, Roles: []roles.Role{{Name: string(roles.RoleAdmin)}}}
	rr := httptest.NewRecorder()
	app.verifyStoreHandler(rr, verifyRequest(admin, "10", `{"is_verified":true}`))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, repo.calls)
}
