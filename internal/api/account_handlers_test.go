package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/coreapp/internal/service/account"
)

func TestRequireStaff(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.accounts.CreateUser(context.Background(), account.CreateParams{
		Email: "plain@example.com", Password: ptr("plain-pass"),
	})
	require.NoError(t, err)
	_, err = env.accounts.CreateUser(context.Background(), account.CreateParams{
		Email: "gone@example.com", Password: ptr("gone-pass"), IsStaff: true, IsActive: ptr(false),
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		email      string
		pass       string
		wantStatus int
	}{
		{"no credentials", "", "", http.StatusUnauthorized},
		{"wrong password", staffEmail, "nope", http.StatusUnauthorized},
		{"unknown email", "who@example.com", "x", http.StatusUnauthorized},
		{"inactive staff", "gone@example.com", "gone-pass", http.StatusUnauthorized},
		{"not staff", "plain@example.com", "plain-pass", http.StatusForbidden},
		{"staff", staffEmail, staffPass, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.doAs(tt.email, tt.pass, http.MethodGet, "/admin/", nil, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Test Admin", charset="UTF-8"`, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestListModels(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/admin/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Models []struct {
			Name        string   `json:"name"`
			ListDisplay []string `json:"list_display"`
		} `json:"models"`
	}](t, rec)
	require.Len(t, body.Models, 2)
	assert.Equal(t, "accounts", body.Models[0].Name)
	assert.Equal(t, []string{"email", "name"}, body.Models[0].ListDisplay)
	assert.Equal(t, "samples", body.Models[1].Name)
}

func TestCreateAccount(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/admin/accounts", map[string]any{
		"email": "New@EXAMPLE.com", "name": "New", "password": "pw-123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	d := decodeBody[detailBody](t, rec)
	assert.Equal(t, "New@example.com", d.Display)
	require.Len(t, d.Sections, 4)
	assert.Equal(t, "", d.Sections[0].Title)
	assert.Equal(t, "Personal Info", d.Sections[1].Title)
	assert.Equal(t, true, d.field("is_active"))
	assert.Equal(t, false, d.field("is_staff"))

	summary, ok := d.field("password").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bcrypt_sha256", summary["algorithm"])
	assert.NotContains(t, rec.Body.String(), "pw-123456")
}

func TestCreateAccount_Errors(t *testing.T) {
	env := newTestEnv(t)

	t.Run("empty email", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/admin/accounts", map[string]any{"email": "  ", "password": "x"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[errorBody](t, rec)
		assert.Equal(t, "validation_failed", body.Code)
		assert.Contains(t, body.Details, "email")
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/admin/accounts", map[string]any{"email": "staff@EXAMPLE.COM"})
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeBody[errorBody](t, rec)
		assert.Equal(t, "unique_violation", body.Code)
		assert.Contains(t, body.Details, "email")
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/admin/accounts", []int{1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListAccounts_PaginatedByID(t *testing.T) {
	env := newTestEnv(t)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := env.accounts.CreateUser(context.Background(), account.CreateParams{Email: email, Name: "n"})
		require.NoError(t, err)
	}

	rec := env.do(http.MethodGet, "/admin/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decodeBody[listBody](t, rec)
	require.Len(t, first.Data, 2)
	assert.Equal(t, staffEmail, first.Data[0]["email"])
	assert.Equal(t, "a@example.com", first.Data[1]["email"])
	assert.NotContains(t, first.Data[0], "password")
	assert.Equal(t, PaginationMeta{Page: 1, Limit: 2, Total: 3, TotalPages: 2, HasMore: true}, first.Pagination)

	rec = env.do(http.MethodGet, "/admin/accounts?page=2", nil)
	second := decodeBody[listBody](t, rec)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "b@example.com", second.Data[0]["email"])
	assert.False(t, second.Pagination.HasMore)
}

func TestGetUpdateDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.accounts.CreateUser(context.Background(), account.CreateParams{Email: "ed@example.com", Name: "Ed"})
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/admin/accounts/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/admin/accounts/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPut, "/admin/accounts/2", map[string]any{"name": "Edward", "is_staff": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decodeBody[detailBody](t, rec)
	assert.Equal(t, "Edward", d.field("name"))
	assert.Equal(t, true, d.field("is_staff"))
	assert.Equal(t, "ed@example.com", d.field("email"))

	rec = env.do(http.MethodPut, "/admin/accounts/2", map[string]any{"email": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodDelete, "/admin/accounts/2", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = env.accounts.Get(context.Background(), a.ID)
	assert.ErrorIs(t, err, account.ErrNotFound)

	rec = env.do(http.MethodDelete, "/admin/accounts/2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetAccountPassword(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.accounts.CreateUser(context.Background(), account.CreateParams{Email: "pw@example.com", IsStaff: true})
	require.NoError(t, err)

	// Created without a password, so the account cannot log in yet.
	rec := env.doAs("pw@example.com", "", http.MethodGet, "/admin/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/admin/accounts/2/password", map[string]any{"password": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/admin/accounts/2/password", map[string]any{"password": "fresh-pass"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doAs("pw@example.com", "fresh-pass", http.MethodGet, "/admin/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/admin/accounts/2/password", map[string]any{"password": nil})
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err = env.accounts.Authenticate(context.Background(), a.Email, "fresh-pass")
	assert.ErrorIs(t, err, account.ErrInvalidCredentials)
}
