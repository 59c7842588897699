package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/coreapp/internal/admin"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/httputil"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/service/account"
)

type accountInput struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     bool    `json:"is_staff"`
	IsSuperuser bool    `json:"is_superuser"`
}

type accountUpdateInput struct {
	Email       *string `json:"email"`
	Name        *string `json:"name"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type passwordInput struct {
	Password *string `json:"password"`
}

// accountDetail is the edit-form view of one account.
type accountDetail struct {
	ID       int64           `json:"id"`
	Display  string          `json:"display"`
	Sections []admin.Section `json:"sections"`
}

func (h *Handlers) accountAdmin() admin.ModelAdmin {
	if m, err := h.site.Get(admin.AccountAdmin.Name); err == nil {
		return m
	}
	return admin.AccountAdmin
}

func (h *Handlers) accountDetail(a *domain.Account) accountDetail {
	return accountDetail{
		ID:       a.ID,
		Display:  a.String(),
		Sections: h.accountAdmin().Sections(admin.AccountFields(a, h.passwords)),
	}
}

func accountID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListAccounts returns one page of account rows ordered by ID.
//
//	GET /admin/accounts?page=&limit=&q=&staff=
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r, h.config.DefaultLimit, h.config.MaxLimit)
	staffOnly, _ := strconv.ParseBool(r.URL.Query().Get("staff"))

	accounts, total, err := h.accounts.List(r.Context(), account.ListFilter{
		Search:    p.Search,
		StaffOnly: staffOnly,
		Limit:     p.Limit,
		Offset:    p.Offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	m := h.accountAdmin()
	rows := make([]map[string]any, 0, len(accounts))
	for i := range accounts {
		values := admin.AccountFields(&accounts[i], h.passwords)
		row := m.Row(values)
		row["id"] = accounts[i].ID
		rows = append(rows, row)
	}
	httputil.OK(w, NewPaginatedResponse(rows, p, total))
}

// CreateAccount creates an account. An omitted password leaves the
// account unable to log in until one is set.
//
//	POST /admin/accounts
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var in accountInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	a, err := h.accounts.CreateUser(r.Context(), account.CreateParams{
		Email:       in.Email,
		Password:    in.Password,
		Name:        in.Name,
		IsActive:    in.IsActive,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "account created", "account_id", a.ID)
	httputil.Created(w, h.accountDetail(a))
}

// GetAccount returns one account grouped into its fieldsets.
//
//	GET /admin/accounts/{id}
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.NotFound(w, "account not found")
		return
	}
	a, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.OK(w, h.accountDetail(a))
}

// UpdateAccount applies the supplied fields. Omitted fields are unchanged.
//
//	PUT /admin/accounts/{id}
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.NotFound(w, "account not found")
		return
	}
	var in accountUpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	a, err := h.accounts.Update(r.Context(), id, account.UpdateFields{
		Email:       in.Email,
		Name:        in.Name,
		IsActive:    in.IsActive,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "account updated", "account_id", a.ID)
	httputil.OK(w, h.accountDetail(a))
}

// SetAccountPassword replaces the account's password. A null password
// makes it unusable.
//
//	POST /admin/accounts/{id}/password
func (h *Handlers) SetAccountPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.NotFound(w, "account not found")
		return
	}
	var in passwordInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	if in.Password != nil && *in.Password == "" {
		httputil.ValidationFailed(w, map[string]string{"password": "this field may not be blank"})
		return
	}
	if err := h.accounts.SetPassword(r.Context(), id, in.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "account password changed", "account_id", id)
	httputil.NoContent(w)
}

// DeleteAccount removes an account.
//
//	DELETE /admin/accounts/{id}
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.NotFound(w, "account not found")
		return
	}
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	logAdminAction(r, "account deleted", "account_id", id)
	httputil.NoContent(w)
}

func logAdminAction(r *http.Request, msg string, kv ...any) {
	if actor, ok := AccountFromContext(r.Context()); ok {
		kv = append(kv, "actor", actor.Email)
	}
	logger.Info("admin: "+msg, kv...)
}
