package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/coreapp/internal/admin"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/httputil"
	"github.com/ignite/coreapp/internal/pkg/logger"
	"github.com/ignite/coreapp/internal/service/account"
	"github.com/ignite/coreapp/internal/service/sample"
)

// AccountService is the account behaviour the admin API needs.
// *account.Service satisfies it.
type AccountService interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	CreateUser(ctx context.Context, p account.CreateParams) (*domain.Account, error)
	SetPassword(ctx context.Context, id int64, password *string) error
	Get(ctx context.Context, id int64) (*domain.Account, error)
	List(ctx context.Context, f account.ListFilter) ([]domain.Account, int, error)
	Update(ctx context.Context, id int64, u account.UpdateFields) (*domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

// SampleService is the sample record behaviour the admin API needs.
// *sample.Service satisfies it.
type SampleService interface {
	Create(ctx context.Context, r *domain.SampleRecord) error
	Update(ctx context.Context, r *domain.SampleRecord) error
	Get(ctx context.Context, id uuid.UUID) (*domain.SampleRecord, error)
	List(ctx context.Context, f sample.ListFilter) ([]domain.SampleRecord, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FilePathChoices() ([]string, error)
	AttachFile(ctx context.Context, id uuid.UUID, filename string, body io.Reader) (*domain.SampleRecord, error)
	AttachImage(ctx context.Context, id uuid.UUID, filename string, body io.Reader) (*domain.SampleRecord, error)
	Download(ctx context.Context, id uuid.UUID, field sample.UploadField) (*sample.Download, error)
}

// Handlers contains the admin HTTP handlers
type Handlers struct {
	accounts  AccountService
	samples   SampleService
	passwords admin.PasswordSummarizer
	site      *admin.Site
	config    config.AdminConfig
	maxUpload int64
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	accounts AccountService,
	samples SampleService,
	passwords admin.PasswordSummarizer,
	site *admin.Site,
	cfg config.AdminConfig,
	maxUpload int64,
) *Handlers {
	if cfg.Realm == "" {
		cfg.Realm = "admin"
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handlers{
		accounts:  accounts,
		samples:   samples,
		passwords: passwords,
		site:      site,
		config:    cfg,
		maxUpload: maxUpload,
	}
}

type ctxKey int

const accountKey ctxKey = iota

// AccountFromContext returns the staff account that authenticated the
// request, if any.
func AccountFromContext(ctx context.Context) (*domain.Account, bool) {
	a, ok := ctx.Value(accountKey).(*domain.Account)
	return a, ok
}

// RequireStaff authenticates the request with HTTP Basic credentials and
// admits only active staff accounts.
func (h *Handlers) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, pass, ok := r.BasicAuth()
		if !ok {
			httputil.Unauthorized(w, h.config.Realm)
			return
		}
		a, err := h.accounts.Authenticate(r.Context(), email, pass)
		if errors.Is(err, account.ErrInvalidCredentials) {
			logger.Warn("admin: authentication failed", "email", email, "remote", r.RemoteAddr)
			httputil.Unauthorized(w, h.config.Realm)
			return
		}
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if !a.CanAccessAdmin() {
			logger.Warn("admin: non-staff account refused", "email", a.Email)
			httputil.Forbidden(w, "staff access required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, a)))
	})
}

// ListModels returns the registered model admins.
//
//	GET /admin/
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"models": h.site.Models()})
}
