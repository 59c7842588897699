package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignite/coreapp/internal/admin"
	"github.com/ignite/coreapp/internal/config"
	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/password"
	"github.com/ignite/coreapp/internal/service/account"
	"github.com/ignite/coreapp/internal/service/sample"
	"github.com/ignite/coreapp/internal/storage"
)

// memAccounts is an in-memory account.Repository that reports duplicate
// emails the way Postgres does.
type memAccounts struct {
	mu     sync.RWMutex
	byID   map[int64]domain.Account
	nextID int64
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[int64]domain.Account)}
}

func (m *memAccounts) emailTaken(email string, except int64) bool {
	for id, a := range m.byID {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(a.Email, 0) {
		return &pq.Error{Code: "23505", Constraint: "accounts_email_key"}
	}
	m.nextID++
	a.ID = m.nextID
	m.byID[a.ID] = *a
	return nil
}

func (m *memAccounts) Save(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return account.ErrNotFound
	}
	if m.emailTaken(a.Email, a.ID) {
		return &pq.Error{Code: "23505", Constraint: "accounts_email_key"}
	}
	m.byID[a.ID] = *a
	return nil
}

func (m *memAccounts) Get(_ context.Context, id int64) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.byID {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, account.ErrNotFound
}

func (m *memAccounts) List(_ context.Context, f account.ListFilter) ([]domain.Account, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Account
	for _, a := range m.byID {
		if f.StaffOnly && !a.IsStaff {
			continue
		}
		if f.Search != "" && !strings.Contains(a.Email, f.Search) && !strings.Contains(a.Name, f.Search) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (m *memAccounts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return account.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// memSamples is an in-memory sample.Repository with the table's unique
// constraints on title and slug.
type memSamples struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]domain.SampleRecord
	clock time.Time
}

func newMemSamples() *memSamples {
	return &memSamples{
		byID:  make(map[uuid.UUID]domain.SampleRecord),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memSamples) conflict(r *domain.SampleRecord) error {
	for id, other := range m.byID {
		if id == r.ID {
			continue
		}
		if other.Title == r.Title {
			return &pq.Error{Code: "23505", Constraint: "all_type_fields_title_key"}
		}
		if other.Slug == r.Slug {
			return &pq.Error{Code: "23505", Constraint: "all_type_fields_slug_key"}
		}
	}
	if r.PositiveNum < 0 {
		return &pq.Error{Code: "23514", Constraint: "positive_num_non_negative"}
	}
	return nil
}

func (m *memSamples) Create(_ context.Context, r *domain.SampleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(r); err != nil {
		return err
	}
	m.clock = m.clock.Add(time.Minute)
	r.CreatedAt = m.clock
	m.byID[r.ID] = *r
	return nil
}

func (m *memSamples) Update(_ context.Context, r *domain.SampleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[r.ID]
	if !ok {
		return sample.ErrNotFound
	}
	if err := m.conflict(r); err != nil {
		return err
	}
	r.CreatedAt = existing.CreatedAt
	m.byID[r.ID] = *r
	return nil
}

func (m *memSamples) Get(_ context.Context, id uuid.UUID) (*domain.SampleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, sample.ErrNotFound
	}
	return &r, nil
}

func (m *memSamples) List(_ context.Context, f sample.ListFilter) ([]domain.SampleRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.SampleRecord
	for _, r := range m.byID {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (m *memSamples) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return sample.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

const (
	staffEmail = "staff@example.com"
	staffPass  = "staff-pass-123"
)

type testEnv struct {
	t        *testing.T
	handler  http.Handler
	accounts *account.Service
	samples  *memSamples
	uploads  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	pw, err := password.New("", bcrypt.MinCost, 1000)
	require.NoError(t, err)

	accounts := account.NewService(newMemAccounts(), pw)
	_, err = accounts.CreateUser(context.Background(), account.CreateParams{
		Email: staffEmail, Password: ptr(staffPass), IsStaff: true,
	})
	require.NoError(t, err)

	root := t.TempDir()
	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)
	samplesRepo := newMemSamples()
	samples := sample.NewService(samplesRepo, sample.WithUploads(storage.NewUploader(store, 1<<20)))

	site, err := admin.NewDefaultSite()
	require.NoError(t, err)

	h := NewHandlers(accounts, samples, pw, site, config.AdminConfig{Realm: "Test Admin", DefaultLimit: 2, MaxLimit: 5}, 1<<20)
	return &testEnv{
		t:        t,
		handler:  SetupRoutes(h, NewHealthChecker(nil, nil, nil), nil),
		accounts: accounts,
		samples:  samplesRepo,
		uploads:  root,
	}
}

func ptr[T any](v T) *T { return &v }

// do sends body as JSON (or raw when it is an io.Reader) with staff
// credentials.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doAs(staffEmail, staffPass, method, path, body, "")
}

func (e *testEnv) doAs(email, pass, method, path string, body any, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rdr = b
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(data)
		contentType = "application/json"
	}
	req := httptest.NewRequest(method, path, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if email != "" {
		req.SetBasicAuth(email, pass)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

type detailBody struct {
	ID       any    `json:"id"`
	Display  string `json:"display"`
	Sections []struct {
		Title  string `json:"title"`
		Fields []struct {
			Name  string `json:"name"`
			Value any    `json:"value"`
		} `json:"fields"`
	} `json:"sections"`
}

func (d detailBody) field(name string) any {
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if f.Name == name {
				return f.Value
			}
		}
	}
	return nil
}

type listBody struct {
	Data       []map[string]any `json:"data"`
	Pagination PaginationMeta   `json:"pagination"`
}
