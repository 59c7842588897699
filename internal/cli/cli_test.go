package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/service/account"
)

type fakeAccounts struct {
	created   []account.CreateParams
	superuser string
	passwords map[int64]*string
	byEmail   map[string]*domain.Account
	list      []domain.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{passwords: map[int64]*string{}, byEmail: map[string]*domain.Account{}}
}

func (f *fakeAccounts) CreateUser(_ context.Context, p account.CreateParams) (*domain.Account, error) {
	if p.Email == "" {
		return nil, account.ErrEmailRequired
	}
	f.created = append(f.created, p)
	return &domain.Account{ID: int64(len(f.created)), Email: domain.NormalizeEmail(p.Email)}, nil
}

func (f *fakeAccounts) CreateSuperuser(_ context.Context, email, password string) (*domain.Account, error) {
	f.superuser = email + ":" + password
	return &domain.Account{ID: 1, Email: email, IsStaff: true, IsSuperuser: true}, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, account.ErrNotFound
}

func (f *fakeAccounts) SetPassword(_ context.Context, id int64, password *string) error {
	f.passwords[id] = password
	return nil
}

func (f *fakeAccounts) List(_ context.Context, filter account.ListFilter) ([]domain.Account, int, error) {
	var out []domain.Account
	for _, a := range f.list {
		if filter.StaffOnly && !a.IsStaff {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func run(t *testing.T, f *fakeAccounts, env map[string]string, args ...string) (string, error) {
	t.Helper()
	opened := 0
	open := func(context.Context, string) (Accounts, func(), error) {
		opened++
		return f, func() {}, nil
	}
	cmd := NewRootCmd(open, func(k string) string { return env[k] })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	assert.LessOrEqual(t, opened, 1)
	return out.String(), err
}

func TestCreateUser(t *testing.T) {
	f := newFakeAccounts()

	out, err := run(t, f, nil, "createuser", "--email", "ann@EXAMPLE.com", "--name", "Ann", "--password", "pw", "--staff")
	require.NoError(t, err)
	assert.Contains(t, out, "Created account 1 (ann@example.com)")

	require.Len(t, f.created, 1)
	p := f.created[0]
	assert.Equal(t, "Ann", p.Name)
	assert.True(t, p.IsStaff)
	require.NotNil(t, p.Password)
	assert.Equal(t, "pw", *p.Password)
}

func TestCreateUser_NoPasswordIsUnusable(t *testing.T) {
	f := newFakeAccounts()

	out, err := run(t, f, nil, "createuser", "--email", "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, f.created[0].Password)
	assert.Contains(t, out, "No password set")
}

func TestCreateUser_RequiresEmailFlag(t *testing.T) {
	_, err := run(t, newFakeAccounts(), nil, "createuser")
	assert.Error(t, err)
}

func TestCreateSuperuser_PasswordFromEnv(t *testing.T) {
	f := newFakeAccounts()

	_, err := run(t, f, map[string]string{passwordEnv: "from-env"}, "createsuperuser", "--email", "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com:from-env", f.superuser)

	f = newFakeAccounts()
	_, err = run(t, f, map[string]string{passwordEnv: "from-env"}, "createsuperuser", "--email", "root@example.com", "--password", "flag")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com:flag", f.superuser)
}

func TestCreateSuperuser_NoPassword(t *testing.T) {
	f := newFakeAccounts()
	_, err := run(t, f, nil, "createsuperuser", "--email", "root@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), passwordEnv)
	assert.Empty(t, f.superuser)
}

func TestChangePassword(t *testing.T) {
	f := newFakeAccounts()
	f.byEmail["ann@example.com"] = &domain.Account{ID: 7, Email: "ann@example.com"}

	_, err := run(t, f, nil, "changepassword", "--email", "ann@example.com", "--password", "new")
	require.NoError(t, err)
	require.NotNil(t, f.passwords[7])
	assert.Equal(t, "new", *f.passwords[7])

	_, err = run(t, f, nil, "changepassword", "--email", "who@example.com", "--password", "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account")
}

func TestListUsers(t *testing.T) {
	f := newFakeAccounts()
	f.list = []domain.Account{
		{ID: 1, Email: "a@example.com", IsActive: true, IsStaff: true},
		{ID: 2, Email: "b@example.com", IsActive: true},
	}

	out, err := run(t, f, nil, "listusers")
	require.NoError(t, err)
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "b@example.com")
	assert.Contains(t, out, "Total: 2")

	out, err = run(t, f, nil, "listusers", "--staff")
	require.NoError(t, err)
	assert.NotContains(t, out, "b@example.com")
	assert.Contains(t, out, "Total: 1")
}

func TestOpenError(t *testing.T) {
	boom := errors.New("no database")
	cmd := NewRootCmd(func(context.Context, string) (Accounts, func(), error) {
		return nil, nil, boom
	}, func(string) string { return "" })
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"listusers"})
	assert.ErrorIs(t, cmd.Execute(), boom)
}
