package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/service/account"
)

// AccountRepo implements account.Repository against PostgreSQL.
type AccountRepo struct{ db *sql.DB }

// NewAccountRepo creates a Postgres-backed account repository.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

const accountColumns = `id, email, name, is_active, is_staff, is_superuser, password, last_login`

func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (email, name, is_active, is_staff, is_superuser, password, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.Email, a.Name, a.IsActive, a.IsStaff, a.IsSuperuser, a.Password, a.LastLogin).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Save(ctx context.Context, a *domain.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = $2, name = $3, is_active = $4, is_staff = $5, is_superuser = $6,
		    password = $7, last_login = $8
		WHERE id = $1
	`, a.ID, a.Email, a.Name, a.IsActive, a.IsStaff, a.IsSuperuser, a.Password, a.LastLogin)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *AccountRepo) List(ctx context.Context, f account.ListFilter) ([]domain.Account, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if f.StaffOnly {
		conds = append(conds, "is_staff = true")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = total
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM accounts%s ORDER BY id LIMIT $%d OFFSET $%d`,
		accountColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	return out, total, rows.Err()
}

func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a         domain.Account
		lastLogin sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.IsActive, &a.IsStaff, &a.IsSuperuser, &a.Password, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}
