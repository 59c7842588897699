package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ignite/coreapp/internal/domain"
	"github.com/ignite/coreapp/internal/pkg/logger"
)

// PasswordHasher encodes and checks passwords. *password.Manager satisfies it.
type PasswordHasher interface {
	Make(password string) (string, error)
	MakeUnusable() (string, error)
	Check(password, encoded string) (ok, mustUpdate bool, err error)
}

// CreateParams holds the input for CreateUser. A nil Password gives the
// account an unusable password; IsActive defaults to true when nil.
type CreateParams struct {
	Email       string
	Password    *string
	Name        string
	IsActive    *bool
	IsStaff     bool
	IsSuperuser bool
}

// Service implements account business logic. It is safe for concurrent use
// if the underlying repository is.
type Service struct {
	repo    Repository
	hasher  PasswordHasher
	nowFunc func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates an account service backed by the given repository.
func NewService(repo Repository, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, nowFunc: time.Now}
}

// CreateUser creates, saves and returns a new account.
func (s *Service) CreateUser(ctx context.Context, p CreateParams) (*domain.Account, error) {
	if strings.TrimSpace(p.Email) == "" {
		return nil, ErrEmailRequired
	}

	a := &domain.Account{
		Email:       domain.NormalizeEmail(p.Email),
		Name:        p.Name,
		IsActive:    true,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	if err := s.setPassword(a, p.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	logger.Info("account created", "account_id", a.ID, "email", a.Email)
	return a, nil
}

// CreateSuperuser creates an account through CreateUser and then grants it
// staff and superuser status.
func (s *Service) CreateSuperuser(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.CreateUser(ctx, CreateParams{Email: email, Password: &password})
	if err != nil {
		return nil, err
	}
	a.IsSuperuser = true
	a.IsStaff = true
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("grant superuser: %w", err)
	}
	logger.Info("superuser granted", "account_id", a.ID, "email", a.Email)
	return a, nil
}

// Authenticate returns the active account matching email and password.
// Every failure mode returns ErrInvalidCredentials so callers cannot tell
// unknown emails from wrong passwords. On success LastLogin is updated, and
// the stored hash is upgraded when it was made with outdated parameters.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	a, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		s.checkDummy(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, mustUpdate, err := s.hasher.Check(password, a.Password)
	if err != nil {
		logger.Warn("password check failed", "account_id", a.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok || !a.IsActive {
		return nil, ErrInvalidCredentials
	}

	if mustUpdate {
		if err := s.setPassword(a, &password); err != nil {
			return nil, err
		}
	}
	now := s.nowFunc().UTC()
	a.LastLogin = &now
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	return a, nil
}

// checkDummy spends the same hashing work as a real password check so an
// unknown email takes as long to reject as a wrong password.
func (s *Service) checkDummy(password string) {
	s.dummyOnce.Do(func() {
		encoded, err := s.hasher.Make("unknown-account")
		if err != nil {
			logger.Warn("dummy password hash failed", "error", err)
			return
		}
		s.dummyHash = encoded
	})
	if s.dummyHash == "" {
		return
	}
	_, _, _ = s.hasher.Check(password, s.dummyHash)
}

// SetPassword replaces an account's password. A nil password makes it
// unusable.
func (s *Service) SetPassword(ctx context.Context, id int64, password *string) error {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.setPassword(a, password); err != nil {
		return err
	}
	return s.repo.Save(ctx, a)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail returns the account with the normalized form of email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// List returns accounts ordered by ID.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Account, int, error) {
	return s.repo.List(ctx, f)
}

// Update applies the non-nil fields of u and saves the account.
func (s *Service) Update(ctx context.Context, id int64, u UpdateFields) (*domain.Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Email != nil {
		if strings.TrimSpace(*u.Email) == "" {
			return nil, ErrEmailRequired
		}
		a.Email = domain.NormalizeEmail(*u.Email)
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.IsStaff != nil {
		a.IsStaff = *u.IsStaff
	}
	if u.IsSuperuser != nil {
		a.IsSuperuser = *u.IsSuperuser
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("account deleted", "account_id", id)
	return nil
}

func (s *Service) setPassword(a *domain.Account, password *string) error {
	var (
		encoded string
		err     error
	)
	if password == nil {
		encoded, err = s.hasher.MakeUnusable()
	} else {
		encoded, err = s.hasher.Make(*password)
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	a.Password = encoded
	return nil
}
