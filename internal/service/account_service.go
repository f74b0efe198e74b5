package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rps_link/internal/domain"
	"rps_link/internal/logger"
	"rps_link/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrInvalidName = errors.New("display name must be 1-40 characters")
	ErrUnknownUser = errors.New("unknown user")
)

// AccountService manages anonymous accounts.
type AccountService struct {
	store repository.Store
	now   func() time.Time
}

func NewAccountService(store repository.Store) *AccountService {
	return &AccountService{store: store, now: time.Now}
}

// Register creates a new account. An empty name falls back to
// domain.DefaultDisplayName.
func (s *AccountService) Register(ctx context.Context, displayName string) (*domain.User, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = domain.DefaultDisplayName
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:          uuid.NewString(),
		DisplayName: name,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, transient(err)
	}

	logger.WithContext(ctx).Info("account created", "user_id", u.ID)
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, transient(err)
	}
	return u, nil
}

func (s *AccountService) Rename(ctx context.Context, id, displayName string) (*domain.User, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameUser(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, transient(err)
	}
	return s.Get(ctx, id)
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > domain.MaxDisplayNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// transient marks a storage failure the caller may retry.
func transient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
