package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/logging"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetAll(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByLogin(ctx context.Context, login string) (bool, error)
}

type accountChecker interface {
	ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error)
}

type UserService struct {
	users    userRepo
	accounts accountChecker
}

func NewUserService(users userRepo, accounts accountChecker) *UserService {
	return &UserService{users: users, accounts: accounts}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}

func (s *UserService) CreateUser(ctx context.Context, login, email string) (*domain.User, error) {
	log := logging.FromContext(ctx)

	if err := validateUserFields(login, email); err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}

	taken, err := s.users.ExistsByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("CreateUser: login %q: %w", login, domain.ErrLoginTaken)
	}

	user := &domain.User{
		ID:        uuid.New(),
		Login:     login,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}

	log.Info("user created", "user_id", user.ID, "login", login)
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, login, email string) error {
	if err := validateUserFields(login, email); err != nil {
		return fmt.Errorf("UpdateUser: %w", err)
	}

	user := &domain.User{ID: id, Login: login, Email: email}
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("UpdateUser: %w", err)
	}
	return nil
}

// DeleteUser refuses to delete a user who still owns bank accounts.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	hasAccounts, err := s.accounts.ExistsByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	if hasAccounts {
		return fmt.Errorf("DeleteUser: user %s: %w", id, domain.ErrUserHasAccounts)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}
	return nil
}

func validateUserFields(login, email string) error {
	if login == "" {
		return fmt.Errorf("login: %w", domain.ErrEmptyField)
	}
	if email == "" {
		return fmt.Errorf("email: %w", domain.ErrEmptyField)
	}
	return nil
}
