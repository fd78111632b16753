package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	u, ok := f.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Login = user.Login
	u.Email = user.Email
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) ExistsByLogin(_ context.Context, login string) (bool, error) {
	for _, u := range f.users {
		if u.Login == login {
			return true, nil
		}
	}
	return false, nil
}

type fakeAccountChecker struct {
	withAccounts map[uuid.UUID]bool
}

func (f *fakeAccountChecker) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	return f.withAccounts[userID], nil
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeAccountChecker{})

		user, err := svc.CreateUser(ctx, "alice", "alice@test.com")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Login)
		assert.Equal(t, "alice@test.com", user.Email)
		assert.NotEqual(t, uuid.Nil, user.ID)
	})

	t.Run("empty login", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeAccountChecker{})

		_, err := svc.CreateUser(ctx, "", "alice@test.com")
		require.ErrorIs(t, err, domain.ErrEmptyField)
	})

	t.Run("empty email", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeAccountChecker{})

		_, err := svc.CreateUser(ctx, "alice", "")
		require.ErrorIs(t, err, domain.ErrEmptyField)
	})

	t.Run("duplicate login", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &fakeAccountChecker{})

		_, err := svc.CreateUser(ctx, "alice", "alice@test.com")
		require.NoError(t, err)

		_, err = svc.CreateUser(ctx, "alice", "other@test.com")
		require.ErrorIs(t, err, domain.ErrLoginTaken)
		require.Len(t, repo.users, 1)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAccountChecker{})

	user, err := svc.CreateUser(ctx, "alice", "alice@test.com")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateUser(ctx, user.ID, "alice2", "alice2@test.com"))
	assert.Equal(t, "alice2", repo.users[user.ID].Login)

	err = svc.UpdateUser(ctx, user.ID, "", "alice@test.com")
	require.ErrorIs(t, err, domain.ErrEmptyField)

	err = svc.UpdateUser(ctx, uuid.New(), "bob", "bob@test.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes user without accounts", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &fakeAccountChecker{})

		user, err := svc.CreateUser(ctx, "alice", "alice@test.com")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, user.ID))
		assert.Empty(t, repo.users)
	})

	t.Run("refuses user with linked accounts", func(t *testing.T) {
		repo := newFakeUserRepo()
		user, err := NewUserService(repo, &fakeAccountChecker{}).CreateUser(ctx, "alice", "alice@test.com")
		require.NoError(t, err)

		svc := NewUserService(repo, &fakeAccountChecker{withAccounts: map[uuid.UUID]bool{user.ID: true}})
		err = svc.DeleteUser(ctx, user.ID)
		require.ErrorIs(t, err, domain.ErrUserHasAccounts)
		assert.Contains(t, repo.users, user.ID)
	})
}
