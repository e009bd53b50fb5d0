package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Get(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if v, ok := args.Get(0).([]model.User); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Insert(ctx context.Context, d model.UserDraft) (*model.User, error) {
	args := m.Called(ctx, d)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	args := m.Called(ctx, id, p)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, zap.NewNop().Sugar())

	// готовим хеш для пароля "secret"
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	alice := &model.User{ID: "u2", Username: "alice", PasswordHash: string(hash), Role: model.RoleAdmin, Active: true}

	t.Run("ok with valid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetByUsername", mock.Anything, "alice").Return(alice, nil).Once()
		m.On("Update", mock.Anything, "u2", mock.MatchedBy(func(p model.UserPatch) bool {
			return p.LastLoginAt != nil && p.Password == nil
		})).Return(alice, nil).Once()

		user, err := svc.Login(ctx, "alice", "secret")
		assert.NoError(t, err)
		assert.Equal(t, "u2", user.ID)
		m.AssertExpectations(t)
	})

	t.Run("invalid password", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetByUsername", mock.Anything, "alice").Return(alice, nil).Once()

		user, err := svc.Login(ctx, "alice", "wrong")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetByUsername", mock.Anything, "bob").Return(nil, repo.ErrNotFound).Once()

		_, err := svc.Login(ctx, "bob", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		m.ExpectedCalls = nil
		inactive := *alice
		inactive.Active = false
		m.On("GetByUsername", mock.Anything, "alice").Return(&inactive, nil).Once()

		_, err := svc.Login(ctx, "alice", "secret")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})

	t.Run("storage failure is not invalid credentials", func(t *testing.T) {
		m.ExpectedCalls = nil
		boom := &repo.StorageError{Op: "get", Err: errors.New("conn refused")}
		m.On("GetByUsername", mock.Anything, "alice").Return(nil, boom).Once()

		_, err := svc.Login(ctx, "alice", "secret")
		assert.ErrorIs(t, err, repo.ErrStorage)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("last login failure does not block login", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetByUsername", mock.Anything, "alice").Return(alice, nil).Once()
		m.On("Update", mock.Anything, "u2", mock.Anything).Return(nil, errors.New("db")).Once()

		user, err := svc.Login(ctx, "alice", "secret")
		assert.NoError(t, err)
		assert.Equal(t, "u2", user.ID)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	m := new(mockUserRepo)
	svc := NewUserService(m, zap.NewNop().Sugar())

	t.Run("creates admin when empty", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("List", mock.Anything).Return([]model.User{}, nil).Once()
		m.On("Insert", mock.Anything, mock.MatchedBy(func(d model.UserDraft) bool {
			return d.Username == "root" && d.Role == model.RoleAdmin && d.Active
		})).Return(&model.User{ID: "a1", Username: "root", Role: model.RoleAdmin}, nil).Once()

		assert.NoError(t, svc.EnsureAdmin(ctx, "root", "pw"))
		m.AssertExpectations(t)
	})

	t.Run("noop when users exist", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("List", mock.Anything).Return([]model.User{{ID: "x"}}, nil).Once()

		assert.NoError(t, svc.EnsureAdmin(ctx, "root", "pw"))
		m.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}
