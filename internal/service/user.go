package service

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

// UserService учётные записи и вход.
type UserService struct {
	users  repo.UserRepository
	logger *zap.SugaredLogger
}

func NewUserService(users repo.UserRepository, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Login проверяет пароль и фиксирует время входа.
func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactiveUser
	}

	now := time.Now().UTC()
	updated, err := s.users.Update(ctx, u.ID, model.UserPatch{LastLoginAt: &now})
	if err != nil {
		// вход всё равно состоялся
		s.logger.Warnw("failed to record last login", "user_id", u.ID, "error", err)
		return u, nil
	}
	return updated, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.users.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Create(ctx context.Context, d model.UserDraft) (*model.User, error) {
	u, err := s.users.Insert(ctx, d)
	if err != nil {
		return nil, err
	}
	recordsCreated.WithLabelValues("user").Inc()
	s.logger.Infow("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	return s.users.Update(ctx, id, p)
}

func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	return s.users.Delete(ctx, id)
}

// EnsureAdmin создаёт администратора, если пользователей ещё нет.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	list, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(list) > 0 {
		return nil
	}
	_, err = s.Create(ctx, model.UserDraft{
		Username: username,
		Password: password,
		Role:     model.RoleAdmin,
		Name:     "Administrator",
		Active:   true,
	})
	return err
}
