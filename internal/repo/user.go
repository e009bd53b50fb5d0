package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реляционный репозиторий пользователей.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, mapErr("get user", err)
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error; err != nil {
		return nil, mapErr("get user by username", err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, mapErr("list users", err)
	}
	return users, nil
}

func (r *userRepo) Insert(ctx context.Context, d model.UserDraft) (*model.User, error) {
	if err := r.ensureUsernameFree(ctx, d.Username); err != nil {
		return nil, err
	}
	u, err := NewUser(d, Now())
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, mapErr("insert user", err)
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&u).Error; err != nil {
			return err
		}
		if p.Username != nil && *p.Username != u.Username {
			var n int64
			if err := tx.Model(&model.User{}).Where("username = ?", *p.Username).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("username %q: %w", *p.Username, ErrConflict)
			}
		}
		if err := ApplyUserPatch(&u, p, Now()); err != nil {
			return err
		}
		return tx.Save(&u).Error
	})
	if err != nil {
		return nil, mapErr("update user", err)
	}
	return &u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return false, mapErr("delete user", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := r.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	}
	return fmt.Errorf("username %q: %w", username, ErrConflict)
}
