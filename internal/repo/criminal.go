package repo

import (
	"CaseKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

type criminalRepo struct {
	db *gorm.DB
}

// NewCriminalRepository создаёт реляционный репозиторий карточек.
func NewCriminalRepository(db *gorm.DB) CriminalRepository {
	return &criminalRepo{db: db}
}

func (r *criminalRepo) Get(ctx context.Context, id string) (*model.CriminalRecord, error) {
	var c model.CriminalRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, mapErr("get criminal", err)
	}
	return &c, nil
}

func (r *criminalRepo) List(ctx context.Context) ([]model.CriminalRecord, error) {
	var list []model.CriminalRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, mapErr("list criminals", err)
	}
	return list, nil
}

func (r *criminalRepo) Insert(ctx context.Context, d model.CriminalDraft) (*model.CriminalRecord, error) {
	c := NewCriminal(d, Now())
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, mapErr("insert criminal", err)
	}
	return c, nil
}

func (r *criminalRepo) Update(ctx context.Context, id string, p model.CriminalPatch) (*model.CriminalRecord, error) {
	var c model.CriminalRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&c).Error; err != nil {
			return err
		}
		p.Apply(&c)
		c.UpdatedAt = Now()
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, mapErr("update criminal", err)
	}
	return &c, nil
}

// Delete снимает ссылки FIR на карточку и удаляет её.
// Ограничение ON DELETE SET NULL делает то же самое, но SQLite
// проверяет внешние ключи только при включённой прагме.
func (r *criminalRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.FirRecord{}).
			Where("criminal_id = ?", id).
			Updates(map[string]any{"criminal_id": nil, "updated_at": Now()}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.CriminalRecord{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, mapErr("delete criminal", err)
	}
	return deleted, nil
}
