package repo

import (
	"CaseKeeper/internal/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

type firRepo struct {
	db *gorm.DB
}

// NewFirRepository создаёт реляционный репозиторий FIR.
func NewFirRepository(db *gorm.DB) FirRepository {
	return &firRepo{db: db}
}

func (r *firRepo) Get(ctx context.Context, id string) (*model.FirRecord, error) {
	var f model.FirRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&f).Error; err != nil {
		return nil, mapErr("get fir", err)
	}
	return &f, nil
}

func (r *firRepo) GetByReportNumber(ctx context.Context, number string) (*model.FirRecord, error) {
	var f model.FirRecord
	if err := r.db.WithContext(ctx).Where("fir_number = ?", number).Take(&f).Error; err != nil {
		return nil, mapErr("get fir by number", err)
	}
	return &f, nil
}

func (r *firRepo) List(ctx context.Context) ([]model.FirRecord, error) {
	var list []model.FirRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, mapErr("list firs", err)
	}
	return list, nil
}

func (r *firRepo) Insert(ctx context.Context, d model.FirDraft) (*model.FirRecord, error) {
	now := Now()
	if d.CriminalID != nil && *d.CriminalID != "" {
		if err := criminalExists(ctx, r.db, *d.CriminalID); err != nil {
			return nil, mapErr("insert fir", err)
		}
	}
	number, err := ResolveReportNumber(ctx, d.FirNumber, now, r.numberTaken)
	if err != nil {
		return nil, mapErr("insert fir", err)
	}
	f := NewFir(d, number, now)
	if err := r.db.WithContext(ctx).Omit("Criminal").Create(f).Error; err != nil {
		return nil, mapErr("insert fir", err)
	}
	return f, nil
}

func (r *firRepo) Update(ctx context.Context, id string, p model.FirPatch) (*model.FirRecord, error) {
	var f model.FirRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&f).Error; err != nil {
			return err
		}
		if p.CriminalID != nil && *p.CriminalID != "" {
			if err := criminalExists(ctx, tx, *p.CriminalID); err != nil {
				return err
			}
		}
		if p.FirNumber != nil && *p.FirNumber != "" && *p.FirNumber != f.FirNumber {
			var n int64
			if err := tx.Model(&model.FirRecord{}).Where("fir_number = ?", *p.FirNumber).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("fir number %q: %w", *p.FirNumber, ErrConflict)
			}
		}
		p.Apply(&f)
		f.UpdatedAt = Now()
		return tx.Omit("Criminal").Save(&f).Error
	})
	if err != nil {
		return nil, mapErr("update fir", err)
	}
	return &f, nil
}

func (r *firRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FirRecord{})
	if res.Error != nil {
		return false, mapErr("delete fir", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func criminalExists(ctx context.Context, db *gorm.DB, id string) error {
	var n int64
	if err := db.WithContext(ctx).Model(&model.CriminalRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("criminal %s: %w", id, ErrDanglingReference)
	}
	return nil
}

func (r *firRepo) numberTaken(ctx context.Context, number string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.FirRecord{}).Where("fir_number = ?", number).Count(&n).Error; err != nil {
		return false, storageErr("check fir number", err)
	}
	return n > 0, nil
}
