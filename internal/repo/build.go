package repo

import (
	"CaseKeeper/internal/idgen"
	"CaseKeeper/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Now текущее время с точностью, которую сохраняют все бэкенды.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// HashPassword солёный bcrypt-хеш пароля.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// NewUser собирает пользователя из черновика.
func NewUser(d model.UserDraft, now time.Time) (*model.User, error) {
	hash, err := HashPassword(d.Password)
	if err != nil {
		return nil, err
	}
	role := d.Role
	if role == "" {
		role = model.RoleOperator
	}
	return &model.User{
		ID:           idgen.NewID(),
		Username:     d.Username,
		PasswordHash: hash,
		Role:         role,
		Name:         d.Name,
		Active:       d.Active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyUserPatch сливает патч в пользователя, пароль перехешируется.
func ApplyUserPatch(u *model.User, p model.UserPatch, now time.Time) error {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := HashPassword(*p.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	if p.LastLoginAt != nil {
		t := p.LastLoginAt.UTC().Truncate(time.Microsecond)
		u.LastLoginAt = &t
	}
	u.UpdatedAt = now
	return nil
}

// NewCriminal собирает карточку из черновика; номер FIR генерируется, если не задан.
func NewCriminal(d model.CriminalDraft, now time.Time) *model.CriminalRecord {
	status := d.Status
	if status == "" {
		status = model.CaseOpen
	}
	fir := d.FirNumber
	if fir == nil || *fir == "" {
		n := idgen.NewReportNumber(now)
		fir = &n
	}
	c := &model.CriminalRecord{
		ID:        idgen.NewID(),
		Name:      d.Name,
		Age:       d.Age,
		Gender:    d.Gender,
		CrimeType: d.CrimeType,
		FirNumber: fir,
		Status:    status,
		Address:   d.Address,
		Photo:     d.Photo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.ArrestDate != nil && !d.ArrestDate.IsZero() {
		t := d.ArrestDate.UTC().Truncate(time.Microsecond)
		c.ArrestDate = &t
	}
	return c
}

// NewFir собирает FIR из черновика. Номер должен быть уже подобран.
func NewFir(d model.FirDraft, number string, now time.Time) *model.FirRecord {
	reportDate := now
	if d.ReportDate != nil && !d.ReportDate.IsZero() {
		reportDate = d.ReportDate.UTC().Truncate(time.Microsecond)
	}
	var criminalID *string
	if d.CriminalID != nil && *d.CriminalID != "" {
		id := *d.CriminalID
		criminalID = &id
	}
	return &model.FirRecord{
		ID:          idgen.NewID(),
		FirNumber:   number,
		CriminalID:  criminalID,
		ReportDate:  reportDate,
		Description: d.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ReportNumberLookup сообщает, занят ли номер FIR.
type ReportNumberLookup func(ctx context.Context, number string) (bool, error)

// ResolveReportNumber возвращает явный номер либо подбирает свободный.
// Занятый явный номер даёт ErrConflict.
func ResolveReportNumber(ctx context.Context, explicit *string, now time.Time, taken ReportNumberLookup) (string, error) {
	if explicit != nil && *explicit != "" {
		busy, err := taken(ctx, *explicit)
		if err != nil {
			return "", err
		}
		if busy {
			return "", fmt.Errorf("fir number %q: %w", *explicit, ErrConflict)
		}
		return *explicit, nil
	}
	n, err := idgen.UniqueReportNumber(ctx, now, taken)
	if errors.Is(err, idgen.ErrNoFreeReportNumber) {
		return "", fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return n, err
}
