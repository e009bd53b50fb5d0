package model

import "time"

// FirRecord первичное сообщение о преступлении (FIR).
type FirRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FirNumber   string    `gorm:"uniqueIndex;size:32;not null" json:"firNumber"`
	CriminalID  *string   `gorm:"size:36;index" json:"criminalId"`
	ReportDate  time.Time `gorm:"not null" json:"reportDate"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Слабая ссылка: при удалении карточки criminal_id обнуляется.
	Criminal *CriminalRecord `gorm:"foreignKey:CriminalID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// FirDraft данные для создания FIR.
type FirDraft struct {
	FirNumber   *string
	CriminalID  *string
	ReportDate  *time.Time
	Description string
}

// FirPatch частичное обновление FIR. Пустой CriminalID снимает связь.
type FirPatch struct {
	FirNumber   *string
	CriminalID  *string
	ReportDate  *time.Time
	Description *string
}

// Apply применяет патч к записи.
func (p FirPatch) Apply(f *FirRecord) {
	if p.FirNumber != nil && *p.FirNumber != "" {
		f.FirNumber = *p.FirNumber
	}
	if p.CriminalID != nil {
		f.CriminalID = nullable(*p.CriminalID)
	}
	if p.ReportDate != nil && !p.ReportDate.IsZero() {
		f.ReportDate = p.ReportDate.UTC()
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
}
