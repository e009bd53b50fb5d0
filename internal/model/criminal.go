package model

import "time"

// CriminalRecord карточка фигуранта дела.
type CriminalRecord struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Name       string     `gorm:"size:255;not null;index" json:"name"`
	Age        int        `gorm:"not null" json:"age"`
	Gender     Gender     `gorm:"size:16;not null" json:"gender"`
	CrimeType  string     `gorm:"size:100;not null;index" json:"crimeType"`
	FirNumber  *string    `gorm:"size:32;index" json:"firNumber"`
	Status     CaseStatus `gorm:"size:16;not null;index" json:"status"`
	ArrestDate *time.Time `json:"arrestDate"`
	Address    *string    `gorm:"type:text" json:"address"`
	Photo      *string    `gorm:"type:text" json:"photo"` // data URL
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CriminalDraft данные для создания карточки.
type CriminalDraft struct {
	Name       string
	Age        int
	Gender     Gender
	CrimeType  string
	FirNumber  *string
	Status     CaseStatus // пустое значение = open
	ArrestDate *time.Time
	Address    *string
	Photo      *string
}

// CriminalPatch частичное обновление карточки.
// Для nullable-полей пустая строка (нулевое время) очищает значение.
type CriminalPatch struct {
	Name       *string
	Age        *int
	Gender     *Gender
	CrimeType  *string
	FirNumber  *string
	Status     *CaseStatus
	ArrestDate *time.Time
	Address    *string
	Photo      *string
}

// Apply применяет патч к записи, не трогая служебные поля.
func (p CriminalPatch) Apply(c *CriminalRecord) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Age != nil {
		c.Age = *p.Age
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.CrimeType != nil {
		c.CrimeType = *p.CrimeType
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.FirNumber != nil {
		c.FirNumber = nullable(*p.FirNumber)
	}
	if p.Address != nil {
		c.Address = nullable(*p.Address)
	}
	if p.Photo != nil {
		c.Photo = nullable(*p.Photo)
	}
	if p.ArrestDate != nil {
		c.ArrestDate = nullableTime(*p.ArrestDate)
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
