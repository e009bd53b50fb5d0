package model

import "time"

// User учётная запись сотрудника.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	Role         Role       `gorm:"size:16;not null" json:"role"`
	Name         string     `gorm:"size:128" json:"name"`
	LastLoginAt  *time.Time `json:"lastLogin"`
	Active       bool       `gorm:"not null" json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserDraft данные для создания пользователя. Password в открытом виде.
type UserDraft struct {
	Username string
	Password string
	Role     Role
	Name     string
	Active   bool
}

// UserPatch частичное обновление пользователя; nil означает «не менять».
type UserPatch struct {
	Username    *string
	Password    *string
	Role        *Role
	Name        *string
	Active      *bool
	LastLoginAt *time.Time
}
