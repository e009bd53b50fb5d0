package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role роль пользователя.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Gender пол фигуранта.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// CaseStatus состояние дела.
type CaseStatus string

const (
	CaseOpen    CaseStatus = "open"
	CasePending CaseStatus = "pending"
	CaseClosed  CaseStatus = "closed"
)

// ParseRole возвращает роль и признак того, что значение допустимо.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleOperator:
		return Role(s), true
	}
	return "", false
}

// ParseGender возвращает пол и признак того, что значение допустимо.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s), true
	}
	return "", false
}

// ParseCaseStatus возвращает статус дела и признак того, что значение допустимо.
func ParseCaseStatus(s string) (CaseStatus, bool) {
	switch CaseStatus(s) {
	case CaseOpen, CasePending, CaseClosed:
		return CaseStatus(s), true
	}
	return "", false
}

// Из JSON принимаем только известные значения.

func (r *Role) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "role", func(s string) bool {
		v, ok := ParseRole(s)
		*r = v
		return ok
	})
}

func (g *Gender) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "gender", func(s string) bool {
		v, ok := ParseGender(s)
		*g = v
		return ok
	})
}

func (c *CaseStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", func(s string) bool {
		v, ok := ParseCaseStatus(s)
		*c = v
		return ok
	})
}

func unmarshalEnum(b []byte, name string, set func(string) bool) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !set(s) {
		return fmt.Errorf("invalid %s %q", name, s)
	}
	return nil
}

// Из БД читаем мягко: неизвестное значение подменяется значением по умолчанию.

func (r *Role) Scan(src any) error {
	v, _ := ParseRole(scanString(src))
	if v == "" {
		v = RoleOperator
	}
	*r = v
	return nil
}

func (r Role) Value() (driver.Value, error) { return string(r), nil }

func (g *Gender) Scan(src any) error {
	v, _ := ParseGender(scanString(src))
	if v == "" {
		v = GenderOther
	}
	*g = v
	return nil
}

func (g Gender) Value() (driver.Value, error) { return string(g), nil }

func (c *CaseStatus) Scan(src any) error {
	v, _ := ParseCaseStatus(scanString(src))
	if v == "" {
		v = CaseOpen
	}
	*c = v
	return nil
}

func (c CaseStatus) Value() (driver.Value, error) { return string(c), nil }

func scanString(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}
