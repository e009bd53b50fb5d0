// Package search фильтрует записи по подстроке и точным значениям полей.
package search

import (
	"CaseKeeper/internal/model"
	"strings"
)

// Filters имя поля -> требуемое значение. Пустые значения игнорируются.
type Filters map[string]string

// Fields описывает, как искать по записи типа T.
type Fields[T any] struct {
	// Text поля, по которым идёт поиск подстроки (логическое ИЛИ).
	Text func(T) []string
	// Value значение поля для фильтра; ok=false, если такого поля нет.
	Value func(T, string) (string, bool)
}

// Apply оставляет записи, где query встречается хотя бы в одном текстовом поле
// без учёта регистра и все фильтры совпадают. Пустой запрос не ограничивает.
func Apply[T any](items []T, query string, filters Filters, f Fields[T]) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	active := make(map[string]string, len(filters))
	for k, v := range filters {
		if v != "" {
			active[k] = v
		}
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if q != "" && !containsAny(f.Text(it), q) {
			continue
		}
		if !matchesAll(it, active, f.Value) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func containsAny(fields []string, q string) bool {
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func matchesAll[T any](it T, filters Filters, value func(T, string) (string, bool)) bool {
	for k, want := range filters {
		got, ok := value(it, k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// CriminalFields поиск по имени и номеру FIR; фильтры status, gender, crimeType.
var CriminalFields = Fields[model.CriminalRecord]{
	Text: func(c model.CriminalRecord) []string {
		if c.FirNumber == nil {
			return []string{c.Name}
		}
		return []string{c.Name, *c.FirNumber}
	},
	Value: func(c model.CriminalRecord, field string) (string, bool) {
		switch field {
		case "status":
			return string(c.Status), true
		case "gender":
			return string(c.Gender), true
		case "crimeType":
			return c.CrimeType, true
		}
		return "", false
	},
}

// FirFields поиск по номеру и описанию; фильтр criminalId.
var FirFields = Fields[model.FirRecord]{
	Text: func(f model.FirRecord) []string {
		return []string{f.FirNumber, f.Description}
	},
	Value: func(f model.FirRecord, field string) (string, bool) {
		switch field {
		case "criminalId":
			if f.CriminalID == nil {
				return "", true
			}
			return *f.CriminalID, true
		}
		return "", false
	},
}

// Criminals поиск по карточкам.
func Criminals(items []model.CriminalRecord, query string, filters Filters) []model.CriminalRecord {
	return Apply(items, query, filters, CriminalFields)
}

// Firs поиск по FIR.
func Firs(items []model.FirRecord, query string, filters Filters) []model.FirRecord {
	return Apply(items, query, filters, FirFields)
}
