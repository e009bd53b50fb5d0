// Package idgen выдаёт идентификаторы записей и номера FIR.
package idgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// ReportNumberAttempts сколько раз пробуем подобрать свободный номер FIR.
const ReportNumberAttempts = 5

// ErrNoFreeReportNumber все попытки дали занятые номера.
var ErrNoFreeReportNumber = errors.New("no free report number")

// NewID возвращает уникальный непрозрачный идентификатор.
func NewID() string {
	return uuid.NewString()
}

// NewReportNumber формирует номер вида FIR-<год>-<6 цифр>.
// Коллизии не проверяются.
func NewReportNumber(now time.Time) string {
	return fmt.Sprintf("FIR-%04d-%06d", now.Year(), rand.IntN(1_000_000))
}

// UniqueReportNumber генерирует номер и проверяет его через taken,
// повторяя попытку при совпадении.
func UniqueReportNumber(ctx context.Context, now time.Time, taken func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < ReportNumberAttempts; i++ {
		n := NewReportNumber(now)
		busy, err := taken(ctx, n)
		if err != nil {
			return "", err
		}
		if !busy {
			return n, nil
		}
	}
	return "", ErrNoFreeReportNumber
}
