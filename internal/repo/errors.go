package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound запись с таким идентификатором отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrConflict нарушена уникальность (логин, номер FIR).
	ErrConflict = errors.New("record conflict")
	// ErrDanglingReference FIR ссылается на несуществующую карточку.
	ErrDanglingReference = errors.New("referenced criminal record does not exist")
	// ErrStorage сбой бэкенда хранения.
	ErrStorage = errors.New("storage failure")
)

// StorageError оборачивает ошибку драйвера.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
