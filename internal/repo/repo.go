package repo

import (
	"CaseKeeper/internal/model"
	"context"
)

// UserRepository контракт хранения пользователей.
type UserRepository interface {
	// Get возвращает пользователя по id или ErrNotFound.
	Get(ctx context.Context, id string) (*model.User, error)
	// GetByUsername поиск по логину для аутентификации.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Insert хеширует пароль, назначает id и метки времени.
	Insert(ctx context.Context, d model.UserDraft) (*model.User, error)
	// Update сливает патч и всегда обновляет UpdatedAt.
	Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error)
	// Delete возвращает true, если запись существовала.
	Delete(ctx context.Context, id string) (bool, error)
}

// CriminalRepository контракт хранения карточек фигурантов.
type CriminalRepository interface {
	Get(ctx context.Context, id string) (*model.CriminalRecord, error)
	List(ctx context.Context) ([]model.CriminalRecord, error)
	Insert(ctx context.Context, d model.CriminalDraft) (*model.CriminalRecord, error)
	Update(ctx context.Context, id string, p model.CriminalPatch) (*model.CriminalRecord, error)
	// Delete удаляет карточку и обнуляет ссылки на неё в FIR.
	Delete(ctx context.Context, id string) (bool, error)
}

// FirRepository контракт хранения FIR.
type FirRepository interface {
	Get(ctx context.Context, id string) (*model.FirRecord, error)
	GetByReportNumber(ctx context.Context, number string) (*model.FirRecord, error)
	List(ctx context.Context) ([]model.FirRecord, error)
	Insert(ctx context.Context, d model.FirDraft) (*model.FirRecord, error)
	Update(ctx context.Context, id string, p model.FirPatch) (*model.FirRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Store объединяет репозитории одного бэкенда.
type Store interface {
	Users() UserRepository
	Criminals() CriminalRepository
	Firs() FirRepository
	Close() error
}
