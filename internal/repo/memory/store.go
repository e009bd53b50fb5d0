// Package memory хранит записи в памяти процесса.
// Подходит для тестов и запуска одного экземпляра без БД.
package memory

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store in-memory реализация repo.Store. Все методы безопасны для конкурентного вызова.
type Store struct {
	mu        sync.RWMutex
	users     map[string]model.User
	criminals map[string]model.CriminalRecord
	firs      map[string]model.FirRecord
}

var _ repo.Store = (*Store)(nil)

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		users:     make(map[string]model.User),
		criminals: make(map[string]model.CriminalRecord),
		firs:      make(map[string]model.FirRecord),
	}
}

func (s *Store) Users() repo.UserRepository         { return userRepo{s} }
func (s *Store) Criminals() repo.CriminalRepository { return criminalRepo{s} }
func (s *Store) Firs() repo.FirRepository           { return firRepo{s} }

// Close ничего не освобождает.
func (s *Store) Close() error { return nil }

// newestFirst сортирует по времени создания по убыванию, как реляционный бэкенд.
func newestFirst[T any](items []T, created func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]) > created(items[j])
	})
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneUser и соседи копируют и указатели: вызывающий не должен менять хранимое состояние.
func cloneUser(u model.User) *model.User {
	u.LastLoginAt = clonePtr(u.LastLoginAt)
	return &u
}

func cloneCriminal(c model.CriminalRecord) *model.CriminalRecord {
	c.FirNumber = clonePtr(c.FirNumber)
	c.ArrestDate = clonePtr(c.ArrestDate)
	c.Address = clonePtr(c.Address)
	c.Photo = clonePtr(c.Photo)
	return &c
}

func cloneFir(f model.FirRecord) *model.FirRecord {
	f.CriminalID = clonePtr(f.CriminalID)
	f.Criminal = nil
	return &f
}

type userRepo struct{ s *Store }

func (r userRepo) Get(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r userRepo) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *cloneUser(u))
	}
	newestFirst(out, func(u model.User) int64 { return u.CreatedAt.UnixNano() })
	return out, nil
}

func (r userRepo) Insert(_ context.Context, d model.UserDraft) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.usernameTaken(d.Username) {
		return nil, fmt.Errorf("username %q: %w", d.Username, repo.ErrConflict)
	}
	u, err := repo.NewUser(d, repo.Now())
	if err != nil {
		return nil, err
	}
	r.s.users[u.ID] = *cloneUser(*u)
	return u, nil
}

func (r userRepo) Update(_ context.Context, id string, p model.UserPatch) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if p.Username != nil && *p.Username != u.Username && r.usernameTaken(*p.Username) {
		return nil, fmt.Errorf("username %q: %w", *p.Username, repo.ErrConflict)
	}
	if err := repo.ApplyUserPatch(&u, p, repo.Now()); err != nil {
		return nil, err
	}
	r.s.users[id] = *cloneUser(u)
	return &u, nil
}

func (r userRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	return true, nil
}

// вызывать под блокировкой
func (r userRepo) usernameTaken(username string) bool {
	for _, u := range r.s.users {
		if u.Username == username {
			return true
		}
	}
	return false
}

type criminalRepo struct{ s *Store }

func (r criminalRepo) Get(_ context.Context, id string) (*model.CriminalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.criminals[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneCriminal(c), nil
}

func (r criminalRepo) List(_ context.Context) ([]model.CriminalRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.CriminalRecord, 0, len(r.s.criminals))
	for _, c := range r.s.criminals {
		out = append(out, *cloneCriminal(c))
	}
	newestFirst(out, func(c model.CriminalRecord) int64 { return c.CreatedAt.UnixNano() })
	return out, nil
}

func (r criminalRepo) Insert(_ context.Context, d model.CriminalDraft) (*model.CriminalRecord, error) {
	c := repo.NewCriminal(d, repo.Now())
	r.s.mu.Lock()
	r.s.criminals[c.ID] = *cloneCriminal(*c)
	r.s.mu.Unlock()
	return c, nil
}

func (r criminalRepo) Update(_ context.Context, id string, p model.CriminalPatch) (*model.CriminalRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.criminals[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p.Apply(&c)
	c.UpdatedAt = repo.Now()
	r.s.criminals[id] = *cloneCriminal(c)
	return &c, nil
}

// Delete удаляет карточку и обнуляет ссылки на неё в FIR.
func (r criminalRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.criminals[id]; !ok {
		return false, nil
	}
	delete(r.s.criminals, id)
	now := repo.Now()
	for fid, f := range r.s.firs {
		if f.CriminalID != nil && *f.CriminalID == id {
			f.CriminalID = nil
			f.UpdatedAt = now
			r.s.firs[fid] = f
		}
	}
	return true, nil
}

type firRepo struct{ s *Store }

func (r firRepo) Get(_ context.Context, id string) (*model.FirRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.firs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneFir(f), nil
}

func (r firRepo) GetByReportNumber(_ context.Context, number string) (*model.FirRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if f, ok := r.byNumber(number); ok {
		return cloneFir(f), nil
	}
	return nil, repo.ErrNotFound
}

func (r firRepo) List(_ context.Context) ([]model.FirRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.FirRecord, 0, len(r.s.firs))
	for _, f := range r.s.firs {
		out = append(out, *cloneFir(f))
	}
	newestFirst(out, func(f model.FirRecord) int64 { return f.CreatedAt.UnixNano() })
	return out, nil
}

func (r firRepo) Insert(ctx context.Context, d model.FirDraft) (*model.FirRecord, error) {
	now := repo.Now()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.CriminalID != nil && *d.CriminalID != "" {
		if _, ok := r.s.criminals[*d.CriminalID]; !ok {
			return nil, fmt.Errorf("criminal %s: %w", *d.CriminalID, repo.ErrDanglingReference)
		}
	}
	number, err := repo.ResolveReportNumber(ctx, d.FirNumber, now, func(_ context.Context, n string) (bool, error) {
		_, taken := r.byNumber(n)
		return taken, nil
	})
	if err != nil {
		return nil, err
	}
	f := repo.NewFir(d, number, now)
	r.s.firs[f.ID] = *cloneFir(*f)
	return f, nil
}

func (r firRepo) Update(_ context.Context, id string, p model.FirPatch) (*model.FirRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.firs[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if p.CriminalID != nil && *p.CriminalID != "" {
		if _, ok := r.s.criminals[*p.CriminalID]; !ok {
			return nil, fmt.Errorf("criminal %s: %w", *p.CriminalID, repo.ErrDanglingReference)
		}
	}
	if p.FirNumber != nil && *p.FirNumber != "" && *p.FirNumber != f.FirNumber {
		if _, taken := r.byNumber(*p.FirNumber); taken {
			return nil, fmt.Errorf("fir number %q: %w", *p.FirNumber, repo.ErrConflict)
		}
	}
	p.Apply(&f)
	f.UpdatedAt = repo.Now()
	r.s.firs[id] = *cloneFir(f)
	return &f, nil
}

func (r firRepo) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.firs[id]; !ok {
		return false, nil
	}
	delete(r.s.firs, id)
	return true, nil
}

// вызывать под блокировкой
func (r firRepo) byNumber(number string) (model.FirRecord, bool) {
	for _, f := range r.s.firs {
		if f.FirNumber == number {
			return f, true
		}
	}
	return model.FirRecord{}, false
}
