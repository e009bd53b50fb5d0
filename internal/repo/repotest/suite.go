// Package repotest общий набор тестов контракта repo.Store.
// Каждый бэкенд вызывает Run из своего _test.go.
package repotest

import (
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Factory создаёт пустое хранилище для одного подтеста.
type Factory func(t *testing.T) repo.Store

var reportNumberRe = regexp.MustCompile(`^FIR-\d{4}-\d{6}$`)

func ptr[T any](v T) *T { return &v }

// Run прогоняет контракт хранилища.
func Run(t *testing.T, newStore Factory) {
	t.Run("criminal round trip", func(t *testing.T) { testCriminalRoundTrip(t, newStore(t)) })
	t.Run("criminal defaults", func(t *testing.T) { testCriminalDefaults(t, newStore(t)) })
	t.Run("criminal empty patch", func(t *testing.T) { testCriminalEmptyPatch(t, newStore(t)) })
	t.Run("criminal patch", func(t *testing.T) { testCriminalPatch(t, newStore(t)) })
	t.Run("delete then get", func(t *testing.T) { testDeleteThenGet(t, newStore(t)) })
	t.Run("unknown ids", func(t *testing.T) { testUnknownIDs(t, newStore(t)) })
	t.Run("list newest first", func(t *testing.T) { testListOrder(t, newStore(t)) })
	t.Run("fir round trip", func(t *testing.T) { testFirRoundTrip(t, newStore(t)) })
	t.Run("fir number conflict", func(t *testing.T) { testFirNumberConflict(t, newStore(t)) })
	t.Run("fir dangling reference", func(t *testing.T) { testFirDanglingReference(t, newStore(t)) })
	t.Run("criminal delete clears fir reference", func(t *testing.T) { testCriminalDeleteClearsFir(t, newStore(t)) })
	t.Run("fir empty patch", func(t *testing.T) { testFirEmptyPatch(t, newStore(t)) })
	t.Run("user password hashing", func(t *testing.T) { testUserPassword(t, newStore(t)) })
	t.Run("user username unique", func(t *testing.T) { testUsernameUnique(t, newStore(t)) })
	t.Run("user round trip", func(t *testing.T) { testUserRoundTrip(t, newStore(t)) })
}

func johnDoe() model.CriminalDraft {
	return model.CriminalDraft{Name: "John Doe", Age: 30, Gender: model.GenderMale, CrimeType: "theft"}
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "time mismatch: want %s, got %s", want, got)
}

func sameTimePtr(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil || got == nil {
		assert.Equal(t, want == nil, got == nil, "nullable time mismatch")
		return
	}
	sameTime(t, *want, *got)
}

func sameCriminal(t *testing.T, want, got *model.CriminalRecord) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Age, got.Age)
	assert.Equal(t, want.Gender, got.Gender)
	assert.Equal(t, want.CrimeType, got.CrimeType)
	assert.Equal(t, want.FirNumber, got.FirNumber)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Address, got.Address)
	assert.Equal(t, want.Photo, got.Photo)
	sameTimePtr(t, want.ArrestDate, got.ArrestDate)
	sameTime(t, want.CreatedAt, got.CreatedAt)
}

func sameFir(t *testing.T, want, got *model.FirRecord) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.FirNumber, got.FirNumber)
	assert.Equal(t, want.CriminalID, got.CriminalID)
	assert.Equal(t, want.Description, got.Description)
	sameTime(t, want.ReportDate, got.ReportDate)
	sameTime(t, want.CreatedAt, got.CreatedAt)
}

func testCriminalRoundTrip(t *testing.T, s repo.Store) {
	ctx := context.Background()
	arrested := time.Date(2023, 11, 5, 14, 30, 0, 0, time.UTC)
	d := model.CriminalDraft{
		Name:       "Jane Roe",
		Age:        41,
		Gender:     model.GenderFemale,
		CrimeType:  "fraud",
		FirNumber:  ptr("FIR-2023-000123"),
		Status:     model.CasePending,
		ArrestDate: &arrested,
		Address:    ptr("12 Baker Street"),
		Photo:      ptr("data:image/png;base64,iVBORw0KGgo="),
	}
	created, err := s.Criminals().Insert(ctx, d)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	sameTime(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.Criminals().Get(ctx, created.ID)
	require.NoError(t, err)
	sameCriminal(t, created, got)
	sameTime(t, created.UpdatedAt, got.UpdatedAt)
}

func testCriminalDefaults(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, johnDoe())
	require.NoError(t, err)
	require.NotNil(t, c.FirNumber)
	assert.Regexp(t, reportNumberRe, *c.FirNumber)
	assert.Equal(t, model.CaseOpen, c.Status)
	assert.Nil(t, c.ArrestDate)
	assert.Nil(t, c.Address)
	assert.Nil(t, c.Photo)
}

func testCriminalEmptyPatch(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, johnDoe())
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	upd, err := s.Criminals().Update(ctx, c.ID, model.CriminalPatch{})
	require.NoError(t, err)
	sameCriminal(t, c, upd)
	assert.True(t, upd.UpdatedAt.After(c.UpdatedAt), "updatedAt must move forward")

	got, err := s.Criminals().Get(ctx, c.ID)
	require.NoError(t, err)
	sameCriminal(t, c, got)
	sameTime(t, upd.UpdatedAt, got.UpdatedAt)
}

func testCriminalPatch(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, model.CriminalDraft{
		Name: "A", Age: 20, Gender: model.GenderOther, CrimeType: "assault", Address: ptr("old"),
	})
	require.NoError(t, err)

	closed := model.CaseClosed
	upd, err := s.Criminals().Update(ctx, c.ID, model.CriminalPatch{
		Age:     ptr(21),
		Status:  &closed,
		Address: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, 21, upd.Age)
	assert.Equal(t, model.CaseClosed, upd.Status)
	assert.Nil(t, upd.Address)
	assert.Equal(t, "A", upd.Name)

	got, err := s.Criminals().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, got.Age)
	assert.Equal(t, model.CaseClosed, got.Status)
	assert.Nil(t, got.Address)
}

func testDeleteThenGet(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, johnDoe())
	require.NoError(t, err)

	ok, err := s.Criminals().Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Criminals().Get(ctx, c.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// повторное удаление не ошибка
	ok, err = s.Criminals().Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	f, err := s.Firs().Insert(ctx, model.FirDraft{Description: "burglary reported"})
	require.NoError(t, err)
	ok, err = s.Firs().Delete(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.Firs().Get(ctx, f.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	u, err := s.Users().Insert(ctx, model.UserDraft{Username: "gone", Password: "pw", Role: model.RoleOperator, Active: true})
	require.NoError(t, err)
	ok, err = s.Users().Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = s.Users().Get(ctx, u.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func testUnknownIDs(t *testing.T, s repo.Store) {
	ctx := context.Background()
	const id = "00000000-0000-0000-0000-000000000000"

	_, err := s.Criminals().Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NotErrorIs(t, err, repo.ErrStorage)
	_, err = s.Criminals().Update(ctx, id, model.CriminalPatch{})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = s.Firs().Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Firs().GetByReportNumber(ctx, "FIR-0000-000000")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Firs().Update(ctx, id, model.FirPatch{})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = s.Users().Get(ctx, id)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Users().GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Users().Update(ctx, id, model.UserPatch{})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	ok, err := s.Users().Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Firs().Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testListOrder(t *testing.T, s repo.Store) {
	ctx := context.Background()
	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		d := johnDoe()
		d.Name = name
		c, err := s.Criminals().Insert(ctx, d)
		require.NoError(t, err)
		ids = append(ids, c.ID)
		time.Sleep(2 * time.Millisecond)
	}
	list, err := s.Criminals().List(ctx)
	require.NoError(t, err)
	if assert.Len(t, list, 3) {
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[1], list[1].ID)
		assert.Equal(t, ids[0], list[2].ID)
	}
}

func testFirRoundTrip(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, johnDoe())
	require.NoError(t, err)

	f, err := s.Firs().Insert(ctx, model.FirDraft{CriminalID: &c.ID, Description: "stolen bicycle"})
	require.NoError(t, err)
	assert.Regexp(t, reportNumberRe, f.FirNumber)
	sameTime(t, f.CreatedAt, f.ReportDate)

	got, err := s.Firs().Get(ctx, f.ID)
	require.NoError(t, err)
	sameFir(t, f, got)

	byNumber, err := s.Firs().GetByReportNumber(ctx, f.FirNumber)
	require.NoError(t, err)
	assert.Equal(t, f.ID, byNumber.ID)

	list, err := s.Firs().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testFirNumberConflict(t *testing.T, s repo.Store) {
	ctx := context.Background()
	_, err := s.Firs().Insert(ctx, model.FirDraft{FirNumber: ptr("FIR-2024-000001"), Description: "a"})
	require.NoError(t, err)

	_, err = s.Firs().Insert(ctx, model.FirDraft{FirNumber: ptr("FIR-2024-000001"), Description: "b"})
	assert.ErrorIs(t, err, repo.ErrConflict)

	other, err := s.Firs().Insert(ctx, model.FirDraft{FirNumber: ptr("FIR-2024-000002"), Description: "c"})
	require.NoError(t, err)
	_, err = s.Firs().Update(ctx, other.ID, model.FirPatch{FirNumber: ptr("FIR-2024-000001")})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func testFirDanglingReference(t *testing.T, s repo.Store) {
	ctx := context.Background()
	_, err := s.Firs().Insert(ctx, model.FirDraft{CriminalID: ptr("missing"), Description: "x"})
	assert.ErrorIs(t, err, repo.ErrDanglingReference)

	f, err := s.Firs().Insert(ctx, model.FirDraft{Description: "x"})
	require.NoError(t, err)
	_, err = s.Firs().Update(ctx, f.ID, model.FirPatch{CriminalID: ptr("missing")})
	assert.ErrorIs(t, err, repo.ErrDanglingReference)
}

func testCriminalDeleteClearsFir(t *testing.T, s repo.Store) {
	ctx := context.Background()
	c, err := s.Criminals().Insert(ctx, johnDoe())
	require.NoError(t, err)
	f, err := s.Firs().Insert(ctx, model.FirDraft{CriminalID: &c.ID, Description: "pickpocketing"})
	require.NoError(t, err)
	require.NotNil(t, f.CriminalID)

	ok, err := s.Criminals().Delete(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := s.Firs().Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CriminalID)
	assert.Equal(t, "pickpocketing", got.Description)
}

func testFirEmptyPatch(t *testing.T, s repo.Store) {
	ctx := context.Background()
	f, err := s.Firs().Insert(ctx, model.FirDraft{Description: "vandalism"})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	upd, err := s.Firs().Update(ctx, f.ID, model.FirPatch{})
	require.NoError(t, err)
	sameFir(t, f, upd)
	assert.True(t, upd.UpdatedAt.After(f.UpdatedAt))
}

func testUserPassword(t *testing.T, s repo.Store) {
	ctx := context.Background()
	u, err := s.Users().Insert(ctx, model.UserDraft{Username: "alice", Password: "secret", Role: model.RoleAdmin, Name: "Alice", Active: true})
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")))

	// патч без пароля хеш не трогает
	upd, err := s.Users().Update(ctx, u.ID, model.UserPatch{Name: ptr("Alice B")})
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, upd.PasswordHash)

	upd, err = s.Users().Update(ctx, u.ID, model.UserPatch{Password: ptr("new-secret")})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(upd.PasswordHash), []byte("new-secret")))

	got, err := s.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, upd.PasswordHash, got.PasswordHash)
	assert.Equal(t, "Alice B", got.Name)
}

func testUsernameUnique(t *testing.T, s repo.Store) {
	ctx := context.Background()
	_, err := s.Users().Insert(ctx, model.UserDraft{Username: "bob", Password: "x", Role: model.RoleOperator})
	require.NoError(t, err)
	_, err = s.Users().Insert(ctx, model.UserDraft{Username: "bob", Password: "y", Role: model.RoleOperator})
	assert.ErrorIs(t, err, repo.ErrConflict)

	carol, err := s.Users().Insert(ctx, model.UserDraft{Username: "carol", Password: "z", Role: model.RoleOperator})
	require.NoError(t, err)
	_, err = s.Users().Update(ctx, carol.ID, model.UserPatch{Username: ptr("bob")})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func testUserRoundTrip(t *testing.T, s repo.Store) {
	ctx := context.Background()
	u, err := s.Users().Insert(ctx, model.UserDraft{Username: "op", Password: "pw", Name: "Operator", Active: true})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOperator, u.Role)
	assert.Nil(t, u.LastLoginAt)

	login := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err = s.Users().Update(ctx, u.ID, model.UserPatch{LastLoginAt: &login})
	require.NoError(t, err)

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.Role, got.Role)
	assert.True(t, got.Active)
	sameTimePtr(t, &login, got.LastLoginAt)
	sameTime(t, u.CreatedAt, got.CreatedAt)

	list, err := s.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
