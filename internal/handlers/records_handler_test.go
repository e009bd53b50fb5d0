package handlers_test

import (
	"CaseKeeper/internal/model"
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriminals_CreateAndValidate(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("operator creates", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
			"name": "John Doe", "age": 34, "gender": "male", "crimeType": "theft",
			"arrestDate": "2024-03-01",
		}, env.operator)
		require.Equal(t, http.StatusCreated, rr.Code)

		c := decodeBody[model.CriminalRecord](t, rr)
		assert.Equal(t, model.CaseOpen, c.Status)
		if assert.NotNil(t, c.FirNumber) {
			assert.Regexp(t, `^FIR-\d{4}-\d{6}$`, *c.FirNumber)
		}
		if assert.NotNil(t, c.ArrestDate) {
			assert.Equal(t, "2024-03-01", c.ArrestDate.Format("2006-01-02"))
		}
	})

	t.Run("field errors", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
			"name": "X", "age": 151, "gender": "unknown", "crimeType": "",
		}, env.operator)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.ElementsMatch(t, []string{"age", "gender", "crimeType"}, decodeBody[errorBody](t, rr).Fields)
	})

	t.Run("bad arrest date", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
			"name": "X", "age": 20, "gender": "other", "crimeType": "fraud", "arrestDate": "yesterday",
		}, env.operator)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []string{"arrestDate"}, decodeBody[errorBody](t, rr).Fields)
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", `{"name":`, env.operator)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{"name": "X"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestCriminals_Photo(t *testing.T) {
	env := newTestEnv(t, nil)
	base := map[string]any{"name": "P", "age": 30, "gender": "female", "crimeType": "fraud"}

	withPhoto := func(photo string) map[string]any {
		m := map[string]any{"photo": photo}
		for k, v := range base {
			m[k] = v
		}
		return m
	}

	t.Run("ok", func(t *testing.T) {
		photo := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
		rr := env.do(t, http.MethodPost, "/api/criminals", withPhoto(photo), env.operator)
		require.Equal(t, http.StatusCreated, rr.Code)
		c := decodeBody[model.CriminalRecord](t, rr)
		if assert.NotNil(t, c.Photo) {
			assert.Equal(t, photo, *c.Photo)
		}
	})

	t.Run("not a data url", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/criminals", withPhoto("http://example.com/x.png"), env.operator)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []string{"photo"}, decodeBody[errorBody](t, rr).Fields)
	})

	t.Run("too large", func(t *testing.T) {
		// лимит в тестах 1 МиБ
		raw := make([]byte, 1<<20+1)
		photo := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)
		rr := env.do(t, http.MethodPost, "/api/criminals", withPhoto(photo), env.operator)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("body over limit", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("a", 3<<20) + `"}`
		rr := env.do(t, http.MethodPost, "/api/criminals", body, env.operator)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}

func TestCriminals_RoleRule(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
		"name": "Jane Roe", "age": 28, "gender": "female", "crimeType": "fraud",
	}, env.operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeBody[model.CriminalRecord](t, rr).ID

	rr = env.do(t, http.MethodGet, "/api/criminals/"+id, nil, env.operator)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"status": "closed"}, env.operator)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/criminals/"+id, nil, env.operator)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"status": "closed", "address": "221B Baker St"}, env.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeBody[model.CriminalRecord](t, rr)
	assert.Equal(t, model.CaseClosed, updated.Status)
	assert.Equal(t, "Jane Roe", updated.Name)
	if assert.NotNil(t, updated.Address) {
		assert.Equal(t, "221B Baker St", *updated.Address)
	}

	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"address": ""}, env.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decodeBody[model.CriminalRecord](t, rr).Address)

	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"age": 0}, env.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/criminals/"+id, nil, env.admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/criminals/"+id, nil, env.admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"name": "Ghost"}, env.admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCriminals_RoleComesFromStoredUser(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
		"name": "Jane Roe", "age": 28, "gender": "female", "crimeType": "fraud",
	}, env.operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeBody[model.CriminalRecord](t, rr).ID

	// токен выписан ещё на admin, затем учётку понизили
	staleAdmin := *env.admin
	demoted := model.RoleOperator
	_, err := env.store.Users().Update(context.Background(), env.admin.ID, model.UserPatch{Role: &demoted})
	require.NoError(t, err)

	rr = env.do(t, http.MethodPut, "/api/criminals/"+id, map[string]any{"status": "closed"}, &staleAdmin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/criminals/"+id, nil, &staleAdmin)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// отключённый пользователь теряет доступ целиком
	inactive := false
	_, err = env.store.Users().Update(context.Background(), env.operator.ID, model.UserPatch{Active: &inactive})
	require.NoError(t, err)
	rr = env.do(t, http.MethodGet, "/api/criminals/"+id, nil, env.operator)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// удалённый тоже
	_, err = env.store.Users().Delete(context.Background(), env.operator.ID)
	require.NoError(t, err)
	rr = env.do(t, http.MethodGet, "/api/stats", nil, env.operator)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCriminals_Search(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, c := range []map[string]any{
		{"name": "Theft Master", "age": 40, "gender": "male", "crimeType": "theft", "status": "closed"},
		{"name": "Car Thief", "age": 25, "gender": "male", "crimeType": "theft", "status": "open"},
		{"name": "Clean Sheet", "age": 33, "gender": "female", "crimeType": "fraud", "status": "closed"},
	} {
		rr := env.do(t, http.MethodPost, "/api/criminals", c, env.operator)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/criminals?q=theft&status=closed", nil, env.operator)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]model.CriminalRecord](t, rr)
	if assert.Len(t, list, 1) {
		assert.Equal(t, "Theft Master", list[0].Name)
	}

	rr = env.do(t, http.MethodGet, "/api/criminals?gender=male", nil, env.operator)
	assert.Len(t, decodeBody[[]model.CriminalRecord](t, rr), 2)

	rr = env.do(t, http.MethodGet, "/api/criminals", nil, env.operator)
	assert.Len(t, decodeBody[[]model.CriminalRecord](t, rr), 3)
}

func TestRecords_BlankTextRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/firs", map[string]any{"description": "   \t "}, env.operator)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"description"}, decodeBody[errorBody](t, rr).Fields)

	rr = env.do(t, http.MethodPost, "/api/criminals", map[string]any{
		"name": "  ", "age": 30, "gender": "male", "crimeType": " ",
	}, env.operator)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.ElementsMatch(t, []string{"name", "crimeType"}, decodeBody[errorBody](t, rr).Fields)

	rr = env.do(t, http.MethodPost, "/api/firs", map[string]any{"description": "wallet stolen"}, env.operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeBody[model.FirRecord](t, rr).ID

	rr = env.do(t, http.MethodPut, "/api/firs/"+id, map[string]any{"description": "  "}, env.admin)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"description"}, decodeBody[errorBody](t, rr).Fields)
}

func TestFirs_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
		"name": "John Doe", "age": 34, "gender": "male", "crimeType": "theft",
	}, env.operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	criminalID := decodeBody[model.CriminalRecord](t, rr).ID

	rr = env.do(t, http.MethodPost, "/api/firs", map[string]any{
		"firNumber": "FIR-2024-000001", "criminalId": criminalID, "description": "bag snatched",
		"reportDate": "2024-05-01T10:00:00Z",
	}, env.operator)
	require.Equal(t, http.StatusCreated, rr.Code)
	fir := decodeBody[model.FirRecord](t, rr)
	assert.Equal(t, "FIR-2024-000001", fir.FirNumber)

	rr = env.do(t, http.MethodPost, "/api/firs", map[string]any{
		"firNumber": "FIR-2024-000001", "description": "duplicate",
	}, env.operator)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/firs", map[string]any{
		"criminalId": "missing", "description": "dangling",
	}, env.operator)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"criminalId"}, decodeBody[errorBody](t, rr).Fields)

	rr = env.do(t, http.MethodPost, "/api/firs", map[string]any{}, env.operator)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, []string{"description"}, decodeBody[errorBody](t, rr).Fields)

	rr = env.do(t, http.MethodGet, "/api/firs?criminalId="+criminalID, nil, env.operator)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]model.FirRecord](t, rr), 1)

	rr = env.do(t, http.MethodPut, "/api/firs/"+fir.ID, map[string]any{"description": "bag and phone snatched"}, env.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bag and phone snatched", decodeBody[model.FirRecord](t, rr).Description)

	// удаление карточки обнуляет ссылку в FIR
	rr = env.do(t, http.MethodDelete, "/api/criminals/"+criminalID, nil, env.admin)
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/firs/"+fir.ID, nil, env.operator)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decodeBody[model.FirRecord](t, rr).CriminalID)

	rr = env.do(t, http.MethodDelete, "/api/firs/"+fir.ID, nil, env.operator)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = env.do(t, http.MethodDelete, "/api/firs/"+fir.ID, nil, env.admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, s := range []string{"open", "pending", "closed"} {
		rr := env.do(t, http.MethodPost, "/api/criminals", map[string]any{
			"name": "N", "age": 30, "gender": "other", "crimeType": "theft", "status": s,
		}, env.operator)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.do(t, http.MethodGet, "/api/stats", nil, env.operator)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decodeBody[model.Statistics](t, rr)
	assert.Equal(t, 3, st.TotalCriminals)
	assert.Equal(t, 0, st.ActiveFirs)
	assert.Equal(t, 1, st.SolvedCases)
	assert.Equal(t, 1, st.PendingCases)
	assert.Len(t, st.CaseStatusDistribution, 3)
}
