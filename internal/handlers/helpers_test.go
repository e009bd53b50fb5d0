package handlers_test

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/handlers"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo/memory"
	"CaseKeeper/internal/risk"
	"CaseKeeper/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	router   http.Handler
	cfg      *config.Config
	store    *memory.Store
	admin    *model.User
	operator *model.User
}

func newTestEnv(t *testing.T, facade *risk.Facade) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", PhotoMaxSize: 1}
	logger := zap.NewNop().Sugar()
	store := memory.New()

	userSvc := service.NewUserService(store.Users(), logger)
	recordSvc := service.NewRecordService(store, logger)
	statsSvc := service.NewStatsService(store)

	ctx := context.Background()
	admin, err := userSvc.Create(ctx, model.UserDraft{Username: "admin", Password: "admin123", Role: model.RoleAdmin, Active: true})
	require.NoError(t, err)
	operator, err := userSvc.Create(ctx, model.UserDraft{Username: "officer", Password: "officer1", Role: model.RoleOperator, Active: true})
	require.NoError(t, err)

	h := handlers.NewHandler(userSvc, recordSvc, statsSvc, facade, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, store: store, admin: admin, operator: operator}
}

func addAuthCookie(t *testing.T, req *http.Request, u *model.User, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, u.ID, u.Role, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет запрос от имени пользователя (nil = аноним).
func (e *testEnv) do(t *testing.T, method, path string, body any, as *model.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		addAuthCookie(t, req, as, e.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v))
	return v
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}
