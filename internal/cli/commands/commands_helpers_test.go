package commands

import (
	"CaseKeeper/internal/config"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	fsrepo "CaseKeeper/internal/cli/repo/fs"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/логин) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

// loggedIn сохраняет токен, как после успешного login.
func loggedIn(t *testing.T, token string) {
	t.Helper()
	withTempConfig(t)
	if err := (fsrepo.AuthFSStore{}).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

// newAPIServer поднимает сервер и возвращает конфиг клиента, смотрящий на него.
func newAPIServer(t *testing.T, h http.HandlerFunc) *config.Config {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &config.Config{ServerURL: ts.URL}
}
