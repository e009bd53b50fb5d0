package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"CaseKeeper/internal/cli/repo"
)

// Do отправляет запрос. payload == nil — без тела. Непустой token передаётся как auth cookie.
func Do(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	var rd io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, bytes.TrimSpace(body), nil
}

// PostJSON sends a JSON POST request.
func PostJSON(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	return Do(ctx, http.MethodPost, url, payload, token)
}

// GetJSON выполняет GET и раскладывает JSON-ответ 200 в dst.
func GetJSON(ctx context.Context, url, token string, dst any) error {
	resp, body, err := Do(ctx, http.MethodGet, url, nil, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return StatusError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// StatusError текст ошибки по ответу сервера вида {"error": "..."}.
func StatusError(code int, body []byte) error {
	var e struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		if len(e.Fields) > 0 {
			return fmt.Errorf("server status %d: %s (%s)", code, e.Error, strings.Join(e.Fields, ", "))
		}
		return fmt.Errorf("server status %d: %s", code, e.Error)
	}
	return fmt.Errorf("server status %d: %s", code, string(body))
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}
