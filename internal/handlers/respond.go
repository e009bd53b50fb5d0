package handlers

import (
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/risk"
	"CaseKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON читает тело запроса; превышение лимита отдаётся как есть (413).
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return fieldsError("body")
	}
	return nil
}

// respondError переводит доменные ошибки в HTTP-статусы.
func respondError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var ve *ValidationError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields})
	case errors.As(err, &mbe):
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
	case errors.Is(err, repo.ErrDanglingReference):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "referenced criminal does not exist", Fields: []string{"criminalId"}})
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrInactiveUser):
		writeError(w, http.StatusForbidden, "user is inactive")
	case errors.Is(err, risk.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "predictions unavailable")
	case errors.Is(err, repo.ErrStorage):
		logger.Errorw(op+": storage failure", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		logger.Errorw(op+": internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

// respondDeleted 204 при удалении, 404 если записи не было.
func respondDeleted(w http.ResponseWriter, logger *zap.SugaredLogger, op string, del func() (bool, error)) {
	ok, err := del()
	if err != nil {
		respondError(w, logger, op, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
