package handlers

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/search"
	"CaseKeeper/internal/service"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RecordHandler карточки фигурантов и FIR.
type RecordHandler struct {
	RecordService *service.RecordService
	Logger        *zap.SugaredLogger
	Config        *config.Config
	validate      *requestValidator
}

func NewRecordHandler(recordService *service.RecordService, logger *zap.SugaredLogger, cfg *config.Config, v *requestValidator) *RecordHandler {
	return &RecordHandler{RecordService: recordService, Logger: logger, Config: cfg, validate: v}
}

type criminalRequest struct {
	Name       string  `json:"name" validate:"required,notblank,max=255"`
	Age        int     `json:"age" validate:"required,min=1,max=150"`
	Gender     string  `json:"gender" validate:"required,oneof=male female other"`
	CrimeType  string  `json:"crimeType" validate:"required,notblank,max=100"`
	FirNumber  *string `json:"firNumber" validate:"omitempty,max=32"`
	Status     string  `json:"status" validate:"omitempty,oneof=open pending closed"`
	ArrestDate *string `json:"arrestDate"`
	Address    *string `json:"address"`
	Photo      *string `json:"photo" validate:"omitempty,photo"`
}

type criminalPatchRequest struct {
	Name       *string `json:"name" validate:"omitnil,notblank,max=255"`
	Age        *int    `json:"age" validate:"omitnil,min=1,max=150"`
	Gender     *string `json:"gender" validate:"omitnil,oneof=male female other"`
	CrimeType  *string `json:"crimeType" validate:"omitnil,notblank,max=100"`
	FirNumber  *string `json:"firNumber" validate:"omitempty,max=32"`
	Status     *string `json:"status" validate:"omitnil,oneof=open pending closed"`
	ArrestDate *string `json:"arrestDate"`
	Address    *string `json:"address"`
	Photo      *string `json:"photo" validate:"omitempty,photo"`
}

type firRequest struct {
	FirNumber   *string `json:"firNumber" validate:"omitempty,max=32"`
	CriminalID  *string `json:"criminalId"`
	ReportDate  *string `json:"reportDate"`
	Description string  `json:"description" validate:"required,notblank"`
}

type firPatchRequest struct {
	FirNumber   *string `json:"firNumber" validate:"omitempty,max=32"`
	CriminalID  *string `json:"criminalId"`
	ReportDate  *string `json:"reportDate"`
	Description *string `json:"description" validate:"omitnil,notblank"`
}

// limitBody ограничивает тело запроса: фото плюс 1 МиБ на остальные поля.
func (h *RecordHandler) limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.PhotoMaxBytes()+1<<20)
}

// checkPhoto проверяет размер декодированного фото.
func (h *RecordHandler) checkPhoto(photo *string) (tooLarge bool) {
	if photo == nil || *photo == "" {
		return false
	}
	data, err := decodePhoto(*photo)
	return err == nil && int64(len(data)) > h.Config.PhotoMaxBytes()
}

// parseDate принимает RFC3339 или YYYY-MM-DD. Пустая строка даёт нулевое время.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return &time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fieldsError(field)
}

func recordFilters(r *http.Request, keys ...string) (string, search.Filters) {
	q := r.URL.Query()
	filters := make(search.Filters, len(keys))
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			filters[k] = v
		}
	}
	return q.Get("q"), filters
}

func (h *RecordHandler) ListCriminals(w http.ResponseWriter, r *http.Request) {
	query, filters := recordFilters(r, "status", "gender", "crimeType")
	list, err := h.RecordService.ListCriminals(r.Context(), query, filters)
	if err != nil {
		respondError(w, h.Logger, "ListCriminals", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RecordHandler) GetCriminal(w http.ResponseWriter, r *http.Request) {
	c, err := h.RecordService.GetCriminal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, "GetCriminal", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *RecordHandler) CreateCriminal(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req criminalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "CreateCriminal", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "CreateCriminal", err)
		return
	}
	if h.checkPhoto(req.Photo) {
		h.Logger.Warnw("CreateCriminal: photo too large", "limit", h.Config.PhotoMaxBytes())
		writeError(w, http.StatusRequestEntityTooLarge, "photo too large")
		return
	}
	arrest, err := parseDate("arrestDate", req.ArrestDate)
	if err != nil {
		respondError(w, h.Logger, "CreateCriminal", err)
		return
	}
	if arrest != nil && arrest.IsZero() {
		arrest = nil
	}

	gender, _ := model.ParseGender(req.Gender)
	status, _ := model.ParseCaseStatus(req.Status)
	draft := model.CriminalDraft{
		Name:       req.Name,
		Age:        req.Age,
		Gender:     gender,
		CrimeType:  req.CrimeType,
		FirNumber:  emptyToNil(req.FirNumber),
		Status:     status,
		ArrestDate: arrest,
		Address:    emptyToNil(req.Address),
		Photo:      emptyToNil(req.Photo),
	}
	c, err := h.RecordService.CreateCriminal(r.Context(), draft)
	if err != nil {
		respondError(w, h.Logger, "CreateCriminal", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *RecordHandler) UpdateCriminal(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req criminalPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "UpdateCriminal", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "UpdateCriminal", err)
		return
	}
	if h.checkPhoto(req.Photo) {
		writeError(w, http.StatusRequestEntityTooLarge, "photo too large")
		return
	}
	arrest, err := parseDate("arrestDate", req.ArrestDate)
	if err != nil {
		respondError(w, h.Logger, "UpdateCriminal", err)
		return
	}

	patch := model.CriminalPatch{
		Name:       req.Name,
		Age:        req.Age,
		CrimeType:  req.CrimeType,
		FirNumber:  req.FirNumber,
		ArrestDate: arrest,
		Address:    req.Address,
		Photo:      req.Photo,
	}
	if req.Gender != nil {
		g, _ := model.ParseGender(*req.Gender)
		patch.Gender = &g
	}
	if req.Status != nil {
		s, _ := model.ParseCaseStatus(*req.Status)
		patch.Status = &s
	}
	c, err := h.RecordService.UpdateCriminal(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, h.Logger, "UpdateCriminal", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *RecordHandler) DeleteCriminal(w http.ResponseWriter, r *http.Request) {
	respondDeleted(w, h.Logger, "DeleteCriminal", func() (bool, error) {
		return h.RecordService.DeleteCriminal(r.Context(), chi.URLParam(r, "id"))
	})
}

func (h *RecordHandler) ListFirs(w http.ResponseWriter, r *http.Request) {
	query, filters := recordFilters(r, "criminalId")
	list, err := h.RecordService.ListFirs(r.Context(), query, filters)
	if err != nil {
		respondError(w, h.Logger, "ListFirs", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RecordHandler) GetFir(w http.ResponseWriter, r *http.Request) {
	f, err := h.RecordService.GetFir(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, "GetFir", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *RecordHandler) CreateFir(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req firRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "CreateFir", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "CreateFir", err)
		return
	}
	reported, err := parseDate("reportDate", req.ReportDate)
	if err != nil {
		respondError(w, h.Logger, "CreateFir", err)
		return
	}
	if reported != nil && reported.IsZero() {
		reported = nil
	}

	f, err := h.RecordService.CreateFir(r.Context(), model.FirDraft{
		FirNumber:   emptyToNil(req.FirNumber),
		CriminalID:  emptyToNil(req.CriminalID),
		ReportDate:  reported,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, h.Logger, "CreateFir", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *RecordHandler) UpdateFir(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req firPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "UpdateFir", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "UpdateFir", err)
		return
	}
	reported, err := parseDate("reportDate", req.ReportDate)
	if err != nil {
		respondError(w, h.Logger, "UpdateFir", err)
		return
	}

	f, err := h.RecordService.UpdateFir(r.Context(), chi.URLParam(r, "id"), model.FirPatch{
		FirNumber:   req.FirNumber,
		CriminalID:  req.CriminalID,
		ReportDate:  reported,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, h.Logger, "UpdateFir", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *RecordHandler) DeleteFir(w http.ResponseWriter, r *http.Request) {
	respondDeleted(w, h.Logger, "DeleteFir", func() (bool, error) {
		return h.RecordService.DeleteFir(r.Context(), chi.URLParam(r, "id"))
	})
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
