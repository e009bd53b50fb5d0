package handlers

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserHandler вход и управление учётными записями.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
	validate    *requestValidator
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config, v *requestValidator) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg, validate: v}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin operator"`
	Name     string `json:"name" validate:"max=128"`
	Active   *bool  `json:"active"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=64"`
	Password *string `json:"password" validate:"omitnil,min=6,max=72"`
	Role     *string `json:"role" validate:"omitnil,oneof=admin operator"`
	Name     *string `json:"name" validate:"omitnil,max=128"`
	Active   *bool   `json:"active"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "Login", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "Login", err)
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Logger.Infow("Login: rejected", "username", req.Username, "error", err)
		respondError(w, h.Logger, "Login", err)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, user.Role, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set cookie", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me текущий пользователь. Удалённый после выдачи токена пользователь получает 401.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		respondError(w, h.Logger, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		respondError(w, h.Logger, "ListUsers", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, "GetUser", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "CreateUser", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "CreateUser", err)
		return
	}

	draft := model.UserDraft{
		Username: req.Username,
		Password: req.Password,
		Role:     model.Role(req.Role),
		Name:     req.Name,
		Active:   true,
	}
	if req.Active != nil {
		draft.Active = *req.Active
	}
	user, err := h.UserService.Create(r.Context(), draft)
	if err != nil {
		respondError(w, h.Logger, "CreateUser", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, h.Logger, "UpdateUser", err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		respondError(w, h.Logger, "UpdateUser", err)
		return
	}

	patch := model.UserPatch{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Active:   req.Active,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		patch.Role = &role
	}
	user, err := h.UserService.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, h.Logger, "UpdateUser", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if self, _ := middleware.GetUserIDFromContext(r.Context()); self == id {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cannot delete own account", Fields: []string{"id"}})
		return
	}
	respondDeleted(w, h.Logger, "DeleteUser", func() (bool, error) {
		return h.UserService.Delete(r.Context(), id)
	})
}
