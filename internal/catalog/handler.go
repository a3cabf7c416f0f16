package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/auth"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/platform/httpx"
)

// Handler wires the administrative catalog endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		authz:     authz,
		validator: validator.New(),
	}
}

// MountRoutes registers catalog routes. Callers are expected to have run the
// token middleware and a manager role check already.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(PermProfilesView))
		r.Get("/permissions", h.handleListPermissions)
		r.Get("/profiles", h.handleListProfiles)
		r.Get("/profiles/{id}", h.handleGetProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermission(PermProfilesManage))
		r.Post("/profiles", h.handleCreateProfile)
		r.Delete("/profiles/{id}", h.handleDeleteProfile)
		r.Put("/profiles/{id}/assignments/{userID}", h.handleAssign)
		r.Delete("/profiles/{id}/assignments/{userID}", h.handleUnassign)
	})
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, h.service.ListPermissionsByModule())
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, profiles)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, profile)
}

type createProfileRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permissionIds"`
	ModuleIDs     []string `json:"moduleIds"`
	Restrictions  string   `json:"restrictions"`
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", "name: required")
		return
	}
	profile, err := h.service.CreateProfile(r.Context(), CreateProfileInput{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
		ModuleIDs:     req.ModuleIDs,
		Restrictions:  req.Restrictions,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusCreated, profile)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, nil)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	err := h.service.AssignProfile(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, nil)
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	if err := h.service.UnassignProfile(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, nil)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidProfile):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProfileNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrProfileInUse):
		httpx.Fail(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
