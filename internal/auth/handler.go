package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/cpf"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/platform/httpx"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
)

// Handler wires the authentication HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		mw:        mw,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/signup", h.handleSignup)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	UserType   string `json:"userType" validate:"required"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	CPF      string `json:"cpf" validate:"required"`
	Name     string `json:"name" validate:"required"`
	UserType string `json:"userType" validate:"required"`
}

type sessionPayload struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

type userPayload struct {
	User AuthUser `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if details := h.fieldErrors(req); len(details) > 0 {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", details...)
		return
	}
	role, err := identity.ParseRole(req.UserType)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", "userType: must be a known user type")
		return
	}

	result, err := h.service.Login(r.Context(), Credentials{
		Identifier:  req.Identifier,
		Password:    req.Password,
		ClaimedRole: role,
	})
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, sessionPayload{User: result.User, Token: result.Token})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if details := h.fieldErrors(req); len(details) > 0 {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", details...)
		return
	}
	// Validation must finish before any external call is made.
	if err := cpf.Validate(req.CPF); err != nil {
		detail := "cpf: must contain exactly 11 digits"
		if errors.Is(err, cpf.ErrInvalidChecksum) {
			detail = "cpf: invalid check digits"
		}
		httpx.Fail(w, http.StatusBadRequest, "validation failed", detail)
		return
	}
	role, err := identity.ParseRole(req.UserType)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "validation failed", "userType: must be a known user type")
		return
	}

	result, err := h.service.Signup(r.Context(), SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		NationalID:  req.CPF,
		DisplayName: req.Name,
		Role:        role,
	})
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, sessionPayload{User: result.User, Token: result.Token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerToken(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authorization required")
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.respondAuthError(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, nil)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	httpx.Success(w, http.StatusOK, userPayload{User: *user})
}

// respondAuthError translates authenticator errors into the taxonomy. Raw
// provider errors never reach the client on these endpoints.
func (h *Handler) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrMalformedIdentifier):
		httpx.Fail(w, http.StatusBadRequest, "validation failed", "identifier: must be an email or an 11-digit CPF")
	case errors.Is(err, ErrBadCredentials):
		httpx.Fail(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrUserTypeMismatch):
		httpx.Fail(w, http.StatusUnauthorized, "incorrect user type")
	case errors.Is(err, ErrTokenInvalid):
		httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, ErrAccountExists):
		httpx.Fail(w, http.StatusBadRequest, "account already registered")
	case errors.Is(err, provider.ErrUnavailable):
		h.logger.Error("auth provider unavailable", slog.String("path", r.URL.Path))
		httpx.RespondError(w, err)
	default:
		h.logger.Error("auth request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) fieldErrors(req any) []string {
	err := h.validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request"}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fe.Field()+": failed on "+fe.Tag())
	}
	return details
}
