package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridianshop/meridian-admin/internal/platform/httpx"
	"github.com/meridianshop/meridian-admin/internal/rbac"
	"github.com/meridianshop/meridian-admin/internal/shared"
)

// ContextResolver builds the authorization snapshot for a user. It is
// called exactly once per login or refresh; the result is frozen into the
// session until the next refresh.
type ContextResolver interface {
	ResolveContext(ctx context.Context, userID int64) (*rbac.Context, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	resolver       ContextResolver
	registry       *rbac.Registry
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, resolver ContextResolver, registry *rbac.Registry, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		resolver:       resolver,
		registry:       registry,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionResponse struct {
	UserID  int64         `json:"userId"`
	Email   string        `json:"email"`
	Authz   *rbac.Context `json:"authz"`
	Landing string        `json:"landing,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "invalid credentials")
		return
	}

	authz, err := h.resolver.ResolveContext(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("resolve authz context", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.RespondError(w, errors.New("session unavailable"))
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	if err := h.snapshot(sess, authz); err != nil {
		h.logger.Error("store authz snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Authz:   authz,
		Landing: h.registry.FirstAccessibleScreen(authz),
	})
}

// handleRefresh re-resolves the snapshot from current role and override
// data. This is the only way an issued session picks up permission edits.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "no active session")
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "no active session")
		return
	}
	authz, err := h.resolver.ResolveContext(r.Context(), userID)
	if err != nil {
		h.logger.Error("refresh authz context", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.snapshot(sess, authz); err != nil {
		h.logger.Error("store authz snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		UserID:  userID,
		Authz:   authz,
		Landing: h.registry.FirstAccessibleScreen(authz),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snapshot(sess *shared.Session, authz *rbac.Context) error {
	encoded, err := authz.Encode()
	if err != nil {
		return err
	}
	sess.SetAuthz(encoded)
	return nil
}
