package screens

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridianshop/meridian-admin/internal/platform/httpx"
	"github.com/meridianshop/meridian-admin/internal/rbac"
)

// Handler serves the navigation resolution API consumed by the admin SPA.
type Handler struct {
	logger   *slog.Logger
	catalog  *rbac.Catalog
	registry *rbac.Registry
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, catalog *rbac.Catalog, registry *rbac.Registry) *Handler {
	return &Handler{logger: logger, catalog: catalog, registry: registry}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.navigation)
	r.Get("/landing", h.landing)
	r.Get("/resolve", h.resolve)
}

type navScreen struct {
	Key         string          `json:"key"`
	Group       string          `json:"group"`
	ParentKey   string          `json:"parentKey,omitempty"`
	Routes      []string        `json:"routes,omitempty"`
	MenuAccess  bool            `json:"menuAccess"`
	RouteAccess bool            `json:"routeAccess"`
	Actions     map[string]bool `json:"actions,omitempty"`
}

type navResponse struct {
	Groups  []rbac.Group `json:"groups"`
	Screens []navScreen  `json:"screens"`
	Landing string       `json:"landing,omitempty"`
}

// navigation returns every screen with both access verdicts so the SPA can
// render the menu and guard its routes from one payload.
func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	authz := rbac.AuthzFromContext(r.Context())
	flat := h.registry.Screens()
	out := make([]navScreen, 0, len(flat))
	for i := range flat {
		screen := &flat[i]
		entry := navScreen{
			Key:         screen.Key,
			Group:       screen.Group,
			ParentKey:   screen.ParentKey,
			Routes:      screen.Routes,
			MenuAccess:  rbac.CanAccessScreen(authz, screen, rbac.ModeMenu),
			RouteAccess: rbac.CanAccessScreen(authz, screen, rbac.ModeRoute),
		}
		if len(screen.Actions) > 0 {
			entry.Actions = make(map[string]bool, len(screen.Actions))
			for action := range screen.Actions {
				entry.Actions[action] = rbac.CanAccessAction(authz, screen, action)
			}
		}
		out = append(out, entry)
	}
	httpx.JSON(w, http.StatusOK, navResponse{
		Groups:  h.registry.Groups(),
		Screens: out,
		Landing: h.registry.FirstAccessibleScreen(authz),
	})
}

type landingResponse struct {
	Route string `json:"route,omitempty"`
}

// landing returns the first route the caller may address directly, used as
// the post-login redirect target.
func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	authz := rbac.AuthzFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, landingResponse{Route: h.registry.FirstAccessibleScreen(authz)})
}

type resolveResponse struct {
	Screen  string `json:"screen,omitempty"`
	Allowed bool   `json:"allowed"`
}

// resolve maps a concrete path to its owning screen and the caller's
// route-mode verdict. Unmatched paths answer with an empty screen, never an
// error.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	authz := rbac.AuthzFromContext(r.Context())
	screen := h.registry.FindScreenByPath(path)
	if screen == nil {
		httpx.JSON(w, http.StatusOK, resolveResponse{})
		return
	}
	httpx.JSON(w, http.StatusOK, resolveResponse{
		Screen:  screen.Key,
		Allowed: rbac.CanAccessScreen(authz, screen, rbac.ModeRoute),
	})
}
