package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/vendahub/tenantcore/pkg/client"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/tenant"
	"github.com/vendahub/tenantcore/pkg/tenantswitch"
	"github.com/vendahub/tenantcore/pkg/token"
)

// Handle serves the tenant switch endpoints. All routes require a
// master admin token; switch state is keyed by the token's session id,
// so two sessions of the same master admin switch independently.
type Handle struct {
	service    *tenantswitch.Service
	principals tenant.PrincipalRepository
}

func NewHandle(service *tenantswitch.Service, principals tenant.PrincipalRepository) Handle {
	return Handle{
		service:    service,
		principals: principals,
	}
}

func (h Handle) Routes(r chi.Router) {
	r.Use(client.RequireMasterAdmin)
	r.Post("/", h.PostSwitch)
	r.Delete("/", h.DeleteSwitch)
	r.Get("/", h.GetSwitch)
}

// SwitchRequest is the body of POST /api/tenant-switch
type SwitchRequest struct {
	TargetTenantID int64 `json:"target_tenant_id"`
}

// SwitchResponse reports the session's switch state after the call
type SwitchResponse struct {
	ActiveTenantID *int64 `json:"active_tenant_id"`
	RemoteMode     bool   `json:"remote_mode"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := ""
	var e *tcerrors.Error
	if tcerrors.As(err, &e) {
		status = e.HTTPStatusCode()
		code = string(e.Code)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error(), Code: code})
}

func (h Handle) requester(r *http.Request) (*token.Claims, tenant.Principal, bool) {
	claims, ok := client.ClaimsFromContext(r.Context())
	if !ok {
		return nil, tenant.Principal{}, false
	}
	principalID, err := claims.PrincipalID()
	if err != nil {
		slog.Error("Invalid subject in token", "sub", claims.Subject, "err", err)
		return nil, tenant.Principal{}, false
	}
	admin, err := h.principals.GetPrincipal(r.Context(), principalID)
	if err != nil {
		slog.Error("Failed loading requesting principal", "principal_id", principalID, "err", err)
		return nil, tenant.Principal{}, false
	}
	return claims, admin, true
}

// Switch the session into a target tenant
// (POST /api/tenant-switch)
func (h Handle) PostSwitch(w http.ResponseWriter, r *http.Request) {
	claims, admin, ok := h.requester(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	data := SwitchRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}
	if data.TargetTenantID <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "target_tenant_id is required"})
		return
	}

	session, err := h.service.Switch(r.Context(), claims.SessionID, admin, data.TargetTenantID)
	if err != nil {
		slog.Error("Tenant switch failed",
			"master_admin_id", admin.ID,
			"target_tenant_id", data.TargetTenantID,
			"err", err)
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SwitchResponse{ActiveTenantID: session.ActiveTenant, RemoteMode: session.Remote()})
}

// Reset the session back to home mode
// (DELETE /api/tenant-switch)
func (h Handle) DeleteSwitch(w http.ResponseWriter, r *http.Request) {
	claims, admin, ok := h.requester(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.service.Reset(r.Context(), claims.SessionID, admin); err != nil {
		slog.Error("Tenant reset failed", "master_admin_id", admin.ID, "err", err)
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SwitchResponse{ActiveTenantID: nil, RemoteMode: false})
}

// Report the session's current switch state
// (GET /api/tenant-switch)
func (h Handle) GetSwitch(w http.ResponseWriter, r *http.Request) {
	claims, _, ok := h.requester(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	session, err := h.service.Active(r.Context(), claims.SessionID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp := SwitchResponse{}
	if session != nil {
		resp.ActiveTenantID = session.ActiveTenant
		resp.RemoteMode = session.Remote()
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}
