package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/vendahub/tenantcore/pkg/client"
	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/impersonate"
	"github.com/vendahub/tenantcore/pkg/tenant"
)

// Handle serves the impersonation endpoint. All routes require a
// master admin token.
type Handle struct {
	service    *impersonate.Service
	principals tenant.PrincipalRepository
}

func NewHandle(service *impersonate.Service, principals tenant.PrincipalRepository) Handle {
	return Handle{
		service:    service,
		principals: principals,
	}
}

func (h Handle) Routes(r chi.Router) {
	r.Use(client.RequireMasterAdmin)
	r.Post("/", h.PostImpersonate)
}

// ImpersonateRequest is the body of POST /api/impersonate
type ImpersonateRequest struct {
	TargetTenantID    int64  `json:"target_tenant_id"`
	TargetPrincipalID *int64 `json:"target_user_id,omitempty"`
}

// ImpersonateResponse carries the freshly minted ImpersonationToken
type ImpersonateResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
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

// Request an ImpersonationToken for a tenant
// (POST /api/impersonate)
func (h Handle) PostImpersonate(w http.ResponseWriter, r *http.Request) {
	claims, ok := client.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	data := ImpersonateRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		slog.Error("Failed to decode impersonate request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}
	if data.TargetTenantID <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "target_tenant_id is required"})
		return
	}

	principalID, err := claims.PrincipalID()
	if err != nil {
		slog.Error("Invalid subject in token", "sub", claims.Subject, "err", err)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	masterAdmin, err := h.principals.GetPrincipal(r.Context(), principalID)
	if err != nil {
		slog.Error("Failed loading requesting principal", "principal_id", principalID, "err", err)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	tokenStr, expiresIn, err := h.service.RequestImpersonation(r.Context(), masterAdmin, data.TargetTenantID, data.TargetPrincipalID)
	if err != nil {
		slog.Error("Impersonation request failed",
			"master_admin_id", masterAdmin.ID,
			"target_tenant_id", data.TargetTenantID,
			"err", err)
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ImpersonateResponse{Token: tokenStr, ExpiresIn: expiresIn})
}
