package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/sequence"
	"github.com/vendahub/tenantcore/pkg/tenantctx"
)

// Handle serves fiscal number allocation. The tenant is always taken
// from the resolved tenant context, never from the request body, so a
// caller cannot draw numbers from another tenant's counters.
type Handle struct {
	service *sequence.Service
}

func NewHandle(service *sequence.Service) Handle {
	return Handle{
		service: service,
	}
}

func (h Handle) Routes(r chi.Router) {
	r.Post("/next", h.PostNext)
}

// NextRequest is the body of POST /api/fiscal/next
type NextRequest struct {
	DocType     string `json:"doc_type"`
	Series      int    `json:"series"`
	Environment string `json:"environment"`
}

// NextResponse carries one freshly allocated fiscal number
type NextResponse struct {
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
	Number   int64  `json:"number"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Allocate the next fiscal number for the effective tenant
// (POST /api/fiscal/next)
func (h Handle) PostNext(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenantctx.FromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	data := NextRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}

	docType := sequence.DocumentType(data.DocType)
	env := sequence.Environment(data.Environment)
	number, err := h.service.NextFiscal(r.Context(), tc.TenantID, docType, data.Series, env)
	if err != nil {
		status := http.StatusBadRequest
		code := ""
		var e *tcerrors.Error
		if tcerrors.As(err, &e) {
			status = e.HTTPStatusCode()
			code = string(e.Code)
		}
		slog.Error("Fiscal number allocation failed",
			"tenant_id", tc.TenantID,
			"doc_type", data.DocType,
			"series", data.Series,
			"environment", data.Environment,
			"err", err)
		render.Status(r, status)
		render.JSON(w, r, errorResponse{Error: err.Error(), Code: code})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NextResponse{
		TenantID: tc.TenantID,
		Name:     sequence.Key(docType, data.Series, env),
		Number:   number,
	})
}
