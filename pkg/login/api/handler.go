package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/exp/slog"

	tcerrors "github.com/vendahub/tenantcore/pkg/errors"
	"github.com/vendahub/tenantcore/pkg/login"
)

// Handle serves the unauthenticated login endpoint.
type Handle struct {
	service *login.Service
}

func NewHandle(service *login.Service) Handle {
	return Handle{
		service: service,
	}
}

func (h Handle) Routes(r chi.Router) {
	r.Post("/", h.PostLogin)
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Authenticate with email and password, returning an IdentityToken
// (POST /api/login)
func (h Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	data := LoginRequest{}
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "unable to parse body"})
		return
	}
	if data.Email == "" || data.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "email and password are required"})
		return
	}

	result, err := h.service.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		status := http.StatusUnauthorized
		var e *tcerrors.Error
		if tcerrors.As(err, &e) {
			status = e.HTTPStatusCode()
		}
		slog.Warn("Login failed", "email", data.Email)
		render.Status(r, status)
		render.JSON(w, r, errorResponse{Error: "invalid credentials"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
