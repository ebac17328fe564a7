package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	"golang.org/x/exp/slog"

	"github.com/vendahub/tenantcore/pkg/audit"
	"github.com/vendahub/tenantcore/pkg/client"
)

// Handle serves read access to the audit log. The log itself is
// append-only; this surface is query-only and master admin gated.
type Handle struct {
	service *audit.Service
}

func NewHandle(service *audit.Service) Handle {
	return Handle{
		service: service,
	}
}

func (h Handle) Routes(r chi.Router) {
	r.Use(client.RequireMasterAdmin)
	r.Get("/", h.GetEntries)
}

// EntryDTO is the wire shape of one audit entry
type EntryDTO struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ActorID        int64     `json:"actor_id"`
	Action         string    `json:"action"`
	TargetTenantID int64     `json:"target_tenant_id"`
	Detail         string    `json:"detail,omitempty"`
}

// List audit entries, newest first
// (GET /api/audit)
func (h Handle) GetEntries(w http.ResponseWriter, r *http.Request) {
	filters := audit.QueryFilters{}
	q := r.URL.Query()
	if v := q.Get("actor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid actor_id", http.StatusBadRequest)
			return
		}
		filters.ActorID = id
	}
	if v := q.Get("target_tenant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid target_tenant_id", http.StatusBadRequest)
			return
		}
		filters.TargetTenantID = id
	}
	if v := q.Get("action"); v != "" {
		action := audit.Action(v)
		if !action.Valid() {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		filters.Action = action
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filters.Limit = n
	}

	entries, err := h.service.Query(r.Context(), filters)
	if err != nil {
		slog.Error("Failed querying audit entries", "err", err)
		http.Error(w, "Failed querying audit entries", http.StatusInternalServerError)
		return
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dto := EntryDTO{}
		copier.Copy(&dto, entry)
		dto.ID = entry.ID.String()
		dtos = append(dtos, dto)
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, dtos)
}
