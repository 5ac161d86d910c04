package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

const maxAuditPage = 200

// AuditHandler exposes the audit trail on the settings screen.
type AuditHandler struct {
	reader ports.AuditReader
}

func NewAuditHandler(reader ports.AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

type auditEntryResponse struct {
	ActorID   string            `json:"actor_id"`
	ActorRole domain.Role       `json:"actor_role" swaggertype:"string"`
	Entity    domain.EntityKind `json:"entity" swaggertype:"string"`
	EntityID  string            `json:"entity_id"`
	Action    string            `json:"action"`
	Details   string            `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type auditListResponse struct {
	Items []auditEntryResponse `json:"items"`
}

// List handles GET /v1/audit.
//
// @Summary      Recent audit entries
// @Tags         settings
// @Produce      json
// @Security     BearerAuth
// @Param        entity     query     string  false  "client, task, invoice, deadline or user"
// @Param        entity_id  query     string  false  "Entity id"
// @Param        limit      query     int     false  "Page size (default 50, max 200)"
// @Success      200        {object}  auditListResponse
// @Failure      403        {object}  errorResponse
// @Router       /v1/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	if _, err := actor(c); err != nil {
		return err
	}
	limit := min(queryInt(c, "limit", 50), maxAuditPage)
	entries, err := h.reader.Recent(c.Request().Context(), domain.EntityKind(c.QueryParam("entity")), c.QueryParam("entity_id"), limit)
	if err != nil {
		return err
	}
	items := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditEntryResponse{
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Action:    e.Action,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.UTC(),
		})
	}
	return c.JSON(http.StatusOK, auditListResponse{Items: items})
}
