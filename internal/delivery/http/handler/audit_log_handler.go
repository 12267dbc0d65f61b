package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinical-records-api/internal/usecase"
	"clinical-records-api/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

// GetAuditLogs handles GET /api/auditlogs?limit=
func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = n
	}

	auditLogs, err := h.auditLogUsecase.GetRecentAuditLogs(r.Context(), requestContext(r), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingTenant) {
			response.Unauthorized(w, "")
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs)
}
