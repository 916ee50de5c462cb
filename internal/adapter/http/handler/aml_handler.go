package handler

import (
	"settlement-core/internal/adapter/http/dto"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// AMLHandler serves compliance review endpoints.
type AMLHandler struct {
	aml ports.AMLService
}

func NewAMLHandler(aml ports.AMLService) *AMLHandler {
	return &AMLHandler{aml: aml}
}

// RunChecks handles POST /api/v1/admin/aml/accounts/:id/run.
func (h *AMLHandler) RunChecks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.aml.RunChecks(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// History handles GET /api/v1/admin/aml/accounts/:id/checks.
func (h *AMLHandler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, ok := listLimit(c)
	if !ok {
		return
	}

	checks, err := h.aml.History(c.Request.Context(), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, checks)
}

// Unresolved handles GET /api/v1/admin/aml/checks/unresolved.
func (h *AMLHandler) Unresolved(c *gin.Context) {
	limit, ok := listLimit(c)
	if !ok {
		return
	}

	checks, err := h.aml.Unresolved(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, checks)
}

// ResolveCheck handles POST /api/v1/admin/aml/checks/:id/resolve.
func (h *AMLHandler) ResolveCheck(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ResolveCheckRequest
	if !bind(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.aml.ResolveCheck(c.Request.Context(), id, caller, req.Notes); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"check_id": id.String(), "resolved": true})
}
