package handler

import (
	"settlement-core/internal/adapter/http/dto"
	"settlement-core/internal/core/domain"
	"settlement-core/internal/core/ports"
	"settlement-core/pkg/apperror"
	"settlement-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// auditTargets maps URL segments to audit target types.
var auditTargets = map[string]domain.AuditTarget{
	"binary":    domain.AuditTargetBinaryTrade,
	"trade":     domain.AuditTargetMarginTrade,
	"account":   domain.AuditTargetAccount,
	"aml-check": domain.AuditTargetAMLCheck,
	"settings":  domain.AuditTargetSettings,
}

// AdminHandler serves manual settlement, queue and settings operations.
type AdminHandler struct {
	settlement ports.SettlementService
	scheduler  ports.SchedulerService
	settings   ports.SettingsService
	audit      ports.AuditService
}

func NewAdminHandler(
	settlement ports.SettlementService,
	scheduler ports.SchedulerService,
	settings ports.SettingsService,
	audit ports.AuditService,
) *AdminHandler {
	return &AdminHandler{
		settlement: settlement,
		scheduler:  scheduler,
		settings:   settings,
		audit:      audit,
	}
}

// ResolveBinary handles POST /api/v1/admin/binary/:id/resolve.
func (h *AdminHandler) ResolveBinary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.settlement.ResolveBinary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ForceCloseTrade handles POST /api/v1/admin/trades/:id/force-close.
func (h *AdminHandler) ForceCloseTrade(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ForceCloseRequest
	if !bind(c, &req) {
		return
	}
	dto.SanitizeStruct(&req)

	closure, err := h.settlement.ForceCloseTrade(c.Request.Context(), id, caller, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, closure)
}

// CancelSchedule handles DELETE /api/v1/admin/binary/:id/schedule.
func (h *AdminHandler) CancelSchedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	removed, err := h.scheduler.CancelResolution(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CancelScheduleResponse{ContractID: id.String(), Removed: removed})
}

// QueueStats handles GET /api/v1/admin/queues/binary.
func (h *AdminHandler) QueueStats(c *gin.Context) {
	stats, err := h.scheduler.QueueStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Sweep handles POST /api/v1/admin/queues/binary/sweep.
func (h *AdminHandler) Sweep(c *gin.Context) {
	report, err := h.scheduler.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// AuditTrail handles GET /api/v1/admin/audit/:target/:id.
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	target, ok := auditTargets[c.Param("target")]
	if !ok {
		response.Error(c, apperror.Validation("Unknown audit target"))
		return
	}
	limit, ok := listLimit(c)
	if !ok {
		return
	}

	entries, err := h.audit.Trail(c.Request.Context(), target, c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entries)
}

// GetPayoutRate handles GET /api/v1/admin/settings/payout-rate.
func (h *AdminHandler) GetPayoutRate(c *gin.Context) {
	rate, err := h.settings.PayoutRate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.PayoutRateResponse{Rate: rate})
}

// SetPayoutRate handles PUT /api/v1/admin/settings/payout-rate.
func (h *AdminHandler) SetPayoutRate(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	var req dto.PayoutRateRequest
	if !bind(c, &req) {
		return
	}

	rate := dto.ParseDecimal(req.Rate)
	if err := h.settings.SetPayoutRate(c.Request.Context(), rate, caller); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.PayoutRateResponse{Rate: rate})
}
