package handler

import (
	"github.com/gin-gonic/gin"

	"campus-gatepass/backend/internal/service"
	"campus-gatepass/backend/pkg/response"
)

// DashboardHandler 看板模块 HTTP 处理器
// 客户端定时轮询，一次返回 { stats, gatepasses }
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// WardenDashboard 宿管看板
// GET /api/v1/dashboard/warden
func (h *DashboardHandler) WardenDashboard(c *gin.Context) {
	result, err := h.dashboardSvc.Warden(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// SecurityDashboard 门卫看板
// GET /api/v1/dashboard/security
func (h *DashboardHandler) SecurityDashboard(c *gin.Context) {
	result, err := h.dashboardSvc.Security(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
