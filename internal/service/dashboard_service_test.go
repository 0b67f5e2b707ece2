package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

func setupTestDashboardService() (DashboardService, *mockGatepassRepo) {
	gpRepo := newMockGatepassRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Student:  newMockStudentRepo(),
		Gatepass: gpRepo,
	}
	svc := NewDashboardService(repo, zap.NewNop())
	return svc, gpRepo
}

func TestDashboardService_Warden_Stats(t *testing.T) {
	svc, gpRepo := setupTestDashboardService()
	seedGatepass(gpRepo, "gp-1", model.StatusPending)
	seedGatepass(gpRepo, "gp-2", model.StatusPending)
	seedGatepass(gpRepo, "gp-3", model.StatusApproved)
	seedGatepass(gpRepo, "gp-4", model.StatusRejected)

	result, err := svc.Warden(context.Background())
	if err != nil {
		t.Fatalf("Warden 应成功: %v", err)
	}
	if result.Stats.Pending != 2 {
		t.Errorf("期望 pending=2，实际=%d", result.Stats.Pending)
	}
	if result.Stats.Approved != 1 {
		t.Errorf("期望 approved=1，实际=%d", result.Stats.Approved)
	}
	if result.Stats.Rejected != 1 {
		t.Errorf("期望 rejected=1，实际=%d", result.Stats.Rejected)
	}
	// 已批准且未归寝的记录计入 active
	if result.Stats.Active != 1 {
		t.Errorf("期望 active=1，实际=%d", result.Stats.Active)
	}
	if len(result.Gatepasses) != 4 {
		t.Errorf("期望返回 4 条记录，实际=%d", len(result.Gatepasses))
	}
}

func TestDashboardService_Security_Stats(t *testing.T) {
	svc, gpRepo := setupTestDashboardService()

	// 已批准未出门 → pending_verifications
	seedGatepass(gpRepo, "gp-1", model.StatusApproved)

	// 已出门未归寝且预计归寝时间已过 → students_out + expected_returns
	out := seedGatepass(gpRepo, "gp-2", model.StatusOut)
	exitAt := time.Now().UTC().Add(-3 * time.Hour)
	out.ExitTime = &exitAt
	out.ExpectedReturn = time.Now().UTC().Add(-time.Hour)

	// 已归寝 → 不计入任何在外计数
	returned := seedGatepass(gpRepo, "gp-3", model.StatusReturned)
	returned.ExitTime = &exitAt
	backAt := time.Now().UTC()
	returned.ReturnTime = &backAt

	result, err := svc.Security(context.Background())
	if err != nil {
		t.Fatalf("Security 应成功: %v", err)
	}
	if result.Stats.StudentsOut != 1 {
		t.Errorf("期望 students_out=1，实际=%d", result.Stats.StudentsOut)
	}
	if result.Stats.ExpectedReturns != 1 {
		t.Errorf("期望 expected_returns=1，实际=%d", result.Stats.ExpectedReturns)
	}
	if result.Stats.PendingVerifications != 1 {
		t.Errorf("期望 pending_verifications=1，实际=%d", result.Stats.PendingVerifications)
	}
	// 门卫列表只含已批准/已出门/已归寝
	if len(result.Gatepasses) != 3 {
		t.Errorf("期望返回 3 条记录，实际=%d", len(result.Gatepasses))
	}
}

func TestDashboardService_Warden_ListError(t *testing.T) {
	svc, gpRepo := setupTestDashboardService()
	gpRepo.listErr = errors.New("连接中断")

	// 读路径失败必须向上返回错误，由客户端保留上一次渲染
	if _, err := svc.Warden(context.Background()); err == nil {
		t.Error("列表查询失败时 Warden 应返回错误")
	}
}
