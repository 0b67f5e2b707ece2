package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

func setupTestExpiryService() (ExpiryService, *mockGatepassRepo) {
	gpRepo := newMockGatepassRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Student:  newMockStudentRepo(),
		Gatepass: gpRepo,
	}
	return NewExpiryService(repo, zap.NewNop()), gpRepo
}

func TestExpiryService_MarkExpired(t *testing.T) {
	svc, gpRepo := setupTestExpiryService()

	// 已超期的待审批记录
	stale := seedGatepass(gpRepo, "gp-1", model.StatusPending)
	stale.RequestExpiresAt = time.Now().UTC().Add(-time.Minute)

	// 未超期的待审批记录
	fresh := seedGatepass(gpRepo, "gp-2", model.StatusPending)
	fresh.RequestExpiresAt = time.Now().UTC().Add(time.Hour)

	// 已审批记录不受过期扫描影响
	approved := seedGatepass(gpRepo, "gp-3", model.StatusApproved)
	approved.RequestExpiresAt = time.Now().UTC().Add(-time.Minute)

	n, err := svc.MarkExpired(context.Background())
	if err != nil {
		t.Fatalf("MarkExpired 应成功: %v", err)
	}
	if n != 1 {
		t.Errorf("期望标记 1 条，实际=%d", n)
	}

	got, _ := gpRepo.GetByID(context.Background(), "gp-1")
	if got.Status != model.StatusExpired {
		t.Errorf("期望 gp-1 状态为 Expired，实际=%s", got.Status)
	}
	got, _ = gpRepo.GetByID(context.Background(), "gp-2")
	if got.Status != model.StatusPending {
		t.Errorf("gp-2 不应被标记，实际=%s", got.Status)
	}
	got, _ = gpRepo.GetByID(context.Background(), "gp-3")
	if got.Status != model.StatusApproved {
		t.Errorf("gp-3 不应被标记，实际=%s", got.Status)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	svc, gpRepo := setupTestExpiryService()
	stale := seedGatepass(gpRepo, "gp-1", model.StatusPending)
	stale.RequestExpiresAt = time.Now().UTC().Add(-time.Minute)

	sweeper := NewSweeper(svc, time.Hour, zap.NewNop())
	sweeper.Start(context.Background())

	// 启动后应立即执行一轮扫描
	deadline := time.After(time.Second)
	for {
		got, _ := gpRepo.GetByID(context.Background(), "gp-1")
		if got.Status == model.StatusExpired {
			break
		}
		select {
		case <-deadline:
			t.Fatal("启动后未在 1s 内完成首轮扫描")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sweeper.Stop()
}
