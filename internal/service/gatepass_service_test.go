package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"campus-gatepass/backend/config"
	"campus-gatepass/backend/internal/dto"
	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestGatepassService() (GatepassService, *mockGatepassRepo, *mockStudentRepo) {
	gpRepo := newMockGatepassRepo()
	stuRepo := newMockStudentRepo()
	repo := &repository.Repository{
		User:     newMockUserRepo(),
		Student:  stuRepo,
		Gatepass: gpRepo,
	}
	cfg := &config.Config{
		Sweep: config.SweepConfig{PendingTTL: time.Hour},
	}
	svc := NewGatepassService(cfg, repo, zap.NewNop())
	return svc, gpRepo, stuRepo
}

func seedStudent(stuRepo *mockStudentRepo, id uint) {
	stuRepo.students[id] = &model.Student{
		StudentID:          id,
		Name:               "测试学生",
		RegistrationNumber: "REG-007",
	}
}

func seedGatepass(gpRepo *mockGatepassRepo, id, status string) *model.Gatepass {
	gp := &model.Gatepass{
		GatepassID:     id,
		StudentID:      7,
		Destination:    "图书馆",
		Purpose:        "自习",
		RequestDate:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration:       2,
		ExpectedReturn: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Status:         status,
	}
	gp.Version = 1
	gpRepo.passes[id] = gp
	return gp
}

// ── Create 测试 ──

func TestGatepassService_Create_ForcesPending(t *testing.T) {
	svc, _, stuRepo := setupTestGatepassService()
	seedStudent(stuRepo, 7)

	// 客户端试图直接提交 Approved，服务端必须强制为 Pending
	req := &dto.CreateGatepassRequest{
		Student:     7,
		Destination: "Library",
		Purpose:     "Study",
		DateTime:    "2024-05-01T10:00",
		Duration:    2,
		Status:      model.StatusApproved,
	}

	result, err := svc.Create(context.Background(), req, "user-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != model.StatusPending {
		t.Errorf("期望 Status=Pending，实际=%s", result.Status)
	}
	if result.RequestDate != "2024-05-01T10:00:00Z" {
		t.Errorf("期望 RequestDate=2024-05-01T10:00:00Z，实际=%s", result.RequestDate)
	}
	if result.ExpectedReturn != "2024-05-01T12:00:00Z" {
		t.Errorf("期望 ExpectedReturn=2024-05-01T12:00:00Z，实际=%s", result.ExpectedReturn)
	}
	if result.ExitTime != nil || result.ReturnTime != nil {
		t.Error("新建出门条不应有出门/归寝时间")
	}
}

func TestGatepassService_Create_AcceptsMillisUTC(t *testing.T) {
	svc, _, stuRepo := setupTestGatepassService()
	seedStudent(stuRepo, 7)

	req := &dto.CreateGatepassRequest{
		Student:     7,
		Destination: "Library",
		Purpose:     "Study",
		DateTime:    "2024-05-01T10:00:00.000Z",
		Duration:    2,
	}

	result, err := svc.Create(context.Background(), req, "user-1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.RequestDate != "2024-05-01T10:00:00Z" {
		t.Errorf("期望 RequestDate=2024-05-01T10:00:00Z，实际=%s", result.RequestDate)
	}
}

func TestGatepassService_Create_InvalidDateTime(t *testing.T) {
	svc, _, stuRepo := setupTestGatepassService()
	seedStudent(stuRepo, 7)

	req := &dto.CreateGatepassRequest{
		Student:     7,
		Destination: "Library",
		Purpose:     "Study",
		DateTime:    "01/05/2024 10:00",
		Duration:    2,
	}

	if _, err := svc.Create(context.Background(), req, "user-1"); !errors.Is(err, ErrInvalidDateTime) {
		t.Errorf("期望 ErrInvalidDateTime，实际: %v", err)
	}
}

func TestGatepassService_Create_StudentNotFound(t *testing.T) {
	svc, _, _ := setupTestGatepassService()

	req := &dto.CreateGatepassRequest{
		Student:     99,
		Destination: "Library",
		Purpose:     "Study",
		DateTime:    "2024-05-01T10:00",
		Duration:    2,
	}

	if _, err := svc.Create(context.Background(), req, "user-1"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

// ── Decide 测试 ──

func TestGatepassService_Decide_Approve(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-3", model.StatusPending)

	result, err := svc.Decide(context.Background(), "gp-3",
		&dto.UpdateGatepassStatusRequest{Status: model.StatusApproved}, "warden-1", "warden")
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	if result.Status != model.StatusApproved {
		t.Errorf("期望 Status=Approved，实际=%s", result.Status)
	}

	stored, _ := gpRepo.GetByID(context.Background(), "gp-3")
	if stored.Status != model.StatusApproved {
		t.Errorf("落库状态期望 Approved，实际=%s", stored.Status)
	}
}

func TestGatepassService_Decide_Reject(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-3", model.StatusPending)

	result, err := svc.Decide(context.Background(), "gp-3",
		&dto.UpdateGatepassStatusRequest{Status: model.StatusRejected}, "warden-1", "warden")
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	if result.Status != model.StatusRejected {
		t.Errorf("期望 Status=Rejected，实际=%s", result.Status)
	}
}

func TestGatepassService_Decide_InvalidStatus(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-3", model.StatusPending)

	// 审批动作不允许产生第三种状态
	for _, status := range []string{model.StatusPending, model.StatusOut, model.StatusExpired, "Cancelled"} {
		_, err := svc.Decide(context.Background(), "gp-3",
			&dto.UpdateGatepassStatusRequest{Status: status}, "warden-1", "warden")
		if !errors.Is(err, ErrInvalidDecision) {
			t.Errorf("status=%s: 期望 ErrInvalidDecision，实际: %v", status, err)
		}
	}
}

func TestGatepassService_Decide_NotPending(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-3", model.StatusApproved)

	_, err := svc.Decide(context.Background(), "gp-3",
		&dto.UpdateGatepassStatusRequest{Status: model.StatusRejected}, "warden-1", "warden")
	if !errors.Is(err, ErrNotPending) {
		t.Errorf("期望 ErrNotPending，实际: %v", err)
	}
}

func TestGatepassService_Decide_ParentMarksResponse(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-3", model.StatusPending)

	result, err := svc.Decide(context.Background(), "gp-3",
		&dto.UpdateGatepassStatusRequest{Status: model.StatusApproved}, "parent-1", "parent")
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	if !result.ParentResponse {
		t.Error("家长审批后 ParentResponse 应为 true")
	}
}

// ── LogExit / LogReturn 测试 ──

func TestGatepassService_LogExit(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusApproved)

	result, err := svc.LogExit(context.Background(), "gp-1", "sec-1")
	if err != nil {
		t.Fatalf("LogExit 应成功: %v", err)
	}
	if result.Status != model.StatusOut {
		t.Errorf("期望 Status=Out，实际=%s", result.Status)
	}
	if result.ExitTime == nil {
		t.Error("ExitTime 不应为空")
	}
}

func TestGatepassService_LogExit_NotApproved(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusPending)

	if _, err := svc.LogExit(context.Background(), "gp-1", "sec-1"); !errors.Is(err, ErrNotApprovedForExit) {
		t.Errorf("期望 ErrNotApprovedForExit，实际: %v", err)
	}
}

func TestGatepassService_LogExit_Twice(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusApproved)

	if _, err := svc.LogExit(context.Background(), "gp-1", "sec-1"); err != nil {
		t.Fatalf("第一次 LogExit 应成功: %v", err)
	}
	if _, err := svc.LogExit(context.Background(), "gp-1", "sec-1"); !errors.Is(err, ErrExitAlreadyLogged) {
		t.Errorf("期望 ErrExitAlreadyLogged，实际: %v", err)
	}
}

func TestGatepassService_LogReturn_RequiresExit(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusApproved)

	// 不变量：未出门不可能归寝
	if _, err := svc.LogReturn(context.Background(), "gp-1", "sec-1"); !errors.Is(err, ErrNoExitLogged) {
		t.Errorf("期望 ErrNoExitLogged，实际: %v", err)
	}
}

func TestGatepassService_LogReturn_FullCycle(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusApproved)

	if _, err := svc.LogExit(context.Background(), "gp-1", "sec-1"); err != nil {
		t.Fatalf("LogExit 应成功: %v", err)
	}
	result, err := svc.LogReturn(context.Background(), "gp-1", "sec-1")
	if err != nil {
		t.Fatalf("LogReturn 应成功: %v", err)
	}
	if result.Status != model.StatusReturned {
		t.Errorf("期望 Status=Returned，实际=%s", result.Status)
	}
	if result.ExitTime == nil || result.ReturnTime == nil {
		t.Error("完整流程后出门/归寝时间均不应为空")
	}

	// 再次归寝应被拒绝
	if _, err := svc.LogReturn(context.Background(), "gp-1", "sec-1"); !errors.Is(err, ErrReturnAlreadyLogged) {
		t.Errorf("期望 ErrReturnAlreadyLogged，实际: %v", err)
	}
}

// ── List 测试 ──

func TestGatepassService_List_FilterByStatus(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusPending)
	seedGatepass(gpRepo, "gp-2", model.StatusApproved)

	result, total, err := svc.List(context.Background(), &dto.GatepassListRequest{Status: model.StatusPending})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Fatalf("期望 1 条记录，实际 total=%d len=%d", total, len(result))
	}
	if result[0].Status != model.StatusPending {
		t.Errorf("期望 Status=Pending，实际=%s", result[0].Status)
	}
}

func TestGatepassService_List_InvalidStatusFilter(t *testing.T) {
	svc, gpRepo, _ := setupTestGatepassService()
	seedGatepass(gpRepo, "gp-1", model.StatusPending)

	for _, status := range []string{"pending", "Cancelled", "OUT"} {
		_, _, err := svc.List(context.Background(), &dto.GatepassListRequest{Status: status})
		if !errors.Is(err, ErrInvalidStatusFilter) {
			t.Errorf("status=%q 期望 ErrInvalidStatusFilter，实际=%v", status, err)
		}
	}
}

func TestGatepassService_List_Empty(t *testing.T) {
	svc, _, _ := setupTestGatepassService()

	// 空结果是合法的零长度响应，不是错误
	result, total, err := svc.List(context.Background(), &dto.GatepassListRequest{})
	if err != nil {
		t.Fatalf("空列表不应报错: %v", err)
	}
	if total != 0 || len(result) != 0 {
		t.Errorf("期望空列表，实际 total=%d len=%d", total, len(result))
	}
}
