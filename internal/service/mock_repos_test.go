package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"campus-gatepass/backend/internal/model"
	"campus-gatepass/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[uint]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[uint]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == 0 {
		student.StudentID = uint(len(m.students) + 1)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRegistrationNumber(_ context.Context, regNo string) (*model.Student, error) {
	for _, s := range m.students {
		if s.RegistrationNumber == regNo {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock GatepassRepository ──

// mu 保护 passes：Sweeper 测试会从后台 goroutine 并发访问
type mockGatepassRepo struct {
	mu      sync.Mutex
	passes  map[string]*model.Gatepass
	seq     int
	listErr error // 注入 List/ListForSecurity 错误，模拟读路径故障
}

func newMockGatepassRepo() *mockGatepassRepo {
	return &mockGatepassRepo{passes: make(map[string]*model.Gatepass)}
}

func (m *mockGatepassRepo) Create(_ context.Context, gp *model.Gatepass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gp.GatepassID == "" {
		m.seq++
		gp.GatepassID = fmt.Sprintf("gp-%d", m.seq)
	}
	if gp.Version == 0 {
		gp.Version = 1
	}
	gp.CreatedAt = time.Now().UTC()
	m.passes[gp.GatepassID] = gp
	return nil
}

func (m *mockGatepassRepo) GetByID(_ context.Context, id string) (*model.Gatepass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gp, ok := m.passes[id]; ok {
		cp := *gp
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGatepassRepo) List(_ context.Context, f repository.GatepassFilter) ([]model.Gatepass, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var result []model.Gatepass
	for _, gp := range m.passes {
		if f.Status != "" && gp.Status != f.Status {
			continue
		}
		if f.StudentID != 0 && gp.StudentID != f.StudentID {
			continue
		}
		result = append(result, *gp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, total, nil
}

func (m *mockGatepassRepo) Update(_ context.Context, gp *model.Gatepass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.passes[gp.GatepassID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != gp.Version {
		return fmt.Errorf("版本冲突: 期望 %d 实际 %d", gp.Version, stored.Version)
	}
	gp.Version++
	cp := *gp
	m.passes[gp.GatepassID] = &cp
	return nil
}

func (m *mockGatepassRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, gp := range m.passes {
		if gp.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockGatepassRepo) CountActive(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, gp := range m.passes {
		if (gp.Status == model.StatusApproved || gp.Status == model.StatusOut) && gp.ReturnTime == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockGatepassRepo) CountOut(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, gp := range m.passes {
		if gp.ExitTime != nil && gp.ReturnTime == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockGatepassRepo) CountReturnsDueBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, gp := range m.passes {
		if gp.ExitTime != nil && gp.ReturnTime == nil && !gp.ExpectedReturn.After(t) {
			n++
		}
	}
	return n, nil
}

func (m *mockGatepassRepo) CountAwaitingExit(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, gp := range m.passes {
		if gp.Status == model.StatusApproved && gp.ExitTime == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockGatepassRepo) ListForSecurity(_ context.Context, limit int) ([]model.Gatepass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Gatepass
	for _, gp := range m.passes {
		switch gp.Status {
		case model.StatusApproved, model.StatusOut, model.StatusReturned:
			result = append(result, *gp)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockGatepassRepo) ListExpirable(_ context.Context, now time.Time) ([]model.Gatepass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Gatepass
	for _, gp := range m.passes {
		if gp.Status == model.StatusPending && !gp.RequestExpiresAt.After(now) {
			result = append(result, *gp)
		}
	}
	return result, nil
}
