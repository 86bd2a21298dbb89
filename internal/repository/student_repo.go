package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// StudentRepository 学生仓储
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository 创建仓储
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create 新建学生
func (r *StudentRepository) Create(ctx context.Context, s *schema.Student) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("创建学生失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取学生，不存在返回 nil
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*schema.Student, error) {
	var s schema.Student
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询学生失败: %w", err)
	}
	return &s, nil
}

// GetActive 获取全部在册学生
func (r *StudentRepository) GetActive(ctx context.Context) ([]schema.Student, error) {
	var students []schema.Student
	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Order("id").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("查询在册学生失败: %w", err)
	}
	return students, nil
}

// SetArchived 归档/恢复学生
func (r *StudentRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Student{}).
		Where("id = ?", id).
		Update("archived", archived).Error
	if err != nil {
		return fmt.Errorf("更新学生归档状态失败: %w", err)
	}
	return nil
}
