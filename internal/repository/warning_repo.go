package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// WarningRepository 风险预警仓储
type WarningRepository struct {
	db *gorm.DB
}

// NewWarningRepository 创建仓储
func NewWarningRepository(db *gorm.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// Create 新建预警
func (r *WarningRepository) Create(ctx context.Context, w *schema.Warning) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("创建预警失败: %w", err)
	}
	return nil
}

// GetActiveByStudentAndType 获取学生某类型的活跃预警
func (r *WarningRepository) GetActiveByStudentAndType(ctx context.Context, studentID int64, warningType string) ([]schema.Warning, error) {
	var warnings []schema.Warning
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND warning_type = ? AND active = ?", studentID, warningType, true).
		Order("id").
		Find(&warnings).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃预警失败: %w", err)
	}
	return warnings, nil
}

// GetActiveByStudent 获取学生全部活跃预警
func (r *WarningRepository) GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Warning, error) {
	var warnings []schema.Warning
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND active = ?", studentID, true).
		Order("id").
		Find(&warnings).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃预警失败: %w", err)
	}
	return warnings, nil
}

// Resolve 解除单条预警
func (r *WarningRepository) Resolve(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Warning{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]any{"active": false, "resolved_at": at}).Error
	if err != nil {
		return fmt.Errorf("解除预警失败: %w", err)
	}
	return nil
}
