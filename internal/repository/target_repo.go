package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// TargetRepository 回升目标仓储
type TargetRepository struct {
	db *gorm.DB
}

// NewTargetRepository 创建仓储
func NewTargetRepository(db *gorm.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// Create 新建目标
func (r *TargetRepository) Create(ctx context.Context, t *schema.Target) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("创建目标失败: %w", err)
	}
	return nil
}

// GetActiveByCategory 获取某（学生, 类别）全部未达成目标，按目标值升序
func (r *TargetRepository) GetActiveByCategory(ctx context.Context, studentID int64, category string) ([]schema.Target, error) {
	var targets []schema.Target
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND category = ? AND achieved = ?", studentID, category, false).
		Order("target_value").
		Find(&targets).Error
	if err != nil {
		return nil, fmt.Errorf("查询未达成目标失败: %w", err)
	}
	return targets, nil
}

// GetActiveByStudent 获取学生全部未达成目标
func (r *TargetRepository) GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Target, error) {
	var targets []schema.Target
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND achieved = ?", studentID, false).
		Order("category, target_value").
		Find(&targets).Error
	if err != nil {
		return nil, fmt.Errorf("查询未达成目标失败: %w", err)
	}
	return targets, nil
}

// ExistsActiveAtValue 判断某（学生, 类别, 目标值）是否已有未达成目标
func (r *TargetRepository) ExistsActiveAtValue(ctx context.Context, studentID int64, category string, value int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.Target{}).
		Where("student_id = ? AND category = ? AND target_value = ? AND achieved = ?", studentID, category, value, false).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("检查目标是否存在失败: %w", err)
	}
	return count > 0, nil
}

// MarkAchieved 标记目标达成
func (r *TargetRepository) MarkAchieved(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&schema.Target{}).
		Where("id = ?", id).
		Updates(map[string]any{"achieved": true, "achieved_at": at}).Error
	if err != nil {
		return fmt.Errorf("标记目标达成失败: %w", err)
	}
	return nil
}

// CountActiveByStudent 统计学生未达成目标数
func (r *TargetRepository) CountActiveByStudent(ctx context.Context, studentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.Target{}).
		Where("student_id = ? AND achieved = ?", studentID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计未达成目标失败: %w", err)
	}
	return count, nil
}
