package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// IndicatorRepository 表现指标仓储
type IndicatorRepository struct {
	db *gorm.DB
}

// NewIndicatorRepository 创建仓储
func NewIndicatorRepository(db *gorm.DB) *IndicatorRepository {
	return &IndicatorRepository{db: db}
}

// Create 追加指标记录
func (r *IndicatorRepository) Create(ctx context.Context, rec *schema.IndicatorRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("写入指标记录失败: %w", err)
	}
	return nil
}

// GetLatest 获取某（学生, 类别）最新一条指标记录，不存在返回 nil
func (r *IndicatorRepository) GetLatest(ctx context.Context, studentID int64, category string) (*schema.IndicatorRecord, error) {
	var rec schema.IndicatorRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND category = ?", studentID, category).
		Order("id DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询最新指标失败: %w", err)
	}
	return &rec, nil
}

// GetLastValues 获取某（学生, 类别）最近 limit 条指标值（非累计），按时间正序返回
func (r *IndicatorRepository) GetLastValues(ctx context.Context, studentID int64, category string, limit int) ([]int, error) {
	var recs []schema.IndicatorRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND category = ?", studentID, category).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询指标序列失败: %w", err)
	}
	// 倒序取出后还原为时间正序
	values := make([]int, len(recs))
	for i, rec := range recs {
		values[len(recs)-1-i] = rec.IndicatorValue
	}
	return values, nil
}

// GetLatestPerCategory 获取学生每个类别的最新累计指标
func (r *IndicatorRepository) GetLatestPerCategory(ctx context.Context, studentID int64) (map[string]int, error) {
	var recs []schema.IndicatorRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询指标记录失败: %w", err)
	}
	// 按写入顺序覆盖，留下的即各类别最新值
	latest := make(map[string]int)
	for _, rec := range recs {
		latest[rec.Category] = rec.Cumulative
	}
	return latest, nil
}

// GetByStudent 获取学生全部指标记录，按写入顺序
func (r *IndicatorRepository) GetByStudent(ctx context.Context, studentID int64) ([]schema.IndicatorRecord, error) {
	var recs []schema.IndicatorRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询指标记录失败: %w", err)
	}
	return recs, nil
}

// DeleteByStudent 删除学生全部指标记录（全量重算前清空）
func (r *IndicatorRepository) DeleteByStudent(ctx context.Context, studentID int64) error {
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&schema.IndicatorRecord{}).Error
	if err != nil {
		return fmt.Errorf("清空指标记录失败: %w", err)
	}
	return nil
}
