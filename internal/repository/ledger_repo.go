package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository 积分台账仓储
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建仓储
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Get 获取学生台账，不存在返回 nil
func (r *LedgerRepository) Get(ctx context.Context, studentID int64) (*schema.PointsLedgerEntry, error) {
	var entry schema.PointsLedgerEntry
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询积分台账失败: %w", err)
	}
	return &entry, nil
}

// Upsert 插入或覆盖学生台账
func (r *LedgerRepository) Upsert(ctx context.Context, entry *schema.PointsLedgerEntry) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		UpdateAll: true,
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("写入积分台账失败: %w", err)
	}
	return nil
}

// GetByStudentIDs 批量获取台账
func (r *LedgerRepository) GetByStudentIDs(ctx context.Context, ids []int64) ([]schema.PointsLedgerEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var entries []schema.PointsLedgerEntry
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", ids).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("批量查询积分台账失败: %w", err)
	}
	return entries, nil
}
