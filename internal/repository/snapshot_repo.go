package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// SnapshotRepository 排名快照仓储
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository 创建仓储
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create 保存快照，同日期已存在则报错（快照不可覆盖）
func (r *SnapshotRepository) Create(ctx context.Context, snap *schema.RankingSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("保存排名快照失败: %w", err)
	}
	return nil
}

// GetByDate 按日期获取快照，不存在返回 nil
func (r *SnapshotRepository) GetByDate(ctx context.Context, date string) (*schema.RankingSnapshot, error) {
	var snap schema.RankingSnapshot
	err := r.db.WithContext(ctx).
		Where("as_of_date = ?", date).
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询排名快照失败: %w", err)
	}
	return &snap, nil
}

// Prune 只保留最近 keep 份快照，删除更早的
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("as_of_date NOT IN (?)", r.db.Model(&schema.RankingSnapshot{}).
			Select("as_of_date").
			Order("as_of_date DESC").
			Limit(keep)).
		Delete(&schema.RankingSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("清理过期快照失败: %w", err)
	}
	return nil
}

// List 获取全部快照，按日期倒序
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]schema.RankingSnapshot, error) {
	var snaps []schema.RankingSnapshot
	q := r.db.WithContext(ctx).Order("as_of_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&snaps).Error; err != nil {
		return nil, fmt.Errorf("查询排名快照失败: %w", err)
	}
	return snaps, nil
}
