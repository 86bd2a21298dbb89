package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakRepository 连胜记录仓储
type StreakRepository struct {
	db *gorm.DB
}

// NewStreakRepository 创建仓储
func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Get 获取学生连胜记录，不存在返回 nil
func (r *StreakRepository) Get(ctx context.Context, studentID int64) (*schema.AchievementStreak, error) {
	var streak schema.AchievementStreak
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&streak).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询连胜记录失败: %w", err)
	}
	return &streak, nil
}

// Upsert 插入或覆盖连胜记录
func (r *StreakRepository) Upsert(ctx context.Context, streak *schema.AchievementStreak) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}},
		UpdateAll: true,
	}).Create(streak).Error
	if err != nil {
		return fmt.Errorf("写入连胜记录失败: %w", err)
	}
	return nil
}
