package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// ScoreRepository 测验得分仓储
type ScoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository 创建仓储
func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create 录入得分
func (r *ScoreRepository) Create(ctx context.Context, score *schema.QuizScore) error {
	if err := r.db.WithContext(ctx).Create(score).Error; err != nil {
		return fmt.Errorf("录入得分失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取得分，不存在返回 nil
func (r *ScoreRepository) GetByID(ctx context.Context, id int64) (*schema.QuizScore, error) {
	var score schema.QuizScore
	err := r.db.WithContext(ctx).First(&score, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询得分失败: %w", err)
	}
	return &score, nil
}

// GetByQuizAndStudent 获取学生在某测验的全部得分
func (r *ScoreRepository) GetByQuizAndStudent(ctx context.Context, quizID, studentID int64) ([]schema.QuizScore, error) {
	var scores []schema.QuizScore
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("question_id").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("查询测验得分失败: %w", err)
	}
	return scores, nil
}

// UpdatePoints 订正单条得分
func (r *ScoreRepository) UpdatePoints(ctx context.Context, id int64, points float64) error {
	err := r.db.WithContext(ctx).
		Model(&schema.QuizScore{}).
		Where("id = ?", id).
		Update("points", points).Error
	if err != nil {
		return fmt.Errorf("订正得分失败: %w", err)
	}
	return nil
}

// SumByStudent 学生历史得分总和
func (r *ScoreRepository) SumByStudent(ctx context.Context, studentID int64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&schema.QuizScore{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("统计得分总和失败: %w", err)
	}
	return total, nil
}
