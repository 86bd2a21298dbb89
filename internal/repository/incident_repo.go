package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// IncidentRepository 行为事件仓储
type IncidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository 创建仓储
func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create 记录行为事件
func (r *IncidentRepository) Create(ctx context.Context, inc *schema.BehaviorIncident) error {
	if err := r.db.WithContext(ctx).Create(inc).Error; err != nil {
		return fmt.Errorf("记录行为事件失败: %w", err)
	}
	return nil
}

// GetRecentByStudent 获取学生最近的行为事件，按日期倒序
func (r *IncidentRepository) GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.BehaviorIncident, error) {
	var incs []schema.BehaviorIncident
	q := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&incs).Error; err != nil {
		return nil, fmt.Errorf("查询行为事件失败: %w", err)
	}
	return incs, nil
}

// GetByStudentInMonth 获取学生某月（YYYY-MM）的全部行为事件
func (r *IncidentRepository) GetByStudentInMonth(ctx context.Context, studentID int64, month string) ([]schema.BehaviorIncident, error) {
	var incs []schema.BehaviorIncident
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date LIKE ?", studentID, month+"%").
		Order("date, id").
		Find(&incs).Error
	if err != nil {
		return nil, fmt.Errorf("查询当月行为事件失败: %w", err)
	}
	return incs, nil
}
