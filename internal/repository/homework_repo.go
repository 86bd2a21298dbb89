package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// HomeworkRepository 作业仓储
type HomeworkRepository struct {
	db *gorm.DB
}

// NewHomeworkRepository 创建仓储
func NewHomeworkRepository(db *gorm.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// Create 新建作业记录
func (r *HomeworkRepository) Create(ctx context.Context, rec *schema.HomeworkRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("创建作业记录失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取作业记录，不存在返回 nil
func (r *HomeworkRepository) GetByID(ctx context.Context, id int64) (*schema.HomeworkRecord, error) {
	var rec schema.HomeworkRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询作业记录失败: %w", err)
	}
	return &rec, nil
}

// GetByStudent 获取学生全部作业记录
func (r *HomeworkRepository) GetByStudent(ctx context.Context, studentID int64) ([]schema.HomeworkRecord, error) {
	var recs []schema.HomeworkRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("查询作业记录失败: %w", err)
	}
	return recs, nil
}

// UpdateStatus 订正作业状态
func (r *HomeworkRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).
		Model(&schema.HomeworkRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("订正作业状态失败: %w", err)
	}
	return nil
}
