package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// AttendanceRepository 考勤仓储
type AttendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository 创建仓储
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create 新建考勤记录
func (r *AttendanceRepository) Create(ctx context.Context, rec *schema.AttendanceRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("创建考勤记录失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取考勤记录，不存在返回 nil
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*schema.AttendanceRecord, error) {
	var rec schema.AttendanceRecord
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询考勤记录失败: %w", err)
	}
	return &rec, nil
}

// GetRecentByStudent 获取学生最近的考勤记录，按日期倒序
func (r *AttendanceRepository) GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.AttendanceRecord, error) {
	var recs []schema.AttendanceRecord
	q := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("查询考勤记录失败: %w", err)
	}
	return recs, nil
}

// GetByStudentAndDate 获取学生某日的考勤记录，不存在返回 nil
func (r *AttendanceRepository) GetByStudentAndDate(ctx context.Context, studentID int64, date string) (*schema.AttendanceRecord, error) {
	var rec schema.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND date = ?", studentID, date).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询考勤记录失败: %w", err)
	}
	return &rec, nil
}

// CountPresent 统计学生出勤次数
func (r *AttendanceRepository) CountPresent(ctx context.Context, studentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.AttendanceRecord{}).
		Where("student_id = ? AND status = ?", studentID, schema.AttendancePresent).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计出勤失败: %w", err)
	}
	return count, nil
}

// UpdateStatus 订正考勤状态
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	err := r.db.WithContext(ctx).
		Model(&schema.AttendanceRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("订正考勤状态失败: %w", err)
	}
	return nil
}
