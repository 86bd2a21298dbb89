package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// RequestRepository 更新请求仓储
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository 创建仓储
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create 保存请求
func (r *RequestRepository) Create(ctx context.Context, req *schema.UpdateRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("保存更新请求失败: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取请求，不存在返回 nil
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*schema.UpdateRequest, error) {
	var req schema.UpdateRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询更新请求失败: %w", err)
	}
	return &req, nil
}

// CountPendingByEntity 统计某实体上的 pending 请求数
func (r *RequestRepository) CountPendingByEntity(ctx context.Context, entityKind string, entityID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&schema.UpdateRequest{}).
		Where("entity_kind = ? AND entity_id = ? AND status = ?", entityKind, entityID, schema.RequestPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计待审请求失败: %w", err)
	}
	return count, nil
}

// Save 覆盖保存请求（状态迁移）
func (r *RequestRepository) Save(ctx context.Context, req *schema.UpdateRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return fmt.Errorf("更新请求状态失败: %w", err)
	}
	return nil
}

// ListByStatus 按状态列出请求，按提交时间倒序
func (r *RequestRepository) ListByStatus(ctx context.Context, status string, limit int) ([]schema.UpdateRequest, error) {
	var reqs []schema.UpdateRequest
	q := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("查询更新请求失败: %w", err)
	}
	return reqs, nil
}
