package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/repository"
	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// 订正请求载荷，按请求类型在编排器边界解码成强类型

// QuizScoreCorrectionPayload 测验得分订正
type QuizScoreCorrectionPayload struct {
	ScoreID int64   `json:"score_id" validate:"required,gt=0"`
	Points  float64 `json:"points" validate:"gte=0"`
}

// AttendanceCorrectionPayload 考勤订正
type AttendanceCorrectionPayload struct {
	RecordID int64  `json:"record_id" validate:"required,gt=0"`
	Status   string `json:"status" validate:"required,oneof=present absent late excused"`
}

// HomeworkCorrectionPayload 作业状态订正
type HomeworkCorrectionPayload struct {
	RecordID int64  `json:"record_id" validate:"required,gt=0"`
	Status   string `json:"status" validate:"required,oneof=done partially_done not_done"`
}

// SubmitRequestInput 提交订正请求的入参
type SubmitRequestInput struct {
	RequestType string
	RequesterID string
	Payload     schema.JSONMap
}

// RequestService 订正请求编排器
// 暂存提案 → 审批 → 在单个事务内落实实体变更与全部级联重算；
// 任一环节失败整体回滚，请求保持 pending
type RequestService struct {
	db          *gorm.DB
	requestRepo RequestRepository
	roles       RoleResolver
	bus         *eventbus.Bus // 外部总线：只发已提交/已生效的生命周期事件
	validate    *validator.Validate
}

// NewRequestService 创建编排器
func NewRequestService(db *gorm.DB, requestRepo RequestRepository, roles RoleResolver, bus *eventbus.Bus) *RequestService {
	return &RequestService{
		db:          db,
		requestRepo: requestRepo,
		roles:       roles,
		bus:         bus,
		validate:    validator.New(),
	}
}

// Submit 暂存一条订正请求
// 校验载荷对声明的请求类型是否良构；同一目标实体已有 pending 请求时报冲突
func (s *RequestService) Submit(ctx context.Context, input SubmitRequestInput) (*schema.UpdateRequest, error) {
	entityKind, entityID, err := s.decodeAndValidate(input.RequestType, input.Payload)
	if err != nil {
		return nil, err
	}

	pending, err := s.requestRepo.CountPendingByEntity(ctx, entityKind, entityID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: 实体 %s/%d 已有待审请求", ErrConflict, entityKind, entityID)
	}

	req := &schema.UpdateRequest{
		ID:          uuid.NewString(),
		RequestType: input.RequestType,
		EntityKind:  entityKind,
		EntityID:    entityID,
		Payload:     input.Payload,
		RequesterID: input.RequesterID,
		Status:      schema.RequestPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	slog.Info("订正请求已提交", "request", req.ID, "type", req.RequestType)
	if err := s.bus.Publish(ctx, eventbus.RequestSubmitted{
		RequestID:   req.ID,
		RequestType: req.RequestType,
	}); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve 批准请求并在单个事务内落实变更与级联
// 审批者须为管理员；事务内任何失败整体回滚，请求保持 pending，
// 生效事件只在提交成功后发布
func (s *RequestService) Approve(ctx context.Context, requestID, reviewerID, notes string) error {
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: 请求 %s 不存在", ErrNotFound, requestID)
	}
	if req.Status != schema.RequestPending {
		return fmt.Errorf("%w: 请求 %s 状态为 %s，不可审批", ErrValidation, requestID, req.Status)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 事务内用事务句柄重建引擎组合与同构级联，
		// 使实体变更与全部派生写入同生共死
		engines := NewEngines(tx, newCascadeBus())

		if err := s.apply(ctx, engines, req); err != nil {
			return err
		}

		now := time.Now()
		req.Status = schema.RequestApproved
		req.ReviewerID = reviewerID
		req.ReviewNotes = notes
		req.ReviewedAt = &now
		return repository.NewRequestRepository(tx).Save(ctx, req)
	})
	if err != nil {
		// 回滚后保持 pending，审批按失败上报
		req.Status = schema.RequestPending
		req.ReviewerID = ""
		req.ReviewNotes = ""
		req.ReviewedAt = nil
		slog.Warn("审批失败，已整体回滚", "request", requestID, "error", err)
		return fmt.Errorf("审批请求 %s 失败: %w", requestID, err)
	}

	return s.bus.Publish(ctx, eventbus.RequestApproved{
		RequestID:   req.ID,
		RequestType: req.RequestType,
	})
}

// Reject 驳回请求，不触碰业务数据
func (s *RequestService) Reject(ctx context.Context, requestID, reviewerID, reason string) error {
	if err := s.requireAdmin(ctx, reviewerID); err != nil {
		return err
	}

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: 请求 %s 不存在", ErrNotFound, requestID)
	}
	if req.Status != schema.RequestPending {
		return fmt.Errorf("%w: 请求 %s 状态为 %s，不可驳回", ErrValidation, requestID, req.Status)
	}

	now := time.Now()
	req.Status = schema.RequestRejected
	req.ReviewerID = reviewerID
	req.ReviewNotes = reason
	req.ReviewedAt = &now
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return err
	}

	return s.bus.Publish(ctx, eventbus.RequestRejected{
		RequestID:   req.ID,
		RequestType: req.RequestType,
		Reason:      reason,
	})
}

// apply 落实实体变更并触发该请求类型专属的级联
func (s *RequestService) apply(ctx context.Context, engines *Engines, req *schema.UpdateRequest) error {
	switch req.RequestType {
	case schema.RequestQuizScoreCorrection:
		var p QuizScoreCorrectionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return err
		}
		score, err := engines.Repos.Scores.GetByID(ctx, p.ScoreID)
		if err != nil {
			return err
		}
		if score == nil {
			return fmt.Errorf("%w: 得分记录 %d 不存在", ErrNotFound, p.ScoreID)
		}
		if err := engines.Records.CorrectScore(ctx, p.ScoreID, p.Points); err != nil {
			return err
		}
		// 历史得分订正后从零重建指标链，指标事件带动目标/积分级联
		if err := engines.Indicators.RecalculateAll(ctx, score.StudentID); err != nil {
			return err
		}
		return engines.Points.UpdateQuizPoints(ctx, score.StudentID)

	case schema.RequestAttendanceCorrection:
		var p AttendanceCorrectionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return err
		}
		rec, err := engines.Repos.Attendance.GetByID(ctx, p.RecordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: 考勤记录 %d 不存在", ErrNotFound, p.RecordID)
		}
		if err := engines.Records.CorrectAttendance(ctx, p.RecordID, p.Status); err != nil {
			return err
		}
		if err := engines.Warnings.CheckAndGenerateWarnings(ctx, rec.StudentID); err != nil {
			return err
		}
		return engines.Points.UpdateAttendancePoints(ctx, rec.StudentID)

	case schema.RequestHomeworkCorrection:
		var p HomeworkCorrectionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return err
		}
		rec, err := engines.Repos.Homework.GetByID(ctx, p.RecordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: 作业记录 %d 不存在", ErrNotFound, p.RecordID)
		}
		if err := engines.Records.CorrectHomework(ctx, p.RecordID, p.Status); err != nil {
			return err
		}
		return engines.Points.UpdateHomeworkPoints(ctx, rec.StudentID)

	default:
		return fmt.Errorf("%w: 未知请求类型 %q", ErrValidation, req.RequestType)
	}
}

// decodeAndValidate 在提交边界把动态载荷解码为强类型并做结构校验，
// 返回目标实体标识用于 pending 冲突检查
func (s *RequestService) decodeAndValidate(requestType string, payload schema.JSONMap) (entityKind string, entityID int64, err error) {
	switch requestType {
	case schema.RequestQuizScoreCorrection:
		var p QuizScoreCorrectionPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", 0, err
		}
		if err := s.validate.Struct(p); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return "quiz_score", p.ScoreID, nil
	case schema.RequestAttendanceCorrection:
		var p AttendanceCorrectionPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", 0, err
		}
		if err := s.validate.Struct(p); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return "attendance_record", p.RecordID, nil
	case schema.RequestHomeworkCorrection:
		var p HomeworkCorrectionPayload
		if err := decodePayload(payload, &p); err != nil {
			return "", 0, err
		}
		if err := s.validate.Struct(p); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return "homework_record", p.RecordID, nil
	default:
		return "", 0, fmt.Errorf("%w: 未知请求类型 %q", ErrValidation, requestType)
	}
}

func (s *RequestService) requireAdmin(ctx context.Context, userID string) error {
	ok, err := s.roles.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: 用户 %s 无审批权限", ErrUnauthorized, userID)
	}
	return nil
}

// newCascadeBus 事务内的级联总线：与外部总线隔离，
// 回滚时不会有任何监听方看到未提交状态
func newCascadeBus() *eventbus.Bus {
	return eventbus.New()
}

func decodePayload(payload schema.JSONMap, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: 载荷序列化失败: %v", ErrValidation, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: 载荷不合法: %v", ErrValidation, err)
	}
	return nil
}
