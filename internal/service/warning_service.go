package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

// 预警阈值（业务常量，不开放配置）
const (
	consecutiveAbsenceThreshold = 2  // 连续缺勤 ≥2 次触发缺勤预警
	archivedRiskThreshold       = 3  // 连续缺勤 ≥3 次升级为流失风险预警
	sameTypeIncidentThreshold   = 2  // 连续 ≥2 次同类行为事件触发行为预警
	monthlyIncidentThreshold    = 3  // 当月任意类型行为事件 ≥3 次触发行为预警
	attendanceLookback          = 30 // 判定连续缺勤时回看的考勤条数
)

// WarningService 风险预警引擎
// 在考勤或行为事件变化后复核学生的预警状态
type WarningService struct {
	attendanceRepo AttendanceRepository
	incidentRepo   IncidentRepository
	warningRepo    WarningRepository
	bus            *eventbus.Bus
}

// NewWarningService 创建预警引擎
func NewWarningService(
	attendanceRepo AttendanceRepository,
	incidentRepo IncidentRepository,
	warningRepo WarningRepository,
	bus *eventbus.Bus,
) *WarningService {
	return &WarningService{
		attendanceRepo: attendanceRepo,
		incidentRepo:   incidentRepo,
		warningRepo:    warningRepo,
		bus:            bus,
	}
}

// CheckAndGenerateWarnings 复核并生成学生预警
// 连续缺勤 ≥3 次时只升级为流失风险预警（替代缺勤预警，不并存）；
// 条件不再满足的缺勤类预警在复核时一并解除
func (s *WarningService) CheckAndGenerateWarnings(ctx context.Context, studentID int64) error {
	if err := s.checkAttendance(ctx, studentID); err != nil {
		return err
	}
	return s.checkBehavior(ctx, studentID)
}

func (s *WarningService) checkAttendance(ctx context.Context, studentID int64) error {
	records, err := s.attendanceRepo.GetRecentByStudent(ctx, studentID, attendanceLookback)
	if err != nil {
		return err
	}

	// 从最近一条向前数连续缺勤
	consecutive := 0
	for _, rec := range records {
		if rec.Status != schema.AttendanceAbsent {
			break
		}
		consecutive++
	}

	switch {
	case consecutive >= archivedRiskThreshold:
		// 升级：解除缺勤预警，改挂流失风险预警
		if err := s.ResolveWarningsByStudent(ctx, studentID, schema.WarningConsecutiveAbsence); err != nil {
			return err
		}
		reason := fmt.Sprintf("连续缺勤 %d 次，存在流失风险", consecutive)
		return s.raiseIfAbsent(ctx, studentID, schema.WarningArchivedRisk, reason)
	case consecutive >= consecutiveAbsenceThreshold:
		reason := fmt.Sprintf("连续缺勤 %d 次", consecutive)
		return s.raiseIfAbsent(ctx, studentID, schema.WarningConsecutiveAbsence, reason)
	default:
		// 订正后条件不再成立，缺勤类预警一并解除
		if err := s.ResolveWarningsByStudent(ctx, studentID, schema.WarningConsecutiveAbsence); err != nil {
			return err
		}
		return s.ResolveWarningsByStudent(ctx, studentID, schema.WarningArchivedRisk)
	}
}

func (s *WarningService) checkBehavior(ctx context.Context, studentID int64) error {
	// 规则一：最近 ≥2 次连续同类事件
	recent, err := s.incidentRepo.GetRecentByStudent(ctx, studentID, sameTypeIncidentThreshold)
	if err != nil {
		return err
	}
	if len(recent) >= sameTypeIncidentThreshold {
		sameType := true
		for _, inc := range recent[1:] {
			if inc.IncidentType != recent[0].IncidentType {
				sameType = false
				break
			}
		}
		if sameType {
			reason := fmt.Sprintf("连续 %d 次「%s」行为事件（%s）",
				len(recent), recent[0].IncidentType, incidentDates(recent))
			return s.raiseIfAbsent(ctx, studentID, schema.WarningBehavioral, reason)
		}
	}

	// 规则二：当月任意类型事件 ≥3 次
	month := time.Now().Format("2006-01")
	monthly, err := s.incidentRepo.GetByStudentInMonth(ctx, studentID, month)
	if err != nil {
		return err
	}
	if len(monthly) >= monthlyIncidentThreshold {
		reason := fmt.Sprintf("%s 月内行为事件 %d 次（%s）", month, len(monthly), incidentDates(monthly))
		return s.raiseIfAbsent(ctx, studentID, schema.WarningBehavioral, reason)
	}

	return nil
}

// raiseIfAbsent 同类型没有活跃预警时才新建
func (s *WarningService) raiseIfAbsent(ctx context.Context, studentID int64, warningType, reason string) error {
	active, err := s.warningRepo.GetActiveByStudentAndType(ctx, studentID, warningType)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return nil
	}

	w := &schema.Warning{
		StudentID:   studentID,
		WarningType: warningType,
		Reason:      reason,
		Active:      true,
	}
	if err := s.warningRepo.Create(ctx, w); err != nil {
		return err
	}
	slog.Info("生成预警", "student", studentID, "type", warningType, "reason", reason)
	return s.bus.Publish(ctx, eventbus.WarningRaised{
		StudentID:   studentID,
		WarningType: warningType,
		Reason:      reason,
	})
}

// ResolveWarning 解除单条预警并发布解除事件
func (s *WarningService) ResolveWarning(ctx context.Context, w *schema.Warning) error {
	if w == nil || !w.Active {
		return nil
	}
	if err := s.warningRepo.Resolve(ctx, w.ID, time.Now()); err != nil {
		return err
	}
	return s.bus.Publish(ctx, eventbus.WarningResolved{
		StudentID:   w.StudentID,
		WarningType: w.WarningType,
	})
}

// ResolveWarningsByStudent 解除学生某类型的全部活跃预警，每条各发一个解除事件
func (s *WarningService) ResolveWarningsByStudent(ctx context.Context, studentID int64, warningType string) error {
	active, err := s.warningRepo.GetActiveByStudentAndType(ctx, studentID, warningType)
	if err != nil {
		return err
	}
	for i := range active {
		if err := s.ResolveWarning(ctx, &active[i]); err != nil {
			return err
		}
	}
	return nil
}

// ActiveWarnings 学生当前全部活跃预警
func (s *WarningService) ActiveWarnings(ctx context.Context, studentID int64) ([]schema.Warning, error) {
	return s.warningRepo.GetActiveByStudent(ctx, studentID)
}

func incidentDates(incidents []schema.BehaviorIncident) string {
	dates := make([]string, len(incidents))
	for i, inc := range incidents {
		dates[i] = inc.Date
	}
	return strings.Join(dates, "、")
}
