package service

import (
	"context"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

// PointsService 积分台账引擎
// 聚合测验/考勤/作业/目标四类积分为每生一行的总分；
// 窄更新只刷新单一分量，但与全量重算对同一事实集必须给出相同总分
type PointsService struct {
	scoreRepo      ScoreRepository
	attendanceRepo AttendanceRepository
	homeworkRepo   HomeworkRepository
	streakRepo     StreakRepository
	ledgerRepo     LedgerRepository
	bus            *eventbus.Bus
}

// NewPointsService 创建积分引擎
func NewPointsService(
	scoreRepo ScoreRepository,
	attendanceRepo AttendanceRepository,
	homeworkRepo HomeworkRepository,
	streakRepo StreakRepository,
	ledgerRepo LedgerRepository,
	bus *eventbus.Bus,
) *PointsService {
	return &PointsService{
		scoreRepo:      scoreRepo,
		attendanceRepo: attendanceRepo,
		homeworkRepo:   homeworkRepo,
		streakRepo:     streakRepo,
		ledgerRepo:     ledgerRepo,
		bus:            bus,
	}
}

// Recalculate 全量重算学生台账
func (s *PointsService) Recalculate(ctx context.Context, studentID int64) error {
	quizPoints, err := s.scoreRepo.SumByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	attendancePoints, err := s.attendanceRepo.CountPresent(ctx, studentID)
	if err != nil {
		return err
	}
	homeworkPoints, err := s.homeworkPoints(ctx, studentID)
	if err != nil {
		return err
	}
	targetPoints, err := s.targetPoints(ctx, studentID)
	if err != nil {
		return err
	}

	entry := &schema.PointsLedgerEntry{
		StudentID:        studentID,
		QuizPoints:       quizPoints,
		AttendancePoints: int(attendancePoints),
		HomeworkPoints:   homeworkPoints,
		TargetPoints:     targetPoints,
	}
	return s.store(ctx, entry)
}

// UpdateQuizPoints 只刷新测验分量与总分
func (s *PointsService) UpdateQuizPoints(ctx context.Context, studentID int64) error {
	entry, err := s.loadEntry(ctx, studentID)
	if err != nil {
		return err
	}
	quizPoints, err := s.scoreRepo.SumByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	entry.QuizPoints = quizPoints
	return s.store(ctx, entry)
}

// UpdateAttendancePoints 只刷新考勤分量与总分
func (s *PointsService) UpdateAttendancePoints(ctx context.Context, studentID int64) error {
	entry, err := s.loadEntry(ctx, studentID)
	if err != nil {
		return err
	}
	count, err := s.attendanceRepo.CountPresent(ctx, studentID)
	if err != nil {
		return err
	}
	entry.AttendancePoints = int(count)
	return s.store(ctx, entry)
}

// UpdateHomeworkPoints 只刷新作业分量与总分
func (s *PointsService) UpdateHomeworkPoints(ctx context.Context, studentID int64) error {
	entry, err := s.loadEntry(ctx, studentID)
	if err != nil {
		return err
	}
	points, err := s.homeworkPoints(ctx, studentID)
	if err != nil {
		return err
	}
	entry.HomeworkPoints = points
	return s.store(ctx, entry)
}

// UpdateTargetPoints 只刷新目标奖励分量与总分
func (s *PointsService) UpdateTargetPoints(ctx context.Context, studentID int64) error {
	entry, err := s.loadEntry(ctx, studentID)
	if err != nil {
		return err
	}
	points, err := s.targetPoints(ctx, studentID)
	if err != nil {
		return err
	}
	entry.TargetPoints = points
	return s.store(ctx, entry)
}

// loadEntry 读取现有台账，不存在则给零值行
func (s *PointsService) loadEntry(ctx context.Context, studentID int64) (*schema.PointsLedgerEntry, error) {
	entry, err := s.ledgerRepo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = &schema.PointsLedgerEntry{StudentID: studentID}
	}
	return entry, nil
}

func (s *PointsService) homeworkPoints(ctx context.Context, studentID int64) (int, error) {
	records, err := s.homeworkRepo.GetByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rec := range records {
		total += schema.HomeworkPoints(rec.Status)
	}
	return total, nil
}

func (s *PointsService) targetPoints(ctx context.Context, studentID int64) (int, error) {
	streak, err := s.streakRepo.Get(ctx, studentID)
	if err != nil {
		return 0, err
	}
	if streak == nil {
		return 0, nil
	}
	return streak.TotalPointsEarned, nil
}

func (s *PointsService) store(ctx context.Context, entry *schema.PointsLedgerEntry) error {
	entry.RecomputeTotal()
	if err := s.ledgerRepo.Upsert(ctx, entry); err != nil {
		return err
	}
	return s.bus.Publish(ctx, eventbus.PointsUpdated{
		StudentID:   entry.StudentID,
		TotalPoints: entry.TotalPoints,
	})
}
