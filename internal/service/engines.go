package service

import (
	"context"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/repository"
	"gorm.io/gorm"
)

// Engines 一套完整的引擎组合
// 级联订阅在构建时静态声明，订阅图只在这里出现一处，便于审视与单测；
// 编排器在事务内用事务句柄重建一套同构引擎，使级联写入同属一个事务
type Engines struct {
	Bus *eventbus.Bus

	Repos struct {
		Students   StudentRepository
		Quizzes    QuizRepository
		Scores     ScoreRepository
		Attendance AttendanceRepository
		Homework   HomeworkRepository
		Incidents  IncidentRepository
		Indicators IndicatorRepository
		Ledger     LedgerRepository
		Snapshots  SnapshotRepository
		Targets    TargetRepository
		Streaks    StreakRepository
		Warnings   WarningRepository
		Requests   RequestRepository
	}

	Indicators *IndicatorService
	Points     *PointsService
	Rankings   *RankingService
	Targets    *TargetService
	Warnings   *WarningService
	Records    *RecordService
}

// NewEngines 在给定 DB 句柄上构建引擎组合并接好级联
func NewEngines(db *gorm.DB, bus *eventbus.Bus) *Engines {
	e := &Engines{Bus: bus}

	e.Repos.Students = repository.NewStudentRepository(db)
	e.Repos.Quizzes = repository.NewQuizRepository(db)
	e.Repos.Scores = repository.NewScoreRepository(db)
	e.Repos.Attendance = repository.NewAttendanceRepository(db)
	e.Repos.Homework = repository.NewHomeworkRepository(db)
	e.Repos.Incidents = repository.NewIncidentRepository(db)
	e.Repos.Indicators = repository.NewIndicatorRepository(db)
	e.Repos.Ledger = repository.NewLedgerRepository(db)
	e.Repos.Snapshots = repository.NewSnapshotRepository(db)
	e.Repos.Targets = repository.NewTargetRepository(db)
	e.Repos.Streaks = repository.NewStreakRepository(db)
	e.Repos.Warnings = repository.NewWarningRepository(db)
	e.Repos.Requests = repository.NewRequestRepository(db)

	e.Indicators = NewIndicatorService(e.Repos.Quizzes, e.Repos.Scores, e.Repos.Indicators, bus)
	e.Points = NewPointsService(e.Repos.Scores, e.Repos.Attendance, e.Repos.Homework, e.Repos.Streaks, e.Repos.Ledger, bus)
	e.Rankings = NewRankingService(e.Repos.Students, e.Repos.Ledger, e.Repos.Snapshots)
	e.Targets = NewTargetService(e.Repos.Targets, e.Repos.Streaks, bus)
	e.Warnings = NewWarningService(e.Repos.Attendance, e.Repos.Incidents, e.Repos.Warnings, bus)
	e.Records = NewRecordService(e.Repos.Students, e.Repos.Quizzes, e.Repos.Scores, e.Repos.Attendance, e.Repos.Homework)

	wireCascade(e)
	return e
}

// wireCascade 声明级联订阅图：
// 指标落账 → 刷新测验分量；下滑 → 堆叠目标并重置连胜；
// 回升 → 判定目标达成；连胜变化 → 刷新目标奖励分量
func wireCascade(e *Engines) {
	e.Bus.Subscribe(eventbus.TypeIndicatorComputed, func(ctx context.Context, evt eventbus.Event) error {
		ev, ok := evt.(eventbus.IndicatorComputed)
		if !ok {
			return nil
		}
		return e.Points.UpdateQuizPoints(ctx, ev.StudentID)
	})

	e.Bus.Subscribe(eventbus.TypeDegradationDetected, func(ctx context.Context, evt eventbus.Event) error {
		ev, ok := evt.(eventbus.DegradationDetected)
		if !ok {
			return nil
		}
		return e.Targets.OnDegradation(ctx, ev.StudentID, ev.Category, ev.Previous, ev.Current)
	})

	e.Bus.Subscribe(eventbus.TypeImprovementDetected, func(ctx context.Context, evt eventbus.Event) error {
		ev, ok := evt.(eventbus.ImprovementDetected)
		if !ok {
			return nil
		}
		return e.Targets.OnIndicatorChange(ctx, ev.StudentID, ev.Category, ev.Current)
	})

	e.Bus.Subscribe(eventbus.TypeStreakUpdated, func(ctx context.Context, evt eventbus.Event) error {
		ev, ok := evt.(eventbus.StreakUpdated)
		if !ok {
			return nil
		}
		return e.Points.UpdateTargetPoints(ctx, ev.StudentID)
	})
}
