package service

import (
	"context"
	"time"

	"github.com/yuqie6/GradeMirror/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）

type StudentRepository interface {
	Create(ctx context.Context, s *schema.Student) error
	GetByID(ctx context.Context, id int64) (*schema.Student, error)
	GetActive(ctx context.Context) ([]schema.Student, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
}

type QuizRepository interface {
	GetByID(ctx context.Context, id int64) (*schema.Quiz, error)
	GetQuestions(ctx context.Context, quizID int64) ([]schema.QuizQuestion, error)
	GetScoredByStudent(ctx context.Context, studentID int64) ([]schema.Quiz, error)
}

type ScoreRepository interface {
	GetByID(ctx context.Context, id int64) (*schema.QuizScore, error)
	GetByQuizAndStudent(ctx context.Context, quizID, studentID int64) ([]schema.QuizScore, error)
	UpdatePoints(ctx context.Context, id int64, points float64) error
	SumByStudent(ctx context.Context, studentID int64) (float64, error)
}

type AttendanceRepository interface {
	GetByID(ctx context.Context, id int64) (*schema.AttendanceRecord, error)
	GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.AttendanceRecord, error)
	GetByStudentAndDate(ctx context.Context, studentID int64, date string) (*schema.AttendanceRecord, error)
	CountPresent(ctx context.Context, studentID int64) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type HomeworkRepository interface {
	GetByID(ctx context.Context, id int64) (*schema.HomeworkRecord, error)
	GetByStudent(ctx context.Context, studentID int64) ([]schema.HomeworkRecord, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type IncidentRepository interface {
	GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.BehaviorIncident, error)
	GetByStudentInMonth(ctx context.Context, studentID int64, month string) ([]schema.BehaviorIncident, error)
}

type IndicatorRepository interface {
	Create(ctx context.Context, rec *schema.IndicatorRecord) error
	GetLatest(ctx context.Context, studentID int64, category string) (*schema.IndicatorRecord, error)
	GetLastValues(ctx context.Context, studentID int64, category string, limit int) ([]int, error)
	GetLatestPerCategory(ctx context.Context, studentID int64) (map[string]int, error)
	GetByStudent(ctx context.Context, studentID int64) ([]schema.IndicatorRecord, error)
	DeleteByStudent(ctx context.Context, studentID int64) error
}

type LedgerRepository interface {
	Get(ctx context.Context, studentID int64) (*schema.PointsLedgerEntry, error)
	Upsert(ctx context.Context, entry *schema.PointsLedgerEntry) error
	GetByStudentIDs(ctx context.Context, ids []int64) ([]schema.PointsLedgerEntry, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, snap *schema.RankingSnapshot) error
	GetByDate(ctx context.Context, date string) (*schema.RankingSnapshot, error)
	List(ctx context.Context, limit int) ([]schema.RankingSnapshot, error)
	Prune(ctx context.Context, keep int) error
}

type TargetRepository interface {
	Create(ctx context.Context, t *schema.Target) error
	GetActiveByCategory(ctx context.Context, studentID int64, category string) ([]schema.Target, error)
	GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Target, error)
	ExistsActiveAtValue(ctx context.Context, studentID int64, category string, value int) (bool, error)
	MarkAchieved(ctx context.Context, id int64, at time.Time) error
	CountActiveByStudent(ctx context.Context, studentID int64) (int64, error)
}

type StreakRepository interface {
	Get(ctx context.Context, studentID int64) (*schema.AchievementStreak, error)
	Upsert(ctx context.Context, streak *schema.AchievementStreak) error
}

type WarningRepository interface {
	Create(ctx context.Context, w *schema.Warning) error
	GetActiveByStudentAndType(ctx context.Context, studentID int64, warningType string) ([]schema.Warning, error)
	GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Warning, error)
	Resolve(ctx context.Context, id int64, at time.Time) error
}

type RequestRepository interface {
	Create(ctx context.Context, req *schema.UpdateRequest) error
	GetByID(ctx context.Context, id string) (*schema.UpdateRequest, error)
	CountPendingByEntity(ctx context.Context, entityKind string, entityID int64) (int64, error)
	Save(ctx context.Context, req *schema.UpdateRequest) error
	ListByStatus(ctx context.Context, status string, limit int) ([]schema.UpdateRequest, error)
}

// RoleResolver 解析操作者角色（身份/会话由外部系统维护）
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
