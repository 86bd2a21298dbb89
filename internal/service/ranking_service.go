package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RankedStudent 排名输出的一行
type RankedStudent struct {
	Student schema.Student          `json:"student"`
	Entry   schema.PointsLedgerEntry `json:"entry"`
	Rank    int                     `json:"rank"`
}

// CompareRanked 排名比较链，独立成函数便于单测与日后修正
// 依次比较：总分降序 → 测验分降序 → 考勤分降序 → 作业分降序 →
// 目标分降序 → 注册时间升序（早者在前）→ 姓名按词典序升序（区域感知）
// 返回负数表示 a 排在 b 之前
func CompareRanked(a, b RankedStudent, coll *collate.Collator) int {
	if a.Entry.TotalPoints != b.Entry.TotalPoints {
		if a.Entry.TotalPoints > b.Entry.TotalPoints {
			return -1
		}
		return 1
	}
	if a.Entry.QuizPoints != b.Entry.QuizPoints {
		if a.Entry.QuizPoints > b.Entry.QuizPoints {
			return -1
		}
		return 1
	}
	if a.Entry.AttendancePoints != b.Entry.AttendancePoints {
		if a.Entry.AttendancePoints > b.Entry.AttendancePoints {
			return -1
		}
		return 1
	}
	if a.Entry.HomeworkPoints != b.Entry.HomeworkPoints {
		if a.Entry.HomeworkPoints > b.Entry.HomeworkPoints {
			return -1
		}
		return 1
	}
	if a.Entry.TargetPoints != b.Entry.TargetPoints {
		if a.Entry.TargetPoints > b.Entry.TargetPoints {
			return -1
		}
		return 1
	}
	if !a.Student.RegisteredAt.Equal(b.Student.RegisteredAt) {
		if a.Student.RegisteredAt.Before(b.Student.RegisteredAt) {
			return -1
		}
		return 1
	}
	return coll.CompareString(a.Student.Name, b.Student.Name)
}

// RankingService 排名引擎，基于积分台账产出严格全序
type RankingService struct {
	studentRepo  StudentRepository
	ledgerRepo   LedgerRepository
	snapshotRepo SnapshotRepository
}

// NewRankingService 创建排名引擎
func NewRankingService(
	studentRepo StudentRepository,
	ledgerRepo LedgerRepository,
	snapshotRepo SnapshotRepository,
) *RankingService {
	return &RankingService{
		studentRepo:  studentRepo,
		ledgerRepo:   ledgerRepo,
		snapshotRepo: snapshotRepo,
	}
}

// Rankings 对全部在册学生产出 1 起始的名次列表
// 总分相同的学生不并列，由比较链决出先后
func (s *RankingService) Rankings(ctx context.Context) ([]RankedStudent, error) {
	students, err := s.studentRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	entries, err := s.ledgerRepo.GetByStudentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[int64]schema.PointsLedgerEntry, len(entries))
	for _, e := range entries {
		byStudent[e.StudentID] = e
	}

	ranked := make([]RankedStudent, len(students))
	for i, st := range students {
		entry, ok := byStudent[st.ID]
		if !ok {
			// 尚无台账视为零分参与排名
			entry = schema.PointsLedgerEntry{StudentID: st.ID}
		}
		ranked[i] = RankedStudent{Student: st, Entry: entry}
	}

	// Collator 非并发安全，每次排序新建
	coll := collate.New(language.Und)
	sort.SliceStable(ranked, func(i, j int) bool {
		return CompareRanked(ranked[i], ranked[j], coll) < 0
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// Rank 返回学生在当前排名中的名次
func (s *RankingService) Rank(ctx context.Context, studentID int64) (int, error) {
	ranked, err := s.Rankings(ctx)
	if err != nil {
		return 0, err
	}
	for _, r := range ranked {
		if r.Student.ID == studentID {
			return r.Rank, nil
		}
	}
	return 0, fmt.Errorf("%w: 学生 %d 不在排名内", ErrNotFound, studentID)
}

// TopN 返回排名前 n 的学生
func (s *RankingService) TopN(ctx context.Context, n int) ([]RankedStudent, error) {
	ranked, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Average 全体在册学生的平均总分
func (s *RankingService) Average(ctx context.Context) (float64, error) {
	ranked, err := s.Rankings(ctx)
	if err != nil {
		return 0, err
	}
	if len(ranked) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, r := range ranked {
		sum += r.Entry.TotalPoints
	}
	return sum / float64(len(ranked)), nil
}

// CreateSnapshot 固化当前排名为指定日期的快照
func (s *RankingService) CreateSnapshot(ctx context.Context, date string) (*schema.RankingSnapshot, error) {
	existing, err := s.snapshotRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: 日期 %s 已有快照", ErrConflict, date)
	}

	ranked, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	entries := make(schema.SnapshotEntries, len(ranked))
	for i, r := range ranked {
		entries[i] = schema.SnapshotEntry{
			StudentID:   r.Student.ID,
			Rank:        r.Rank,
			TotalPoints: r.Entry.TotalPoints,
		}
	}

	snap := &schema.RankingSnapshot{AsOfDate: date, Entries: entries}
	if err := s.snapshotRepo.Create(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// CompareSnapshots 对两份快照中都出现的学生返回 rankA − rankB
// 正数表示从 A 到 B 名次数值变小（进步）；缺席任一快照的学生不参与
func (s *RankingService) CompareSnapshots(ctx context.Context, dateA, dateB string) (map[int64]int, error) {
	snapA, err := s.snapshotRepo.GetByDate(ctx, dateA)
	if err != nil {
		return nil, err
	}
	if snapA == nil {
		return nil, fmt.Errorf("%w: 快照 %s 不存在", ErrNotFound, dateA)
	}
	snapB, err := s.snapshotRepo.GetByDate(ctx, dateB)
	if err != nil {
		return nil, err
	}
	if snapB == nil {
		return nil, fmt.Errorf("%w: 快照 %s 不存在", ErrNotFound, dateB)
	}

	rankB := make(map[int64]int, len(snapB.Entries))
	for _, e := range snapB.Entries {
		rankB[e.StudentID] = e.Rank
	}

	diff := make(map[int64]int)
	for _, e := range snapA.Entries {
		if rb, ok := rankB[e.StudentID]; ok {
			diff[e.StudentID] = e.Rank - rb
		}
	}
	return diff, nil
}
