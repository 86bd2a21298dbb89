package service

import (
	"context"
	"sort"
	"time"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

// 共享的内存版仓储假对象，各测试文件按需取用

type fakeStudentRepo struct {
	items map[int64]*schema.Student
}

func newFakeStudentRepo(students ...*schema.Student) *fakeStudentRepo {
	m := make(map[int64]*schema.Student)
	for _, s := range students {
		copy := *s
		m[s.ID] = &copy
	}
	return &fakeStudentRepo{items: m}
}

func (r *fakeStudentRepo) Create(ctx context.Context, s *schema.Student) error {
	copy := *s
	r.items[s.ID] = &copy
	return nil
}
func (r *fakeStudentRepo) GetByID(ctx context.Context, id int64) (*schema.Student, error) {
	if s, ok := r.items[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeStudentRepo) GetActive(ctx context.Context) ([]schema.Student, error) {
	out := make([]schema.Student, 0, len(r.items))
	for _, s := range r.items {
		if !s.Archived {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r *fakeStudentRepo) SetArchived(ctx context.Context, id int64, archived bool) error {
	if s, ok := r.items[id]; ok {
		s.Archived = archived
	}
	return nil
}

type fakeQuizRepo struct {
	quizzes   map[int64]*schema.Quiz
	questions map[int64][]schema.QuizQuestion // quizID → questions
	scored    []schema.Quiz                   // GetScoredByStudent 的固定返回
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{
		quizzes:   make(map[int64]*schema.Quiz),
		questions: make(map[int64][]schema.QuizQuestion),
	}
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, id int64) (*schema.Quiz, error) {
	if q, ok := r.quizzes[id]; ok {
		copy := *q
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeQuizRepo) GetQuestions(ctx context.Context, quizID int64) ([]schema.QuizQuestion, error) {
	return r.questions[quizID], nil
}
func (r *fakeQuizRepo) GetScoredByStudent(ctx context.Context, studentID int64) ([]schema.Quiz, error) {
	return r.scored, nil
}

type fakeScoreRepo struct {
	items map[int64]*schema.QuizScore
}

func newFakeScoreRepo(scores ...*schema.QuizScore) *fakeScoreRepo {
	m := make(map[int64]*schema.QuizScore)
	for _, s := range scores {
		copy := *s
		m[s.ID] = &copy
	}
	return &fakeScoreRepo{items: m}
}

func (r *fakeScoreRepo) GetByID(ctx context.Context, id int64) (*schema.QuizScore, error) {
	if s, ok := r.items[id]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeScoreRepo) GetByQuizAndStudent(ctx context.Context, quizID, studentID int64) ([]schema.QuizScore, error) {
	out := make([]schema.QuizScore, 0)
	for _, s := range r.items {
		if s.QuizID == quizID && s.StudentID == studentID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r *fakeScoreRepo) UpdatePoints(ctx context.Context, id int64, points float64) error {
	if s, ok := r.items[id]; ok {
		s.Points = points
	}
	return nil
}
func (r *fakeScoreRepo) SumByStudent(ctx context.Context, studentID int64) (float64, error) {
	sum := 0.0
	for _, s := range r.items {
		if s.StudentID == studentID {
			sum += s.Points
		}
	}
	return sum, nil
}

type fakeAttendanceRepo struct {
	items map[int64]*schema.AttendanceRecord
}

func newFakeAttendanceRepo(records ...*schema.AttendanceRecord) *fakeAttendanceRepo {
	m := make(map[int64]*schema.AttendanceRecord)
	for _, rec := range records {
		copy := *rec
		m[rec.ID] = &copy
	}
	return &fakeAttendanceRepo{items: m}
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id int64) (*schema.AttendanceRecord, error) {
	if rec, ok := r.items[id]; ok {
		copy := *rec
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeAttendanceRepo) GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.AttendanceRecord, error) {
	out := make([]schema.AttendanceRecord, 0)
	for _, rec := range r.items {
		if rec.StudentID == studentID {
			out = append(out, *rec)
		}
	}
	// 日期降序，与真实仓储一致
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (r *fakeAttendanceRepo) GetByStudentAndDate(ctx context.Context, studentID int64, date string) (*schema.AttendanceRecord, error) {
	for _, rec := range r.items {
		if rec.StudentID == studentID && rec.Date == date {
			copy := *rec
			return &copy, nil
		}
	}
	return nil, nil
}
func (r *fakeAttendanceRepo) CountPresent(ctx context.Context, studentID int64) (int64, error) {
	var n int64
	for _, rec := range r.items {
		if rec.StudentID == studentID && rec.Status == schema.AttendancePresent {
			n++
		}
	}
	return n, nil
}
func (r *fakeAttendanceRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if rec, ok := r.items[id]; ok {
		rec.Status = status
	}
	return nil
}

type fakeHomeworkRepo struct {
	items map[int64]*schema.HomeworkRecord
}

func newFakeHomeworkRepo(records ...*schema.HomeworkRecord) *fakeHomeworkRepo {
	m := make(map[int64]*schema.HomeworkRecord)
	for _, rec := range records {
		copy := *rec
		m[rec.ID] = &copy
	}
	return &fakeHomeworkRepo{items: m}
}

func (r *fakeHomeworkRepo) GetByID(ctx context.Context, id int64) (*schema.HomeworkRecord, error) {
	if rec, ok := r.items[id]; ok {
		copy := *rec
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeHomeworkRepo) GetByStudent(ctx context.Context, studentID int64) ([]schema.HomeworkRecord, error) {
	out := make([]schema.HomeworkRecord, 0)
	for _, rec := range r.items {
		if rec.StudentID == studentID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
func (r *fakeHomeworkRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if rec, ok := r.items[id]; ok {
		rec.Status = status
	}
	return nil
}

type fakeIncidentRepo struct {
	items []schema.BehaviorIncident // 按日期降序排好
}

func (r *fakeIncidentRepo) GetRecentByStudent(ctx context.Context, studentID int64, limit int) ([]schema.BehaviorIncident, error) {
	out := make([]schema.BehaviorIncident, 0)
	for _, inc := range r.items {
		if inc.StudentID == studentID {
			out = append(out, inc)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
func (r *fakeIncidentRepo) GetByStudentInMonth(ctx context.Context, studentID int64, month string) ([]schema.BehaviorIncident, error) {
	out := make([]schema.BehaviorIncident, 0)
	for _, inc := range r.items {
		if inc.StudentID == studentID && len(inc.Date) >= 7 && inc.Date[:7] == month {
			out = append(out, inc)
		}
	}
	return out, nil
}

type fakeIndicatorRepo struct {
	items  []schema.IndicatorRecord
	nextID int64
}

func (r *fakeIndicatorRepo) Create(ctx context.Context, rec *schema.IndicatorRecord) error {
	r.nextID++
	rec.ID = r.nextID
	r.items = append(r.items, *rec)
	return nil
}
func (r *fakeIndicatorRepo) GetLatest(ctx context.Context, studentID int64, category string) (*schema.IndicatorRecord, error) {
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].StudentID == studentID && r.items[i].Category == category {
			copy := r.items[i]
			return &copy, nil
		}
	}
	return nil, nil
}
func (r *fakeIndicatorRepo) GetLastValues(ctx context.Context, studentID int64, category string, limit int) ([]int, error) {
	all := make([]int, 0)
	for _, rec := range r.items {
		if rec.StudentID == studentID && rec.Category == category {
			all = append(all, rec.IndicatorValue)
		}
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
func (r *fakeIndicatorRepo) GetLatestPerCategory(ctx context.Context, studentID int64) (map[string]int, error) {
	out := make(map[string]int)
	for _, rec := range r.items {
		if rec.StudentID == studentID {
			out[rec.Category] = rec.Cumulative
		}
	}
	return out, nil
}
func (r *fakeIndicatorRepo) GetByStudent(ctx context.Context, studentID int64) ([]schema.IndicatorRecord, error) {
	out := make([]schema.IndicatorRecord, 0)
	for _, rec := range r.items {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}
func (r *fakeIndicatorRepo) DeleteByStudent(ctx context.Context, studentID int64) error {
	kept := r.items[:0]
	for _, rec := range r.items {
		if rec.StudentID != studentID {
			kept = append(kept, rec)
		}
	}
	r.items = kept
	return nil
}

type fakeLedgerRepo struct {
	items map[int64]*schema.PointsLedgerEntry
}

func newFakeLedgerRepo(entries ...*schema.PointsLedgerEntry) *fakeLedgerRepo {
	m := make(map[int64]*schema.PointsLedgerEntry)
	for _, e := range entries {
		copy := *e
		m[e.StudentID] = &copy
	}
	return &fakeLedgerRepo{items: m}
}

func (r *fakeLedgerRepo) Get(ctx context.Context, studentID int64) (*schema.PointsLedgerEntry, error) {
	if e, ok := r.items[studentID]; ok {
		copy := *e
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeLedgerRepo) Upsert(ctx context.Context, entry *schema.PointsLedgerEntry) error {
	copy := *entry
	r.items[entry.StudentID] = &copy
	return nil
}
func (r *fakeLedgerRepo) GetByStudentIDs(ctx context.Context, ids []int64) ([]schema.PointsLedgerEntry, error) {
	out := make([]schema.PointsLedgerEntry, 0)
	for _, id := range ids {
		if e, ok := r.items[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeSnapshotRepo struct {
	items map[string]*schema.RankingSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{items: make(map[string]*schema.RankingSnapshot)}
}

func (r *fakeSnapshotRepo) Create(ctx context.Context, snap *schema.RankingSnapshot) error {
	copy := *snap
	r.items[snap.AsOfDate] = &copy
	return nil
}
func (r *fakeSnapshotRepo) GetByDate(ctx context.Context, date string) (*schema.RankingSnapshot, error) {
	if s, ok := r.items[date]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeSnapshotRepo) List(ctx context.Context, limit int) ([]schema.RankingSnapshot, error) {
	out := make([]schema.RankingSnapshot, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AsOfDate > out[j].AsOfDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (r *fakeSnapshotRepo) Prune(ctx context.Context, keep int) error {
	if keep <= 0 || len(r.items) <= keep {
		return nil
	}
	dates := make([]string, 0, len(r.items))
	for d := range r.items {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	for _, d := range dates[keep:] {
		delete(r.items, d)
	}
	return nil
}

type fakeTargetRepo struct {
	items  []schema.Target
	nextID int64
}

func (r *fakeTargetRepo) Create(ctx context.Context, t *schema.Target) error {
	r.nextID++
	t.ID = r.nextID
	r.items = append(r.items, *t)
	return nil
}
func (r *fakeTargetRepo) GetActiveByCategory(ctx context.Context, studentID int64, category string) ([]schema.Target, error) {
	out := make([]schema.Target, 0)
	for _, t := range r.items {
		if t.StudentID == studentID && t.Category == category && !t.Achieved {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetValue < out[j].TargetValue })
	return out, nil
}
func (r *fakeTargetRepo) GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Target, error) {
	out := make([]schema.Target, 0)
	for _, t := range r.items {
		if t.StudentID == studentID && !t.Achieved {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetValue < out[j].TargetValue })
	return out, nil
}
func (r *fakeTargetRepo) ExistsActiveAtValue(ctx context.Context, studentID int64, category string, value int) (bool, error) {
	for _, t := range r.items {
		if t.StudentID == studentID && t.Category == category && t.TargetValue == value && !t.Achieved {
			return true, nil
		}
	}
	return false, nil
}
func (r *fakeTargetRepo) MarkAchieved(ctx context.Context, id int64, at time.Time) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Achieved = true
			r.items[i].AchievedAt = &at
		}
	}
	return nil
}
func (r *fakeTargetRepo) CountActiveByStudent(ctx context.Context, studentID int64) (int64, error) {
	var n int64
	for _, t := range r.items {
		if t.StudentID == studentID && !t.Achieved {
			n++
		}
	}
	return n, nil
}

type fakeStreakRepo struct {
	items map[int64]*schema.AchievementStreak
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{items: make(map[int64]*schema.AchievementStreak)}
}

func (r *fakeStreakRepo) Get(ctx context.Context, studentID int64) (*schema.AchievementStreak, error) {
	if s, ok := r.items[studentID]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}
func (r *fakeStreakRepo) Upsert(ctx context.Context, streak *schema.AchievementStreak) error {
	copy := *streak
	r.items[streak.StudentID] = &copy
	return nil
}

type fakeWarningRepo struct {
	items  []schema.Warning
	nextID int64
}

func (r *fakeWarningRepo) Create(ctx context.Context, w *schema.Warning) error {
	r.nextID++
	w.ID = r.nextID
	r.items = append(r.items, *w)
	return nil
}
func (r *fakeWarningRepo) GetActiveByStudentAndType(ctx context.Context, studentID int64, warningType string) ([]schema.Warning, error) {
	out := make([]schema.Warning, 0)
	for _, w := range r.items {
		if w.StudentID == studentID && w.WarningType == warningType && w.Active {
			out = append(out, w)
		}
	}
	return out, nil
}
func (r *fakeWarningRepo) GetActiveByStudent(ctx context.Context, studentID int64) ([]schema.Warning, error) {
	out := make([]schema.Warning, 0)
	for _, w := range r.items {
		if w.StudentID == studentID && w.Active {
			out = append(out, w)
		}
	}
	return out, nil
}
func (r *fakeWarningRepo) Resolve(ctx context.Context, id int64, at time.Time) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Active = false
			r.items[i].ResolvedAt = &at
		}
	}
	return nil
}

// eventRecorder 订阅若干事件类型并记录收到的事件
type eventRecorder struct {
	events []eventbus.Event
}

func (r *eventRecorder) record(bus *eventbus.Bus, types ...string) {
	for _, typ := range types {
		bus.Subscribe(typ, func(ctx context.Context, evt eventbus.Event) error {
			r.events = append(r.events, evt)
			return nil
		})
	}
}

func (r *eventRecorder) ofType(typ string) []eventbus.Event {
	out := make([]eventbus.Event, 0)
	for _, evt := range r.events {
		if evt.EventType() == typ {
			out = append(out, evt)
		}
	}
	return out
}
