package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

func newIndicatorFixture() (*fakeQuizRepo, *fakeScoreRepo, *fakeIndicatorRepo, *eventbus.Bus, *IndicatorService) {
	quizRepo := newFakeQuizRepo()
	scoreRepo := newFakeScoreRepo()
	indicatorRepo := &fakeIndicatorRepo{}
	bus := eventbus.New()
	svc := NewIndicatorService(quizRepo, scoreRepo, indicatorRepo, bus)
	return quizRepo, scoreRepo, indicatorRepo, bus, svc
}

func TestComputeForQuizFirstRecord(t *testing.T) {
	quizRepo, scoreRepo, indicatorRepo, bus, svc := newIndicatorFixture()

	quizRepo.questions[1] = []schema.QuizQuestion{
		{ID: 1, QuizID: 1, Category: "nahw", MaxPoints: 2},
		{ID: 2, QuizID: 1, Category: "nahw", MaxPoints: 1},
		{ID: 3, QuizID: 1, Category: "adab", MaxPoints: 2},
	}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 1, QuestionID: 1, StudentID: 7, Points: 1.5}
	scoreRepo.items[2] = &schema.QuizScore{ID: 2, QuizID: 1, QuestionID: 2, StudentID: 7, Points: 0.3}
	scoreRepo.items[3] = &schema.QuizScore{ID: 3, QuizID: 1, QuestionID: 3, StudentID: 7, Points: 2}

	rec := &eventRecorder{}
	rec.record(bus, eventbus.TypeIndicatorComputed, eventbus.TypeImprovementDetected, eventbus.TypeDegradationDetected)

	if err := svc.ComputeForQuiz(context.Background(), 1, 7); err != nil {
		t.Fatalf("ComputeForQuiz: %v", err)
	}

	if len(indicatorRepo.items) != 2 {
		t.Fatalf("期望 2 条指标记录，实际 %d", len(indicatorRepo.items))
	}
	// 类别按名称排序：adab 在前
	adab, nahw := indicatorRepo.items[0], indicatorRepo.items[1]
	if adab.Category != "adab" || adab.IndicatorValue != 2 || adab.Cumulative != 2 {
		t.Errorf("adab 记录错误: %+v", adab)
	}
	if nahw.Category != "nahw" || nahw.CorrectCount != 2 || nahw.WrongCount != 1 ||
		nahw.IndicatorValue != 1 || nahw.Cumulative != 1 {
		t.Errorf("nahw 记录错误: %+v", nahw)
	}

	if got := len(rec.ofType(eventbus.TypeIndicatorComputed)); got != 2 {
		t.Errorf("期望 2 个 IndicatorComputed 事件，实际 %d", got)
	}
	// 首条记录不发升降事件
	if got := len(rec.ofType(eventbus.TypeImprovementDetected)) + len(rec.ofType(eventbus.TypeDegradationDetected)); got != 0 {
		t.Errorf("首条记录不应有升降事件，实际 %d", got)
	}
}

func TestComputeForQuizDetectsDegradation(t *testing.T) {
	quizRepo, scoreRepo, indicatorRepo, bus, svc := newIndicatorFixture()

	indicatorRepo.items = []schema.IndicatorRecord{
		{ID: 1, StudentID: 7, Category: "nahw", QuizID: 1, IndicatorValue: 5, Cumulative: 5},
	}
	indicatorRepo.nextID = 1

	quizRepo.questions[2] = []schema.QuizQuestion{
		{ID: 10, QuizID: 2, Category: "nahw", MaxPoints: 3},
	}
	scoreRepo.items[11] = &schema.QuizScore{ID: 11, QuizID: 2, QuestionID: 10, StudentID: 7, Points: 1}

	rec := &eventRecorder{}
	rec.record(bus, eventbus.TypeDegradationDetected, eventbus.TypeImprovementDetected)

	if err := svc.ComputeForQuiz(context.Background(), 2, 7); err != nil {
		t.Fatalf("ComputeForQuiz: %v", err)
	}

	// 本场指标 1 − 2 = −1，累计从 5 跌到 4
	degraded := rec.ofType(eventbus.TypeDegradationDetected)
	if len(degraded) != 1 {
		t.Fatalf("期望 1 个下滑事件，实际 %d", len(degraded))
	}
	ev := degraded[0].(eventbus.DegradationDetected)
	if ev.Previous != 5 || ev.Current != 4 || ev.Amount != 1 {
		t.Errorf("下滑事件字段错误: %+v", ev)
	}
	if len(rec.ofType(eventbus.TypeImprovementDetected)) != 0 {
		t.Error("不应有回升事件")
	}
}

func TestComputeForQuizValidation(t *testing.T) {
	quizRepo, scoreRepo, _, _, svc := newIndicatorFixture()

	// 没有题目
	err := svc.ComputeForQuiz(context.Background(), 9, 7)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("无题目应返回 ErrValidation，实际 %v", err)
	}

	// 有题目但该生没有得分记录
	quizRepo.questions[9] = []schema.QuizQuestion{{ID: 1, QuizID: 9, Category: "nahw", MaxPoints: 2}}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 9, QuestionID: 1, StudentID: 99, Points: 1}
	err = svc.ComputeForQuiz(context.Background(), 9, 7)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("无得分应返回 ErrValidation，实际 %v", err)
	}
}

func TestRecalculateAllReplaysInOrder(t *testing.T) {
	quizRepo, scoreRepo, indicatorRepo, _, svc := newIndicatorFixture()

	// 两场测验，回放按授课顺序
	quizRepo.scored = []schema.Quiz{
		{ID: 1, Position: 1},
		{ID: 2, Position: 2},
	}
	quizRepo.questions[1] = []schema.QuizQuestion{{ID: 1, QuizID: 1, Category: "nahw", MaxPoints: 2}}
	quizRepo.questions[2] = []schema.QuizQuestion{{ID: 2, QuizID: 2, Category: "nahw", MaxPoints: 2}}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 1, QuestionID: 1, StudentID: 7, Points: 2}
	scoreRepo.items[2] = &schema.QuizScore{ID: 2, QuizID: 2, QuestionID: 2, StudentID: 7, Points: 1}

	// 留一条旧记录，重算必须先清掉
	indicatorRepo.items = []schema.IndicatorRecord{
		{ID: 99, StudentID: 7, Category: "nahw", QuizID: 1, IndicatorValue: 9, Cumulative: 9},
	}
	indicatorRepo.nextID = 99

	if err := svc.RecalculateAll(context.Background(), 7); err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}

	if len(indicatorRepo.items) != 2 {
		t.Fatalf("期望 2 条记录，实际 %d", len(indicatorRepo.items))
	}
	// 第一场 2−0=2；第二场 1−1=0，累计仍为 2
	if indicatorRepo.items[0].Cumulative != 2 {
		t.Errorf("第一场累计应为 2，实际 %d", indicatorRepo.items[0].Cumulative)
	}
	if indicatorRepo.items[1].IndicatorValue != 0 || indicatorRepo.items[1].Cumulative != 2 {
		t.Errorf("第二场记录错误: %+v", indicatorRepo.items[1])
	}
}

func TestTrend(t *testing.T) {
	_, _, indicatorRepo, _, svc := newIndicatorFixture()

	cases := []struct {
		name   string
		values []int
		want   string
	}{
		{"不足三条视为稳定", []int{1, 5}, TrendStable},
		{"末减首为正", []int{1, 0, 3}, TrendImproving},
		{"末减首为负", []int{3, 5, 1}, TrendDegrading},
		{"末首相等", []int{2, 9, 2}, TrendStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			indicatorRepo.items = nil
			for _, v := range tc.values {
				indicatorRepo.items = append(indicatorRepo.items, schema.IndicatorRecord{
					StudentID: 7, Category: "nahw", IndicatorValue: v,
				})
			}
			got, err := svc.Trend(context.Background(), 7, "nahw")
			if err != nil {
				t.Fatalf("Trend: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestWeakCategories(t *testing.T) {
	_, _, indicatorRepo, _, svc := newIndicatorFixture()

	indicatorRepo.items = []schema.IndicatorRecord{
		{StudentID: 7, Category: "nahw", Cumulative: 6},
		{StudentID: 7, Category: "adab", Cumulative: 2},
		{StudentID: 7, Category: "sarf", Cumulative: 4},
	}

	// 均值 4，严格低于均值的只有 adab
	weak, err := svc.WeakCategories(context.Background(), 7)
	if err != nil {
		t.Fatalf("WeakCategories: %v", err)
	}
	if len(weak) != 1 || weak[0] != "adab" {
		t.Errorf("期望 [adab]，实际 %v", weak)
	}

	indicatorRepo.items = nil
	weak, err = svc.WeakCategories(context.Background(), 7)
	if err != nil {
		t.Fatalf("WeakCategories: %v", err)
	}
	if len(weak) != 0 {
		t.Errorf("无记录时应为空，实际 %v", weak)
	}
}
