package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/yuqie6/GradeMirror/internal/eventbus"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

// 趋势分类
const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// 趋势判定最多回看的指标条数（不足 3 条视为证据不足）
const trendWindow = 5

// IndicatorService 表现指标引擎
// 把测验原始得分折算为按类别的指标增量与累计指标，并侦测显著变化
type IndicatorService struct {
	quizRepo      QuizRepository
	scoreRepo     ScoreRepository
	indicatorRepo IndicatorRepository
	bus           *eventbus.Bus
}

// NewIndicatorService 创建指标引擎
func NewIndicatorService(
	quizRepo QuizRepository,
	scoreRepo ScoreRepository,
	indicatorRepo IndicatorRepository,
	bus *eventbus.Bus,
) *IndicatorService {
	return &IndicatorService{
		quizRepo:      quizRepo,
		scoreRepo:     scoreRepo,
		indicatorRepo: indicatorRepo,
		bus:           bus,
	}
}

// ComputeForQuiz 计算学生在一次测验上触及的全部类别指标
// 每个触及的类别持久化一条记录并发布 IndicatorComputed；
// 已有累计值时另按升降发布 ImprovementDetected / DegradationDetected，
// 首条记录不发升降事件
func (s *IndicatorService) ComputeForQuiz(ctx context.Context, quizID, studentID int64) error {
	questions, err := s.quizRepo.GetQuestions(ctx, quizID)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("%w: 测验 %d 没有题目", ErrValidation, quizID)
	}

	scores, err := s.scoreRepo.GetByQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		return fmt.Errorf("%w: 学生 %d 在测验 %d 没有得分记录", ErrValidation, studentID, quizID)
	}

	tallies := TallyByCategory(questions, scores)

	// 类别按名称排序，保证回放与事件顺序确定
	categories := make([]string, 0, len(tallies))
	for c := range tallies {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		correct, wrong, indicator := IndicatorFromTally(tallies[category])

		prev, err := s.indicatorRepo.GetLatest(ctx, studentID, category)
		if err != nil {
			return err
		}

		cumulative := indicator
		if prev != nil {
			cumulative += prev.Cumulative
		}

		rec := &schema.IndicatorRecord{
			StudentID:      studentID,
			Category:       category,
			QuizID:         quizID,
			CorrectCount:   correct,
			WrongCount:     wrong,
			IndicatorValue: indicator,
			Cumulative:     cumulative,
		}
		if err := s.indicatorRepo.Create(ctx, rec); err != nil {
			return err
		}

		if err := s.bus.Publish(ctx, eventbus.IndicatorComputed{
			StudentID:      studentID,
			Category:       category,
			QuizID:         quizID,
			IndicatorValue: indicator,
			Cumulative:     cumulative,
		}); err != nil {
			return err
		}

		if prev == nil {
			continue
		}
		switch {
		case cumulative > prev.Cumulative:
			if err := s.bus.Publish(ctx, eventbus.ImprovementDetected{
				StudentID: studentID,
				Category:  category,
				Previous:  prev.Cumulative,
				Current:   cumulative,
				Amount:    cumulative - prev.Cumulative,
			}); err != nil {
				return err
			}
		case cumulative < prev.Cumulative:
			slog.Info("侦测到指标下滑",
				"student", studentID, "category", category,
				"previous", prev.Cumulative, "current", cumulative)
			if err := s.bus.Publish(ctx, eventbus.DegradationDetected{
				StudentID: studentID,
				Category:  category,
				Previous:  prev.Cumulative,
				Current:   cumulative,
				Amount:    prev.Cumulative - cumulative,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// RecalculateAll 历史订正后的全量重算
// 删除学生全部指标记录，按测验授课顺序逐场重放 ComputeForQuiz，
// 从零重建累计链而不是就地修补
func (s *IndicatorService) RecalculateAll(ctx context.Context, studentID int64) error {
	if err := s.indicatorRepo.DeleteByStudent(ctx, studentID); err != nil {
		return err
	}

	quizzes, err := s.quizRepo.GetScoredByStudent(ctx, studentID)
	if err != nil {
		return err
	}

	for _, quiz := range quizzes {
		if err := s.ComputeForQuiz(ctx, quiz.ID, studentID); err != nil {
			return fmt.Errorf("重放测验 %d 失败: %w", quiz.ID, err)
		}
	}

	slog.Info("指标全量重算完成", "student", studentID, "quizzes", len(quizzes))
	return nil
}

// Trend 根据最近的指标值（非累计）分类趋势
// 取末值与首值之差的符号：正为 Improving，负为 Degrading，零为 Stable；
// 可观测值不足 3 条时视为 Stable
func (s *IndicatorService) Trend(ctx context.Context, studentID int64, category string) (string, error) {
	values, err := s.indicatorRepo.GetLastValues(ctx, studentID, category, trendWindow)
	if err != nil {
		return "", err
	}
	if len(values) < 3 {
		return TrendStable, nil
	}

	diff := values[len(values)-1] - values[0]
	switch {
	case diff > 0:
		return TrendImproving, nil
	case diff < 0:
		return TrendDegrading, nil
	default:
		return TrendStable, nil
	}
}

// WeakCategories 返回累计指标严格低于该生各类别均值的类别
func (s *IndicatorService) WeakCategories(ctx context.Context, studentID int64) ([]string, error) {
	latest, err := s.indicatorRepo.GetLatestPerCategory(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, nil
	}

	sum := 0
	for _, v := range latest {
		sum += v
	}
	mean := float64(sum) / float64(len(latest))

	weak := make([]string, 0)
	for category, v := range latest {
		if float64(v) < mean {
			weak = append(weak, category)
		}
	}
	sort.Strings(weak)
	return weak, nil
}
