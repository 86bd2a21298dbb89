package service

import (
	"math"

	"github.com/yuqie6/GradeMirror/internal/schema"
)

// CategoryTally 单类别的原始正负贡献（取整前的实数和）
type CategoryTally struct {
	Correct float64 // Σ(实得分)
	Wrong   float64 // Σ(满分 − 实得分)
}

// TallyByCategory 按类别汇总一次测验的正负贡献
// 只统计有得分记录的题目；测验未涉及的类别不产生任何记录
func TallyByCategory(questions []schema.QuizQuestion, scores []schema.QuizScore) map[string]CategoryTally {
	byQuestion := make(map[int64]schema.QuizQuestion, len(questions))
	for _, q := range questions {
		byQuestion[q.ID] = q
	}

	tallies := make(map[string]CategoryTally)
	for _, s := range scores {
		q, ok := byQuestion[s.QuestionID]
		if !ok {
			continue
		}
		t := tallies[q.Category]
		t.Correct += s.Points
		t.Wrong += q.MaxPoints - s.Points
		tallies[q.Category] = t
	}
	return tallies
}

// IndicatorFromTally 正负贡献各自独立取整（四舍五入，恰为 .5 时取偶）后相减
// 1.8→2、1.2→1；先取整再相减，与先相减后取整结果不同，顺序不可交换
func IndicatorFromTally(t CategoryTally) (correct, wrong, indicator int) {
	correct = int(math.RoundToEven(t.Correct))
	wrong = int(math.RoundToEven(t.Wrong))
	return correct, wrong, correct - wrong
}
