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

// DefaultGuidance 没有待完成目标时的固定引导语
const DefaultGuidance = "当前没有待完成的目标，继续保持！"

// TargetService 目标与连胜引擎
// 指标下滑时按整数值堆叠回升目标；指标回升时按值升序逐个判定达成，
// 连胜随达成递增，奖励取达成时刻递增后的连胜值
type TargetService struct {
	targetRepo TargetRepository
	streakRepo StreakRepository
	bus        *eventbus.Bus
}

// NewTargetService 创建目标引擎
func NewTargetService(targetRepo TargetRepository, streakRepo StreakRepository, bus *eventbus.Bus) *TargetService {
	return &TargetService{
		targetRepo: targetRepo,
		streakRepo: streakRepo,
		bus:        bus,
	}
}

// OnDegradation 响应累计指标下滑
// previous <= current 时不动作；否则连胜归零（保留历史累计奖励），
// 并为 (current, previous] 区间内每个尚无未达成目标的整数值各建一个目标：
// 从 10 跌到 7 会堆叠 8、9、10 三个目标
func (s *TargetService) OnDegradation(ctx context.Context, studentID int64, category string, previous, current int) error {
	if previous <= current {
		return nil
	}

	streak, err := s.loadStreak(ctx, studentID)
	if err != nil {
		return err
	}
	streak.CurrentStreak = 0
	if err := s.streakRepo.Upsert(ctx, streak); err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, eventbus.StreakUpdated{
		StudentID:         studentID,
		CurrentStreak:     0,
		TotalPointsEarned: streak.TotalPointsEarned,
	}); err != nil {
		return err
	}

	created := 0
	for value := current + 1; value <= previous; value++ {
		exists, err := s.targetRepo.ExistsActiveAtValue(ctx, studentID, category, value)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		target := &schema.Target{
			StudentID:   studentID,
			Category:    category,
			TargetValue: value,
		}
		if err := s.targetRepo.Create(ctx, target); err != nil {
			return err
		}
		created++
		if err := s.bus.Publish(ctx, eventbus.TargetCreated{
			StudentID:   studentID,
			Category:    category,
			TargetValue: value,
		}); err != nil {
			return err
		}
	}

	slog.Info("指标下滑，已堆叠回升目标",
		"student", studentID, "category", category,
		"from", previous, "to", current, "created", created)
	return nil
}

// OnIndicatorChange 响应累计指标变化，判定目标达成
// 目标值 ≤ newIndicator 的未达成目标按值升序逐个达成；
// 每次达成连胜加一，奖励为递增后的连胜值：连胜 0 起的三连达成依次得 1、2、3 分
func (s *TargetService) OnIndicatorChange(ctx context.Context, studentID int64, category string, newIndicator int) error {
	targets, err := s.targetRepo.GetActiveByCategory(ctx, studentID, category)
	if err != nil {
		return err
	}

	var streak *schema.AchievementStreak
	for _, target := range targets {
		if target.TargetValue > newIndicator {
			break
		}
		if streak == nil {
			if streak, err = s.loadStreak(ctx, studentID); err != nil {
				return err
			}
		}

		now := time.Now()
		if err := s.targetRepo.MarkAchieved(ctx, target.ID, now); err != nil {
			return err
		}

		streak.CurrentStreak++
		streak.TotalPointsEarned += streak.CurrentStreak
		streak.LastAchievementAt = &now
		if err := s.streakRepo.Upsert(ctx, streak); err != nil {
			return err
		}

		if err := s.bus.Publish(ctx, eventbus.TargetAchieved{
			StudentID:   studentID,
			Category:    category,
			TargetValue: target.TargetValue,
			Streak:      streak.CurrentStreak,
		}); err != nil {
			return err
		}
		if err := s.bus.Publish(ctx, eventbus.StreakUpdated{
			StudentID:         studentID,
			CurrentStreak:     streak.CurrentStreak,
			TotalPointsEarned: streak.TotalPointsEarned,
		}); err != nil {
			return err
		}
	}

	return nil
}

// HasActiveTargets 学生是否有待完成目标
func (s *TargetService) HasActiveTargets(ctx context.Context, studentID int64) (bool, error) {
	count, err := s.targetRepo.CountActiveByStudent(ctx, studentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Guidance 生成待完成目标的引导文案，没有目标时给固定引导语
func (s *TargetService) Guidance(ctx context.Context, studentID int64) (string, error) {
	targets, err := s.targetRepo.GetActiveByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	if len(targets) == 0 {
		return DefaultGuidance, nil
	}

	var b strings.Builder
	b.WriteString("待收复目标：")
	for i, t := range targets {
		if i > 0 {
			b.WriteString("；")
		}
		fmt.Fprintf(&b, "%s 回到 %d", t.Category, t.TargetValue)
	}
	return b.String(), nil
}

func (s *TargetService) loadStreak(ctx context.Context, studentID int64) (*schema.AchievementStreak, error) {
	streak, err := s.streakRepo.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		streak = &schema.AchievementStreak{StudentID: studentID}
	}
	return streak, nil
}
