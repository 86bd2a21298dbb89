package schema

import "time"

// Target 回升目标：指标下滑后为学生设置的待收复指标值
// 只发生 pending → achieved 一次性迁移，永不自动删除
type Target struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   int64      `gorm:"index:idx_target_student_category" json:"student_id"`
	Category    string     `gorm:"size:50;index:idx_target_student_category" json:"category"`
	TargetValue int        `json:"target_value"` // 需收复的累计指标值
	Achieved    bool       `gorm:"index;default:false" json:"achieved"`
	AchievedAt  *time.Time `json:"achieved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Target) TableName() string {
	return "targets"
}

// AchievementStreak 连续达标记录，每名学生一行
// TotalPointsEarned 为历史累计奖励，只增不减；CurrentStreak 在任何下滑时归零
type AchievementStreak struct {
	StudentID         int64      `gorm:"primaryKey" json:"student_id"`
	CurrentStreak     int        `gorm:"default:0" json:"current_streak"`
	TotalPointsEarned int        `gorm:"default:0" json:"total_points_earned"`
	LastAchievementAt *time.Time `json:"last_achievement_at,omitempty"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (AchievementStreak) TableName() string {
	return "achievement_streaks"
}
