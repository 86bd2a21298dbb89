package schema

import "time"

// 预警类型
const (
	WarningConsecutiveAbsence = "consecutive_absence"
	WarningArchivedRisk       = "archived_risk"
	WarningBehavioral         = "behavioral"
)

// Warning 风险预警，同一学生可同时存在不同类型的活跃预警
type Warning struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID   int64      `gorm:"index:idx_warning_student_type" json:"student_id"`
	WarningType string     `gorm:"size:30;index:idx_warning_student_type" json:"warning_type"`
	Reason      string     `gorm:"type:text" json:"reason"`
	Active      bool       `gorm:"index;default:true" json:"active"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Warning) TableName() string {
	return "warnings"
}
