package schema

import "time"

// BehaviorIncident 行为事件记录
type BehaviorIncident struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    int64     `gorm:"index" json:"student_id"`
	Date         string    `gorm:"size:10;index" json:"date"`          // YYYY-MM-DD
	IncidentType string    `gorm:"size:50;index" json:"incident_type"` // disruption, tardiness, conflict, ...
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (BehaviorIncident) TableName() string {
	return "behavior_incidents"
}
