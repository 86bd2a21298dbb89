package schema

import "time"

// PointsLedgerEntry 积分台账，每名学生一行，由重算原地覆盖
type PointsLedgerEntry struct {
	StudentID        int64     `gorm:"primaryKey" json:"student_id"`
	QuizPoints       float64   `gorm:"default:0" json:"quiz_points"`       // 测验得分总和
	AttendancePoints int       `gorm:"default:0" json:"attendance_points"` // 出勤次数
	HomeworkPoints   int       `gorm:"default:0" json:"homework_points"`   // 作业积分（done=3 / partially=1 / not=0）
	TargetPoints     int       `gorm:"default:0" json:"target_points"`     // 连续达标累计奖励
	TotalPoints      float64   `gorm:"index;default:0" json:"total_points"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (PointsLedgerEntry) TableName() string {
	return "points_ledger"
}

// RecomputeTotal 由四个分量重新求和
func (e *PointsLedgerEntry) RecomputeTotal() {
	e.TotalPoints = e.QuizPoints + float64(e.AttendancePoints) + float64(e.HomeworkPoints) + float64(e.TargetPoints)
}
