package schema

import "time"

// IndicatorRecord 表现指标记录，按（学生 × 类别 × 测验）各一条
// 历史记录不可修改；订正通过删除后按测验顺序重放重建（见指标引擎）
type IndicatorRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID      int64     `gorm:"index:idx_indicator_student_category" json:"student_id"`
	Category       string    `gorm:"size:50;index:idx_indicator_student_category" json:"category"`
	QuizID         int64     `gorm:"index" json:"quiz_id"`
	CorrectCount   int       `json:"correct_count"`   // 取整后的正向贡献
	WrongCount     int       `json:"wrong_count"`     // 取整后的负向贡献
	IndicatorValue int       `json:"indicator_value"` // correct − wrong
	Cumulative     int       `json:"cumulative"`      // 该（学生, 类别）的累计指标
	ComputedAt     time.Time `gorm:"autoCreateTime" json:"computed_at"`
}

// TableName 指定表名
func (IndicatorRecord) TableName() string {
	return "indicator_records"
}
