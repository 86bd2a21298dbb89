package schema

import "time"

// 作业完成状态
const (
	HomeworkDone      = "done"
	HomeworkPartially = "partially_done"
	HomeworkNotDone   = "not_done"
)

// HomeworkRecord 作业完成记录
type HomeworkRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID int64     `gorm:"index" json:"student_id"`
	Date      string    `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	Status    string    `gorm:"size:20" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (HomeworkRecord) TableName() string {
	return "homework_records"
}

// HomeworkPoints 各完成状态对应的积分
func HomeworkPoints(status string) int {
	switch status {
	case HomeworkDone:
		return 3
	case HomeworkPartially:
		return 1
	default:
		return 0
	}
}

// ValidHomeworkStatus 判断作业状态是否合法
func ValidHomeworkStatus(s string) bool {
	switch s {
	case HomeworkDone, HomeworkPartially, HomeworkNotDone:
		return true
	}
	return false
}
