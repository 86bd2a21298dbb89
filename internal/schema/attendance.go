package schema

import "time"

// 考勤状态
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// AttendanceRecord 考勤记录，每名学生每天一条
type AttendanceRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID int64     `gorm:"uniqueIndex:uniq_attendance_student_date" json:"student_id"`
	Date      string    `gorm:"size:10;index;uniqueIndex:uniq_attendance_student_date" json:"date"` // YYYY-MM-DD
	Status    string    `gorm:"size:20;index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// ValidAttendanceStatus 判断考勤状态是否合法
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}
