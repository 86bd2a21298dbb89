package schema

import "time"

// Student 学生档案
// 数据量级：百级
type Student struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;index" json:"name"`          // 姓名
	Archived     bool      `gorm:"index;default:false" json:"archived"` // 是否已归档（退学/转出）
	RegisteredAt time.Time `gorm:"index" json:"registered_at"`          // 注册时间，参与排名决胜
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Student) TableName() string {
	return "students"
}
