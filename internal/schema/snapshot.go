package schema

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// SnapshotEntry 快照中的单个名次
type SnapshotEntry struct {
	StudentID   int64   `json:"student_id"`
	Rank        int     `json:"rank"`
	TotalPoints float64 `json:"total_points"`
}

// SnapshotEntries 以 JSON 文本存储的名次列表
type SnapshotEntries []SnapshotEntry

// Value 实现 driver.Valuer 接口
func (s SnapshotEntries) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *SnapshotEntries) Scan(value interface{}) error {
	if value == nil {
		*s = make(SnapshotEntries, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid type for SnapshotEntries")
	}

	return json.Unmarshal(bytes, s)
}

// RankingSnapshot 排名快照，生成后不可修改
type RankingSnapshot struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AsOfDate  string          `gorm:"size:10;uniqueIndex" json:"as_of_date"` // YYYY-MM-DD
	Entries   SnapshotEntries `gorm:"type:text" json:"entries"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (RankingSnapshot) TableName() string {
	return "ranking_snapshots"
}
