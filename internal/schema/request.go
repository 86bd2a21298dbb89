package schema

import "time"

// 更新请求状态
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// 更新请求类型，决定载荷的解码方式与审批后的级联范围
const (
	RequestQuizScoreCorrection  = "quiz_score_correction"
	RequestAttendanceCorrection = "attendance_correction"
	RequestHomeworkCorrection   = "homework_correction"
)

// UpdateRequest 数据订正请求
// 同一目标实体同时至多存在一条 pending 请求
type UpdateRequest struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"` // UUID
	RequestType string     `gorm:"size:40;index" json:"request_type"`
	EntityKind  string     `gorm:"size:30;index:idx_request_entity" json:"entity_kind"` // quiz_score, attendance_record, homework_record
	EntityID    int64      `gorm:"index:idx_request_entity" json:"entity_id"`
	Payload     JSONMap    `gorm:"type:text" json:"payload"` // 按 RequestType 解码的提案内容
	RequesterID string     `gorm:"size:64" json:"requester_id"`
	Status      string     `gorm:"size:20;index" json:"status"`
	ReviewerID  string     `gorm:"size:64" json:"reviewer_id"`
	ReviewNotes string     `gorm:"type:text" json:"review_notes"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (UpdateRequest) TableName() string {
	return "update_requests"
}
