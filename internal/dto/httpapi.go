package dto

// 注意：本包用于承载“对外契约”的 DTO（与 HTTP API 保持稳定）。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

type RankedStudentDTO struct {
	StudentID        int64   `json:"student_id"`
	Name             string  `json:"name"`
	Rank             int     `json:"rank"`
	TotalPoints      float64 `json:"total_points"`
	QuizPoints       float64 `json:"quiz_points"`
	AttendancePoints int     `json:"attendance_points"`
	HomeworkPoints   int     `json:"homework_points"`
	TargetPoints     int     `json:"target_points"`
}

type ClassAverageDTO struct {
	Average float64 `json:"average"`
}

type IndicatorDTO struct {
	Category   string `json:"category"`
	Cumulative int    `json:"cumulative"`
	Trend      string `json:"trend"`
}

type IndicatorHistoryEntryDTO struct {
	QuizID         int64  `json:"quiz_id"`
	Category       string `json:"category"`
	IndicatorValue int    `json:"indicator_value"`
	Cumulative     int    `json:"cumulative"`
	ComputedAt     int64  `json:"computed_at"`
}

type StudentIndicatorsDTO struct {
	StudentID      int64          `json:"student_id"`
	Indicators     []IndicatorDTO `json:"indicators"`
	WeakCategories []string       `json:"weak_categories"`
}

type TargetDTO struct {
	ID          int64  `json:"id"`
	Category    string `json:"category"`
	TargetValue int    `json:"target_value"`
	Achieved    bool   `json:"achieved"`
	AchievedAt  int64  `json:"achieved_at,omitempty"`
}

type StudentTargetsDTO struct {
	StudentID     int64       `json:"student_id"`
	Targets       []TargetDTO `json:"targets"`
	CurrentStreak int         `json:"current_streak"`
	Guidance      string      `json:"guidance"`
}

type WarningDTO struct {
	ID          int64  `json:"id"`
	WarningType string `json:"warning_type"`
	Reason      string `json:"reason"`
	CreatedAt   int64  `json:"created_at"`
}

type SnapshotDTO struct {
	AsOfDate   string `json:"as_of_date"`
	EntryCount int    `json:"entry_count"`
}

type SnapshotCompareEntryDTO struct {
	StudentID int64 `json:"student_id"`
	RankDelta int   `json:"rank_delta"` // 旧名次减新名次，正数表示进步
}

type SubmitRequestDTO struct {
	RequestType string         `json:"request_type"`
	RequesterID string         `json:"requester_id"`
	Payload     map[string]any `json:"payload"`
}

type ReviewRequestDTO struct {
	RequestID  string `json:"request_id"`
	ReviewerID string `json:"reviewer_id"`
	Notes      string `json:"notes"`
}

type UpdateRequestDTO struct {
	ID          string `json:"id"`
	RequestType string `json:"request_type"`
	EntityKind  string `json:"entity_kind"`
	EntityID    int64  `json:"entity_id"`
	RequesterID string `json:"requester_id"`
	Status      string `json:"status"`
	ReviewerID  string `json:"reviewer_id,omitempty"`
	ReviewNotes string `json:"review_notes,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}
