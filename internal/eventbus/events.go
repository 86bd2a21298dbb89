package eventbus

// 事件类型
const (
	TypeIndicatorComputed   = "indicator.computed"
	TypeImprovementDetected = "indicator.improvement"
	TypeDegradationDetected = "indicator.degradation"
	TypePointsUpdated       = "points.updated"
	TypeTargetCreated       = "target.created"
	TypeTargetAchieved      = "target.achieved"
	TypeStreakUpdated       = "streak.updated"
	TypeWarningRaised       = "warning.raised"
	TypeWarningResolved     = "warning.resolved"
	TypeRequestSubmitted    = "request.submitted"
	TypeRequestApproved     = "request.approved"
	TypeRequestRejected     = "request.rejected"
)

// IndicatorComputed 某（学生, 类别）新增一条指标记录
type IndicatorComputed struct {
	StudentID      int64
	Category       string
	QuizID         int64
	IndicatorValue int
	Cumulative     int
}

func (IndicatorComputed) EventType() string { return TypeIndicatorComputed }

// ImprovementDetected 累计指标上升（首条记录不发）
type ImprovementDetected struct {
	StudentID int64
	Category  string
	Previous  int
	Current   int
	Amount    int // 正数幅度
}

func (ImprovementDetected) EventType() string { return TypeImprovementDetected }

// DegradationDetected 累计指标下滑（首条记录不发）
type DegradationDetected struct {
	StudentID int64
	Category  string
	Previous  int
	Current   int
	Amount    int // 正数幅度
}

func (DegradationDetected) EventType() string { return TypeDegradationDetected }

// PointsUpdated 积分台账已刷新
type PointsUpdated struct {
	StudentID   int64
	TotalPoints float64
}

func (PointsUpdated) EventType() string { return TypePointsUpdated }

// TargetCreated 新建回升目标
type TargetCreated struct {
	StudentID   int64
	Category    string
	TargetValue int
}

func (TargetCreated) EventType() string { return TypeTargetCreated }

// TargetAchieved 目标达成
type TargetAchieved struct {
	StudentID   int64
	Category    string
	TargetValue int
	Streak      int // 达成后的连胜数
}

func (TargetAchieved) EventType() string { return TypeTargetAchieved }

// StreakUpdated 连胜状态变化（归零或递增）
type StreakUpdated struct {
	StudentID         int64
	CurrentStreak     int
	TotalPointsEarned int
}

func (StreakUpdated) EventType() string { return TypeStreakUpdated }

// WarningRaised 新预警
type WarningRaised struct {
	StudentID   int64
	WarningType string
	Reason      string
}

func (WarningRaised) EventType() string { return TypeWarningRaised }

// WarningResolved 预警解除
type WarningResolved struct {
	StudentID   int64
	WarningType string
}

func (WarningResolved) EventType() string { return TypeWarningResolved }

// RequestSubmitted 更新请求已提交
type RequestSubmitted struct {
	RequestID   string
	RequestType string
}

func (RequestSubmitted) EventType() string { return TypeRequestSubmitted }

// RequestApproved 更新请求已批准并生效
type RequestApproved struct {
	RequestID   string
	RequestType string
}

func (RequestApproved) EventType() string { return TypeRequestApproved }

// RequestRejected 更新请求已驳回
type RequestRejected struct {
	RequestID   string
	RequestType string
	Reason      string
}

func (RequestRejected) EventType() string { return TypeRequestRejected }
