package schema

import "time"

// Quiz 测验
// Position 是授课顺序号，历史重算按该顺序回放
type Quiz struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:200" json:"title"`
	Position  int       `gorm:"index" json:"position"` // 授课顺序（小者在前）
	HeldAt    time.Time `json:"held_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion 测验题目
type QuizQuestion struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID    int64   `gorm:"index" json:"quiz_id"`
	Category  string  `gorm:"size:50;index" json:"category"` // 考查类别: nahw, adab, ...
	MaxPoints float64 `json:"max_points"`                    // 满分值
}

// TableName 指定表名
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizScore 学生在单个题目上的得分
type QuizScore struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID     int64     `gorm:"index:idx_score_quiz_student" json:"quiz_id"`
	QuestionID int64     `gorm:"uniqueIndex:uniq_score_question_student" json:"question_id"`
	StudentID  int64     `gorm:"index:idx_score_quiz_student;uniqueIndex:uniq_score_question_student" json:"student_id"`
	Points     float64   `json:"points"` // 实得分，可为小数
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (QuizScore) TableName() string {
	return "quiz_scores"
}
