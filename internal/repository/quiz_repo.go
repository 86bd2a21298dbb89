package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"gorm.io/gorm"
)

// QuizRepository 测验仓储
type QuizRepository struct {
	db *gorm.DB
}

// NewQuizRepository 创建仓储
func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create 新建测验及其题目
func (r *QuizRepository) Create(ctx context.Context, quiz *schema.Quiz, questions []schema.QuizQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return fmt.Errorf("创建测验失败: %w", err)
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("创建测验题目失败: %w", err)
			}
		}
		return nil
	})
}

// GetByID 根据 ID 获取测验，不存在返回 nil
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*schema.Quiz, error) {
	var quiz schema.Quiz
	err := r.db.WithContext(ctx).First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询测验失败: %w", err)
	}
	return &quiz, nil
}

// GetQuestions 获取测验全部题目
func (r *QuizRepository) GetQuestions(ctx context.Context, quizID int64) ([]schema.QuizQuestion, error) {
	var questions []schema.QuizQuestion
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("查询测验题目失败: %w", err)
	}
	return questions, nil
}

// GetScoredByStudent 获取学生有得分记录的测验，按授课顺序排列
// 历史订正后的全量重算按该顺序回放
func (r *QuizRepository) GetScoredByStudent(ctx context.Context, studentID int64) ([]schema.Quiz, error) {
	var quizzes []schema.Quiz
	err := r.db.WithContext(ctx).
		Joins("JOIN quiz_scores ON quiz_scores.quiz_id = quizzes.id").
		Where("quiz_scores.student_id = ?", studentID).
		Group("quizzes.id").
		Order("quizzes.position, quizzes.id").
		Find(&quizzes).Error
	if err != nil {
		return nil, fmt.Errorf("查询学生测验失败: %w", err)
	}
	return quizzes, nil
}
