package service

import (
	"context"
	"fmt"

	"github.com/yuqie6/GradeMirror/internal/schema"
)

// RecordService 原始事实的受校验订正操作
// 订正请求批准后由编排器经由这里落实；所有校验在任何写入之前完成
type RecordService struct {
	studentRepo    StudentRepository
	quizRepo       QuizRepository
	scoreRepo      ScoreRepository
	attendanceRepo AttendanceRepository
	homeworkRepo   HomeworkRepository
}

// NewRecordService 创建订正服务
func NewRecordService(
	studentRepo StudentRepository,
	quizRepo QuizRepository,
	scoreRepo ScoreRepository,
	attendanceRepo AttendanceRepository,
	homeworkRepo HomeworkRepository,
) *RecordService {
	return &RecordService{
		studentRepo:    studentRepo,
		quizRepo:       quizRepo,
		scoreRepo:      scoreRepo,
		attendanceRepo: attendanceRepo,
		homeworkRepo:   homeworkRepo,
	}
}

// CorrectScore 订正单题得分
// 学生须在册、得分须落在 [0, 满分]，且该生在测验当日不得为缺勤状态
func (s *RecordService) CorrectScore(ctx context.Context, scoreID int64, points float64) error {
	score, err := s.scoreRepo.GetByID(ctx, scoreID)
	if err != nil {
		return err
	}
	if score == nil {
		return fmt.Errorf("%w: 得分记录 %d 不存在", ErrNotFound, scoreID)
	}

	if err := s.requireActiveStudent(ctx, score.StudentID); err != nil {
		return err
	}

	questions, err := s.quizRepo.GetQuestions(ctx, score.QuizID)
	if err != nil {
		return err
	}
	var max float64 = -1
	for _, q := range questions {
		if q.ID == score.QuestionID {
			max = q.MaxPoints
			break
		}
	}
	if max < 0 {
		return fmt.Errorf("%w: 题目 %d 不属于测验 %d", ErrValidation, score.QuestionID, score.QuizID)
	}
	if points < 0 || points > max {
		return fmt.Errorf("%w: 得分 %.2f 超出 [0, %.2f]", ErrValidation, points, max)
	}

	quiz, err := s.quizRepo.GetByID(ctx, score.QuizID)
	if err != nil {
		return err
	}
	if quiz != nil && !quiz.HeldAt.IsZero() {
		rec, err := s.attendanceRepo.GetByStudentAndDate(ctx, score.StudentID, quiz.HeldAt.Format("2006-01-02"))
		if err != nil {
			return err
		}
		if rec != nil && rec.Status == schema.AttendanceAbsent {
			return fmt.Errorf("%w: 学生 %d 在测验当日缺勤，不能改判得分", ErrValidation, score.StudentID)
		}
	}

	return s.scoreRepo.UpdatePoints(ctx, scoreID, points)
}

// CorrectAttendance 订正考勤状态
func (s *RecordService) CorrectAttendance(ctx context.Context, recordID int64, status string) error {
	if !schema.ValidAttendanceStatus(status) {
		return fmt.Errorf("%w: 非法考勤状态 %q", ErrValidation, status)
	}

	rec, err := s.attendanceRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: 考勤记录 %d 不存在", ErrNotFound, recordID)
	}

	if err := s.requireActiveStudent(ctx, rec.StudentID); err != nil {
		return err
	}

	return s.attendanceRepo.UpdateStatus(ctx, recordID, status)
}

// CorrectHomework 订正作业状态
func (s *RecordService) CorrectHomework(ctx context.Context, recordID int64, status string) error {
	if !schema.ValidHomeworkStatus(status) {
		return fmt.Errorf("%w: 非法作业状态 %q", ErrValidation, status)
	}

	rec, err := s.homeworkRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: 作业记录 %d 不存在", ErrNotFound, recordID)
	}

	if err := s.requireActiveStudent(ctx, rec.StudentID); err != nil {
		return err
	}

	return s.homeworkRepo.UpdateStatus(ctx, recordID, status)
}

func (s *RecordService) requireActiveStudent(ctx context.Context, studentID int64) error {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("%w: 学生 %d 不存在", ErrNotFound, studentID)
	}
	if student.Archived {
		return fmt.Errorf("%w: 学生 %d 已归档", ErrValidation, studentID)
	}
	return nil
}
