package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/GradeMirror/internal/schema"
)

func newRecordFixture() (*fakeStudentRepo, *fakeQuizRepo, *fakeScoreRepo, *fakeAttendanceRepo, *fakeHomeworkRepo, *RecordService) {
	studentRepo := newFakeStudentRepo(&schema.Student{ID: 7, Name: "学生甲", RegisteredAt: time.Now()})
	quizRepo := newFakeQuizRepo()
	scoreRepo := newFakeScoreRepo()
	attendanceRepo := newFakeAttendanceRepo()
	homeworkRepo := newFakeHomeworkRepo()
	svc := NewRecordService(studentRepo, quizRepo, scoreRepo, attendanceRepo, homeworkRepo)
	return studentRepo, quizRepo, scoreRepo, attendanceRepo, homeworkRepo, svc
}

func TestCorrectScore(t *testing.T) {
	_, quizRepo, scoreRepo, _, _, svc := newRecordFixture()
	ctx := context.Background()

	heldAt := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	quizRepo.quizzes[1] = &schema.Quiz{ID: 1, Position: 1, HeldAt: heldAt}
	quizRepo.questions[1] = []schema.QuizQuestion{{ID: 1, QuizID: 1, Category: "nahw", MaxPoints: 2}}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 1, QuestionID: 1, StudentID: 7, Points: 1}

	if err := svc.CorrectScore(ctx, 1, 1.5); err != nil {
		t.Fatalf("CorrectScore: %v", err)
	}
	if scoreRepo.items[1].Points != 1.5 {
		t.Errorf("得分应为 1.5，实际 %v", scoreRepo.items[1].Points)
	}

	// 超出满分
	if err := svc.CorrectScore(ctx, 1, 2.5); !errors.Is(err, ErrValidation) {
		t.Errorf("超出满分应返回 ErrValidation，实际 %v", err)
	}
	// 负分
	if err := svc.CorrectScore(ctx, 1, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("负分应返回 ErrValidation，实际 %v", err)
	}
	// 记录不存在
	if err := svc.CorrectScore(ctx, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("记录不存在应返回 ErrNotFound，实际 %v", err)
	}
}

func TestCorrectScoreRejectsAbsentStudent(t *testing.T) {
	_, quizRepo, scoreRepo, attendanceRepo, _, svc := newRecordFixture()

	heldAt := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	quizRepo.quizzes[1] = &schema.Quiz{ID: 1, Position: 1, HeldAt: heldAt}
	quizRepo.questions[1] = []schema.QuizQuestion{{ID: 1, QuizID: 1, Category: "nahw", MaxPoints: 2}}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 1, QuestionID: 1, StudentID: 7, Points: 1}
	attendanceRepo.items[1] = &schema.AttendanceRecord{
		ID: 1, StudentID: 7, Date: "2026-02-10", Status: schema.AttendanceAbsent,
	}

	if err := svc.CorrectScore(context.Background(), 1, 1.5); !errors.Is(err, ErrValidation) {
		t.Errorf("测验当日缺勤应返回 ErrValidation，实际 %v", err)
	}
}

func TestCorrectScoreRejectsArchivedStudent(t *testing.T) {
	studentRepo, quizRepo, scoreRepo, _, _, svc := newRecordFixture()

	_ = studentRepo.SetArchived(context.Background(), 7, true)
	quizRepo.quizzes[1] = &schema.Quiz{ID: 1}
	quizRepo.questions[1] = []schema.QuizQuestion{{ID: 1, QuizID: 1, Category: "nahw", MaxPoints: 2}}
	scoreRepo.items[1] = &schema.QuizScore{ID: 1, QuizID: 1, QuestionID: 1, StudentID: 7, Points: 1}

	if err := svc.CorrectScore(context.Background(), 1, 1.5); !errors.Is(err, ErrValidation) {
		t.Errorf("归档学生应返回 ErrValidation，实际 %v", err)
	}
}

func TestCorrectAttendance(t *testing.T) {
	_, _, _, attendanceRepo, _, svc := newRecordFixture()
	ctx := context.Background()

	attendanceRepo.items[1] = &schema.AttendanceRecord{
		ID: 1, StudentID: 7, Date: "2026-02-10", Status: schema.AttendanceAbsent,
	}

	if err := svc.CorrectAttendance(ctx, 1, schema.AttendancePresent); err != nil {
		t.Fatalf("CorrectAttendance: %v", err)
	}
	if attendanceRepo.items[1].Status != schema.AttendancePresent {
		t.Errorf("状态应为 present，实际 %s", attendanceRepo.items[1].Status)
	}

	if err := svc.CorrectAttendance(ctx, 1, "vacation"); !errors.Is(err, ErrValidation) {
		t.Errorf("非法状态应返回 ErrValidation，实际 %v", err)
	}
	if err := svc.CorrectAttendance(ctx, 99, schema.AttendancePresent); !errors.Is(err, ErrNotFound) {
		t.Errorf("记录不存在应返回 ErrNotFound，实际 %v", err)
	}
}

func TestCorrectHomework(t *testing.T) {
	_, _, _, _, homeworkRepo, svc := newRecordFixture()
	ctx := context.Background()

	homeworkRepo.items[1] = &schema.HomeworkRecord{ID: 1, StudentID: 7, Status: schema.HomeworkNotDone}

	if err := svc.CorrectHomework(ctx, 1, schema.HomeworkDone); err != nil {
		t.Fatalf("CorrectHomework: %v", err)
	}
	if homeworkRepo.items[1].Status != schema.HomeworkDone {
		t.Errorf("状态应为 done，实际 %s", homeworkRepo.items[1].Status)
	}

	if err := svc.CorrectHomework(ctx, 1, "half"); !errors.Is(err, ErrValidation) {
		t.Errorf("非法状态应返回 ErrValidation，实际 %v", err)
	}
}
