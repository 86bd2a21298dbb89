package schema

import "testing"

func TestPointsLedgerEntryRecomputeTotal(t *testing.T) {
	e := PointsLedgerEntry{
		QuizPoints:       3.5,
		AttendancePoints: 2,
		HomeworkPoints:   4,
		TargetPoints:     6,
	}
	e.RecomputeTotal()
	if e.TotalPoints != 15.5 {
		t.Fatalf("total = %v, want 15.5", e.TotalPoints)
	}

	e = PointsLedgerEntry{}
	e.RecomputeTotal()
	if e.TotalPoints != 0 {
		t.Fatalf("空台账 total = %v, want 0", e.TotalPoints)
	}
}
