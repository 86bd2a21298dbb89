package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"github.com/yuqie6/GradeMirror/internal/testutil"
)

func TestTargetRepositoryActiveQueries(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	// 乱序建入，查询须按目标值升序
	for _, v := range []int{10, 8, 9} {
		if err := repo.Create(ctx, &schema.Target{StudentID: 1, Category: "nahw", TargetValue: v}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := repo.Create(ctx, &schema.Target{StudentID: 1, Category: "adab", TargetValue: 5}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, &schema.Target{StudentID: 2, Category: "nahw", TargetValue: 3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	targets, err := repo.GetActiveByCategory(ctx, 1, "nahw")
	if err != nil {
		t.Fatalf("GetActiveByCategory: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("期望 3 个目标，实际 %d", len(targets))
	}
	for i, want := range []int{8, 9, 10} {
		if targets[i].TargetValue != want {
			t.Errorf("第 %d 个目标值应为 %d，实际 %d", i, want, targets[i].TargetValue)
		}
	}

	exists, err := repo.ExistsActiveAtValue(ctx, 1, "nahw", 9)
	if err != nil {
		t.Fatalf("ExistsActiveAtValue: %v", err)
	}
	if !exists {
		t.Error("目标值 9 应存在")
	}

	count, err := repo.CountActiveByStudent(ctx, 1)
	if err != nil {
		t.Fatalf("CountActiveByStudent: %v", err)
	}
	if count != 4 {
		t.Errorf("学生 1 应有 4 个未达成目标，实际 %d", count)
	}
}

func TestTargetRepositoryMarkAchieved(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTargetRepository(db)
	ctx := context.Background()

	target := &schema.Target{StudentID: 1, Category: "nahw", TargetValue: 8}
	if err := repo.Create(ctx, target); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	if err := repo.MarkAchieved(ctx, target.ID, at); err != nil {
		t.Fatalf("MarkAchieved: %v", err)
	}

	// 达成后不再出现在活跃查询
	active, err := repo.GetActiveByCategory(ctx, 1, "nahw")
	if err != nil {
		t.Fatalf("GetActiveByCategory: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("达成的目标不应出现在活跃查询: %+v", active)
	}

	exists, err := repo.ExistsActiveAtValue(ctx, 1, "nahw", 8)
	if err != nil {
		t.Fatalf("ExistsActiveAtValue: %v", err)
	}
	if exists {
		t.Error("达成后同值应视为无活跃目标")
	}
}
