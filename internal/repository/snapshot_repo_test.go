package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/yuqie6/GradeMirror/internal/schema"
	"github.com/yuqie6/GradeMirror/internal/testutil"
)

func TestSnapshotRepositoryCreateAndGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	snap := &schema.RankingSnapshot{
		AsOfDate: "2026-02-01",
		Entries: schema.SnapshotEntries{
			{StudentID: 1, Rank: 1, TotalPoints: 12.5},
			{StudentID: 2, Rank: 2, TotalPoints: 9},
		},
	}
	if err := repo.Create(ctx, snap); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByDate(ctx, "2026-02-01")
	if err != nil {
		t.Fatalf("GetByDate: %v", err)
	}
	if got == nil {
		t.Fatal("期望查到快照")
	}
	if len(got.Entries) != 2 || got.Entries[0].StudentID != 1 {
		t.Errorf("名次列表往返后不符: %+v", got.Entries)
	}

	// 同日期唯一
	dup := &schema.RankingSnapshot{AsOfDate: "2026-02-01"}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("同日期重复创建应报错")
	}

	missing, err := repo.GetByDate(ctx, "2026-03-01")
	if err != nil {
		t.Fatalf("GetByDate missing: %v", err)
	}
	if missing != nil {
		t.Errorf("不存在的日期应返回 nil，实际 %+v", missing)
	}
}

func TestSnapshotRepositoryListAndPrune(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		snap := &schema.RankingSnapshot{AsOfDate: fmt.Sprintf("2026-02-%02d", day)}
		if err := repo.Create(ctx, snap); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	snaps, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 5 {
		t.Fatalf("期望 5 份快照，实际 %d", len(snaps))
	}
	// 日期倒序
	if snaps[0].AsOfDate != "2026-02-05" || snaps[4].AsOfDate != "2026-02-01" {
		t.Errorf("排序错误: %s ... %s", snaps[0].AsOfDate, snaps[4].AsOfDate)
	}

	if err := repo.Prune(ctx, 3); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	snaps, err = repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List after prune: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("清理后期望保留 3 份，实际 %d", len(snaps))
	}
	if snaps[2].AsOfDate != "2026-02-03" {
		t.Errorf("应保留最近三天，最早一份为 %s", snaps[2].AsOfDate)
	}

	// keep <= 0 不做任何清理
	if err := repo.Prune(ctx, 0); err != nil {
		t.Fatalf("Prune(0): %v", err)
	}
	snaps, _ = repo.List(ctx, 0)
	if len(snaps) != 3 {
		t.Errorf("keep=0 不应清理，实际剩余 %d", len(snaps))
	}
}
