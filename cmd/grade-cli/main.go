package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/GradeMirror/internal/bootstrap"
	"github.com/yuqie6/GradeMirror/internal/httpapi"
	"github.com/yuqie6/GradeMirror/internal/pkg/buildinfo"
	"github.com/yuqie6/GradeMirror/internal/pkg/config"
	"github.com/yuqie6/GradeMirror/internal/schema"
)

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "grade",
		Short: "GradeMirror - 学生表现级联重算与排名引擎",
		Long:  `GradeMirror 维护学生的表现指标、积分台账与排名，任何数据订正经审批后在单个事务内完成全部级联重算。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cfgFile == "" {
				if cfgPath, err := config.DefaultConfigPath(); err == nil {
					if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
						_ = config.WriteFile(cfgPath, config.Default())
					}
					cfgFile = cfgPath
				}
			}

			var err error
			core, err = bootstrap.NewCore(cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(studentCmd())
	rootCmd.AddCommand(rankingsCmd())
	rootCmd.AddCommand(recalcCmd())
	rootCmd.AddCommand(snapshotCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serveCmd 启动本地 HTTP 服务
func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动本地 HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := httpapi.Start(ctx, core, httpapi.Options{ListenAddr: addr})
			if err != nil {
				slog.Error("启动 HTTP 服务失败", "error", err)
				os.Exit(1)
			}
			fmt.Printf("🚀 服务已启动: %s\n", srv.BaseURL())

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			fmt.Println("👋 服务已退出")
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，默认取配置 server.addr")
	return cmd
}

// studentCmd 学生档案管理
func studentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "管理学生档案",
	}

	var name string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "添加学生",
		Run: func(cmd *cobra.Command, args []string) {
			if name == "" {
				fmt.Println("⚠️  请通过 --name 指定学生姓名")
				os.Exit(1)
			}
			s := &schema.Student{Name: name, RegisteredAt: time.Now()}
			if err := core.Engines.Repos.Students.Create(context.Background(), s); err != nil {
				fmt.Printf("❌ 添加学生失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已添加学生 %s (ID %d)\n", s.Name, s.ID)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "学生姓名")

	var studentID int64
	var restore bool
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "归档或恢复学生",
		Run: func(cmd *cobra.Command, args []string) {
			if studentID <= 0 {
				fmt.Println("⚠️  请通过 --id 指定学生")
				os.Exit(1)
			}
			if err := core.Engines.Repos.Students.SetArchived(context.Background(), studentID, !restore); err != nil {
				fmt.Printf("❌ 更新学生状态失败: %v\n", err)
				os.Exit(1)
			}
			if restore {
				fmt.Printf("✅ 学生 %d 已恢复在册\n", studentID)
			} else {
				fmt.Printf("✅ 学生 %d 已归档\n", studentID)
			}
		},
	}
	archiveCmd.Flags().Int64Var(&studentID, "id", 0, "学生 ID")
	archiveCmd.Flags().BoolVar(&restore, "restore", false, "恢复为在册状态")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "列出在册学生",
		Run: func(cmd *cobra.Command, args []string) {
			students, err := core.Engines.Repos.Students.GetActive(context.Background())
			if err != nil {
				fmt.Printf("❌ 获取学生列表失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("👥 在册学生（%d 名）\n", len(students))
			for _, s := range students {
				fmt.Printf("  %4d  %-16s 注册于 %s\n", s.ID, s.Name, s.RegisteredAt.Format("2006-01-02"))
			}
		},
	}

	cmd.AddCommand(addCmd, archiveCmd, listCmd)
	return cmd
}

// rankingsCmd 输出当前排名
func rankingsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "输出当前班级排名",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			ranked, err := core.Engines.Rankings.Rankings(ctx)
			if err != nil {
				fmt.Printf("❌ 获取排名失败: %v\n", err)
				os.Exit(1)
			}
			if top > 0 && top < len(ranked) {
				ranked = ranked[:top]
			}

			fmt.Println("📋 班级排名")
			fmt.Println("═══════════════════════════════════════")
			for _, rs := range ranked {
				fmt.Printf("%3d. %-16s 总分 %.1f（测验 %.1f / 考勤 %d / 作业 %d / 目标 %d）\n",
					rs.Rank, rs.Student.Name, rs.Entry.TotalPoints,
					rs.Entry.QuizPoints, rs.Entry.AttendancePoints,
					rs.Entry.HomeworkPoints, rs.Entry.TargetPoints)
			}

			avg, err := core.Engines.Rankings.Average(ctx)
			if err == nil {
				fmt.Printf("\n📊 班级平均总分: %.2f\n", avg)
			}
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "只输出前 N 名")
	return cmd
}

// recalcCmd 重算指定学生的指标链与积分台账
func recalcCmd() *cobra.Command {
	var studentID int64
	var all bool

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "重算学生的表现指标与积分",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			var ids []int64
			if all {
				students, err := core.Engines.Repos.Students.GetActive(ctx)
				if err != nil {
					fmt.Printf("❌ 获取学生列表失败: %v\n", err)
					os.Exit(1)
				}
				for _, s := range students {
					ids = append(ids, s.ID)
				}
			} else {
				if studentID <= 0 {
					fmt.Println("⚠️  请通过 --student 指定学生，或使用 --all")
					os.Exit(1)
				}
				ids = []int64{studentID}
			}

			for _, id := range ids {
				if err := core.Engines.Indicators.RecalculateAll(ctx, id); err != nil {
					fmt.Printf("❌ 学生 %d 指标重算失败: %v\n", id, err)
					os.Exit(1)
				}
				if err := core.Engines.Points.Recalculate(ctx, id); err != nil {
					fmt.Printf("❌ 学生 %d 积分重算失败: %v\n", id, err)
					os.Exit(1)
				}
				fmt.Printf("✅ 学生 %d 重算完成\n", id)
			}
		},
	}

	cmd.Flags().Int64Var(&studentID, "student", 0, "学生 ID")
	cmd.Flags().BoolVar(&all, "all", false, "重算全部在册学生")
	return cmd
}

// snapshotCmd 排名快照
func snapshotCmd() *cobra.Command {
	var date string
	var from, to string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "生成或对比排名快照",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			if from != "" && to != "" {
				deltas, err := core.Engines.Rankings.CompareSnapshots(ctx, from, to)
				if err != nil {
					fmt.Printf("❌ 对比快照失败: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("📊 快照对比 %s → %s\n", from, to)
				for id, delta := range deltas {
					switch {
					case delta > 0:
						fmt.Printf("  学生 %d: 上升 %d 名 ⬆️\n", id, delta)
					case delta < 0:
						fmt.Printf("  学生 %d: 下滑 %d 名 ⬇️\n", id, -delta)
					default:
						fmt.Printf("  学生 %d: 名次不变\n", id)
					}
				}
				return
			}

			targetDate := date
			if targetDate == "" {
				targetDate = time.Now().Format("2006-01-02")
			}
			snap, err := core.Engines.Rankings.CreateSnapshot(ctx, targetDate)
			if err != nil {
				fmt.Printf("❌ 生成快照失败: %v\n", err)
				os.Exit(1)
			}
			if keep := core.Cfg.Grading.SnapshotKeepCount; keep > 0 {
				if err := core.Engines.Repos.Snapshots.Prune(ctx, keep); err != nil {
					slog.Warn("清理过期快照失败", "error", err)
				}
			}
			fmt.Printf("✅ 已生成 %s 的排名快照（%d 名学生）\n", snap.AsOfDate, len(snap.Entries))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "快照日期 (YYYY-MM-DD)，默认今天")
	cmd.Flags().StringVar(&from, "from", "", "对比起点快照日期")
	cmd.Flags().StringVar(&to, "to", "", "对比终点快照日期")
	return cmd
}

// versionCmd 输出版本信息
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("GradeMirror %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}
