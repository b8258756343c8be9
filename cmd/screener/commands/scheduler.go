package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/gemscreener/internal/contracts"
	"github.com/wonny/gemscreener/internal/s0_universe"
	"github.com/wonny/gemscreener/internal/scheduler"
	"github.com/wonny/gemscreener/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/screener scheduler start
  go run ./cmd/screener scheduler list
  go run ./cmd/screener scheduler run daily_screen`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- universe_refresh: 매일 06:30 (Universe 캐시 갱신)
- daily_screen: DAILY_SCHEDULE (기본 매일 07:00)
- cache_cleanup: 매시간 (만료된 Universe 캐시 삭제)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Gem Screener Scheduler ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	PrintSuccess("Scheduler started")
	printJobStats(sched)
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()
	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	printJobStats(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration))
	return nil
}

func printJobStats(sched *scheduler.Scheduler) {
	stats := sched.Stats()

	fmt.Println("\nRegistered jobs:")
	widths := []int{18, 16, 20}
	PrintTableHeader([]string{"Job", "Schedule", "Next Run"}, widths)
	for _, name := range sched.Jobs() {
		st := stats[name]
		next := "-"
		if st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04")
		}
		PrintTableRow([]string{name, st.Schedule, next}, widths)
	}
	fmt.Println()
}

// initScheduler registers the screening jobs
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	markets, err := contracts.ExpandMarkets(a.cfg.Screening.DailyMarkets)
	if err != nil {
		return nil, err
	}

	screeners := make([]s0_universe.Screener, 0, len(markets))
	for _, m := range markets {
		screeners = append(screeners, a.screeners[m])
	}

	sched := scheduler.New(a.log)

	for _, job := range []scheduler.Job{
		jobs.NewUniverseRefreshJob(screeners, a.log.Module("job.universe")),
		jobs.NewDailyScreenJob(a.orch, markets, a.cfg.Screening.OutputDir, a.cfg.Screening.DailySchedule, a.log.Module("job.daily")),
		jobs.NewCacheCleanupJob(a.cache, a.log.Module("job.cache")),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
