package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hedgineer/eqindex/internal/scheduler"
	"github.com/hedgineer/eqindex/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
- daily_build: daily ingest and index build after market close

On startup the scheduler first runs a catch-up build covering every
trading day since the last built date.

Subcommands:
  start   - start the scheduler
  list    - list registered jobs
  run     - trigger a job immediately

Example:
  go run ./cmd/eqindex scheduler start
  go run ./cmd/eqindex scheduler run daily_build`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Trigger a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var skipCatchup bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().BoolVar(&skipCatchup, "skip-catchup", false, "skip the startup catch-up build")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	sched, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if !skipCatchup {
		catchup := jobs.NewCatchup(app.store, app.orchestrator, app.calendar, app.cfg.Scheduler.BackfillDays, app.log)
		if err := catchup.Run(context.Background()); err != nil {
			app.log.WithError(err).Error("Catch-up build failed, scheduler starting anyway")
		}
	}

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	sched, err := initScheduler(app)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	switch jobName {
	case "daily_build":
		job := jobs.NewDailyBuildJob(app.ingestor, app.orchestrator, app.calendar, app.cfg.Scheduler.DailyIngestSpec, app.log)
		if err := job.Run(context.Background()); err != nil {
			return fmt.Errorf("run job: %w", err)
		}
	default:
		return fmt.Errorf("unknown job: %s", jobName)
	}

	fmt.Println("Job completed")
	return nil
}

// initScheduler registers all jobs on a fresh scheduler.
func initScheduler(app *components) (*scheduler.Scheduler, error) {
	sched := scheduler.New(app.log)

	dailyBuild := jobs.NewDailyBuildJob(app.ingestor, app.orchestrator, app.calendar, app.cfg.Scheduler.DailyIngestSpec, app.log)
	if err := sched.AddJob(dailyBuild); err != nil {
		return nil, err
	}

	return sched, nil
}
