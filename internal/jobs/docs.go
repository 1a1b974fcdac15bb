// Package jobs provides the background machinery of driver assignment.
//
// This package combines two mechanisms. AssignmentRetryScheduler keeps an
// in-memory timer per order that could not get a driver and re-runs the
// matching attempt on a fixed interval, giving up after a configured
// number of attempts. AssignmentRecoveryJob is a cron-based sweep using
// github.com/robfig/cron/v3 that re-discovers waiting orders from the
// database, so retries survive process restarts.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager, err := jobs.NewJobManager(
//		autoAssignHandler, failOrderHandler, orderUoWFactory, retryConfig, logger)
//	if err != nil {
//		log.Fatal("Failed to create jobs:", err)
//	}
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// Command handlers receive jobManager.Scheduler() and call Schedule when
// a paid order finds no driver, and Cancel when an order gets a driver or
// reaches a terminal status.
//
// # Error Handling
//
//   - No-driver results reschedule silently; they are the expected case.
//   - Other matching errors are logged and rescheduled.
//   - Exhausted orders are moved to the failed status.
package jobs
