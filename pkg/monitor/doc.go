// Package monitor provides scheduled usage reporting for an executor
// Manager.
//
// A Monitor wakes on a cron schedule and writes one structured log line
// per configured quota resource and one per tier worker pool, so
// operators can follow resource pressure without scraping metrics. When
// a metrics registry is supplied it also refreshes the quota and worker
// pool gauges on every pass, keeping them current even while the
// manager is idle.
//
// # Usage
//
//	mgr, err := executor.New(executor.Config{MaxThreads: 8, MaxMemoryMB: 4096})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer mgr.Close()
//
//	usage, err := monitor.New(monitor.Config{
//		Schedule: "@every 30s",
//		Manager:  mgr,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := usage.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer usage.Stop()
//
// # Schedule Format
//
// Schedules use cron v3 expressions with a seconds field, or the
// descriptor forms:
//
//	"*/10 * * * * *"   every 10 seconds
//	"0 */5 * * * *"    every 5 minutes
//	"0 0 * * * *"      top of every hour
//	"@every 30s"       fixed interval
//	"@hourly"          descriptor shorthand
//
// An unparseable schedule is rejected at construction with a
// validation error; an empty schedule means DefaultSchedule.
//
// # Output
//
// Each firing produces log lines of the form:
//
//	INFO quota usage resource=threads capacity=8 available=3 waiting=2
//	INFO pool usage tier=0 workers=16 active=5 queued=12 submitted=140 completed=123
//
// Resources are reported in name order so successive reports line up.
//
// # Lifecycle
//
// Start runs the schedule on a background goroutine; Stop halts it and
// waits for an in-flight report to finish. A stopped monitor can be
// started again. Report may also be called directly for a one-off pass,
// with or without Start.
package monitor
