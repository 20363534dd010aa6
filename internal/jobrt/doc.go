// Package jobrt runs durable named jobs.
//
// A job is enqueued under a unique ID: enqueueing again with the same ID
// replaces the previous definition, cancelling is idempotent. One-shot jobs
// fire once at RunAt; periodic jobs fire at RunAt and then every Period.
//
// The initial delay is driven by a time.Timer guarded with a version counter
// so stale callbacks from replaced jobs are ignored. The periodic steady
// state is driven by a cron runner with "@every" entries. Fires are executed
// by a small worker pool with per-job timeout and retries.
//
// When a store is attached, job definitions survive restarts: Start reloads
// them and re-arms timers. An overdue one-shot fires promptly; an overdue
// periodic job is advanced to its next future occurrence.
package jobrt
