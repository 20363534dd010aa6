// Package notify delivers reminder notifications to the user.
//
// The Dispatcher wraps a backend with the delivery policy: rate limiting,
// suppression of duplicate sends inside a dedup window, and a small
// in-memory history for status inspection. Backends are intentionally dumb;
// they only know how to push one message somewhere (a log line, an external
// command, a Telegram chat).
package notify
