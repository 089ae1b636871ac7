// Package cache implements a short-lived store for aggregated vehicle snapshots.
//
// The vehicle gateway rate-limits aggressively, and most of its telemetry changes
// on the order of minutes. Callers that poll (dashboards, the HTTP proxy) therefore
// share one [SnapshotCache] so a burst of requests costs a single round of upstream
// reads. Entries expire after a TTL.
//
// Freshness around writes is handled by invalidation rather than short TTLs: the
// account layer clears the cache whenever a session is re-established, and the
// vehicle layer clears it after issuing any command that changes vehicle state, so
// the next read reflects the command's effect.
//
// A SnapshotCache holds data about vehicle location and activity. If its contents
// are ever persisted or forwarded, access controls should prevent third parties
// from reading them.
package cache
