// ABOUTME: In-memory conversation store with per-tenant append-only message logs.
// ABOUTME: Sole owner of message records; all reads and mutations go through it.
package store
