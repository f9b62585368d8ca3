// Package store defines the persistence interfaces for the durable task
// mirror and metrics history. The in-memory task registry stays
// authoritative for status reads; these interfaces describe the opaque
// durable store that the core mirrors into on a best-effort basis.
package store
