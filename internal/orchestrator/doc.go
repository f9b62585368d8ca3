// Package orchestrator coordinates the task lifecycle: it accepts
// directives, records tasks in the authoritative in-memory registry,
// mirrors them to durable storage on a best-effort basis, and hands
// them to the dispatcher through a bounded queue processed by a pool
// of goroutines.
package orchestrator
