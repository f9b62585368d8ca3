// Package domain contains the core entities of the orchestration system:
// tasks with their status state machine, workers with their role tagging
// rules, and system metrics snapshots. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
