// Package events defines task lifecycle events and a simple in-memory
// emitter. The orchestrator publishes an event when a task is created
// and when it reaches a terminal state; handlers (audit logging, future
// integrations) subscribe without the orchestrator knowing about them.
package events
