// Package agent implements the worker side of the orchestration system:
// the keyword router that maps directives to workers, the fixed worker
// pool with its lifecycle, and the dispatcher that routes and delegates
// individual tasks. Workers simulate a bounded processing interval; they
// carry no real execution logic.
package agent
