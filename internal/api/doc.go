// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task service. Handlers depend on small service
// interfaces so tests can drive them with stubs.
package api
