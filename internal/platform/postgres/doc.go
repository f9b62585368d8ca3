// Package postgres implements the durable storage interfaces from the
// store package on PostgreSQL, accessed through database/sql with the
// pgx driver. It also carries the embedded goose migrations that shape
// the schema.
package postgres
