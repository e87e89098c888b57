// Package postgres implements the hotel and audit log stores on PostgreSQL
// through database/sql and the pgx driver, and owns the schema migrations.
package postgres
