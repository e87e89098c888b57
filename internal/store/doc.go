// Package store holds what every persistence implementation shares: the
// DBTX abstraction over connections and transactions, the transaction
// helper, and the sentinel errors callers match with errors.Is.
package store
