// Package testutils holds helpers shared by the HTTP and logging tests.
package testutils
