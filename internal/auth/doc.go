// Package auth issues and verifies the signed session tokens that identify
// volunteers and organisers, and resolves the caller of an action from them.
package auth
