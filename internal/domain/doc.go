// Package domain contains the values shared by every layer of the volunteer
// manager: the resolved caller Identity, its Privilege set, and the common
// sentinel errors. It has no dependencies on transport or storage.
package domain
