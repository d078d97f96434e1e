// Package ledger implements the expense-sharing core: expense lifecycle,
// balance accounting and group membership. Every mutating operation runs
// inside a single database transaction; partial writes are never committed.
package ledger

import "errors"

// Sentinel errors surfaced by ledger operations. Handlers translate these to
// HTTP statuses; anything else is a persistence failure.
var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("ledger: not found")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("ledger: user not found")
	// ErrGroupNotFound indicates the referenced group does not exist.
	ErrGroupNotFound = errors.New("ledger: group not found")
	// ErrNotGroupMember indicates the payer is not a member of the group.
	ErrNotGroupMember = errors.New("ledger: user is not a member of the group")
	// ErrAlreadyMember indicates the user already belongs to the group.
	ErrAlreadyMember = errors.New("ledger: user is already a member of the group")
	// ErrAlreadySettled rejects settlement of an already-settled expense,
	// which would double-count the deltas.
	ErrAlreadySettled = errors.New("ledger: expense already settled")
)
