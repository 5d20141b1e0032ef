package seed

import "fmt"

// UpsertError is the first write that failed. Rows written before it stay
// committed; re-running the seed converges because every write is an upsert.
type UpsertError struct {
	Table string
	ID    string
	Err   error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert %s id=%s: %v", e.Table, e.ID, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }

// OwnerConflictError means the configured owner email already belongs to a
// different user in the target.
type OwnerConflictError struct {
	Email      string
	OwnerID    string
	ExistingID string
}

func (e *OwnerConflictError) Error() string {
	return fmt.Sprintf("owner email %s already belongs to user %s, not the configured owner %s", e.Email, e.ExistingID, e.OwnerID)
}
