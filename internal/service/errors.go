package service

import "errors"

// Validation errors are handled at the point of the attempted action
// and never propagate past the component boundary. Sync errors are
// aggregated and logged, never thrown to the UI.
var (
	// ErrSessionLocked rejects attendance mutation after the
	// 30-minute post-session window.
	ErrSessionLocked = errors.New("session attendance is locked")

	// ErrNothingToSave rejects a commit with no staged edits.
	ErrNothingToSave = errors.New("no staged attendance edits to save")

	// ErrPermissionDenied is a hard access policy denial.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSyncInProgress rejects an overlapping reconciliation pull.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNotFound reports a missing entity by id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials rejects a login attempt. Deliberately
	// silent on whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
