package entities

import "errors"

// Common errors
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrBoardNotFound        = errors.New("board not found")
	ErrStepNotFound         = errors.New("board step not found")
	ErrRoutineNotFound      = errors.New("routine not found")
	ErrAnchorNotFound       = errors.New("anchor not found")
	ErrExecutionNotFound    = errors.New("execution not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidQuadrant      = errors.New("invalid quadrant")
	ErrInvalidTimeRange     = errors.New("invalid time range")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrInvitationExpired    = errors.New("invitation has expired")
	ErrInvitationResolved   = errors.New("invitation already resolved")
	ErrAlreadyCollaborator  = errors.New("user is already a collaborator")
	ErrExecutionFinished    = errors.New("execution already finished")
	ErrExecutionPaused      = errors.New("execution is paused")
	ErrExecutionNotPaused   = errors.New("execution is not paused")
	ErrNoStepsToRun         = errors.New("board has no steps to run")
)
