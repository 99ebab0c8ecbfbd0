package domain

import "errors"

var (
	// ErrUnknownVariant is returned when no quiz variant is registered under a name.
	ErrUnknownVariant = errors.New("unknown quiz variant")
	// ErrNotImplemented signals a registered variant kind without a generator. It is a configuration bug.
	ErrNotImplemented = errors.New("quiz variant not implemented")
	// ErrInvalidTransition is returned when a session operation is not valid in the current phase.
	ErrInvalidTransition = errors.New("operation not allowed in current quiz state")
	// ErrInvalidAnswer indicates typed input that cannot be compared with the expected answer.
	ErrInvalidAnswer = errors.New("answer must be a number")
	// ErrOptionNotFound indicates a submitted option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
	// ErrWrongInputMode is returned when an operation does not belong to the session's input mode.
	ErrWrongInputMode = errors.New("operation not available in current input mode")
	// ErrInvalidTotal is returned for non-positive question totals.
	ErrInvalidTotal = errors.New("total questions must be positive")
	// ErrInvalidInputMode is returned when an input mode name cannot be parsed.
	ErrInvalidInputMode = errors.New("invalid input mode")
	// ErrScoreNotSaved wraps persistence failures on completion; the session itself stays valid.
	ErrScoreNotSaved = errors.New("score not saved")
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")

	// ErrUserNotFound is returned when a user lookup has no match.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when creating a user whose username already exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrReservedUser is returned when trying to delete the Anonymous user.
	ErrReservedUser = errors.New("anonymous user cannot be deleted")
	// ErrInvalidUser indicates user input failed validation.
	ErrInvalidUser = errors.New("invalid user")

	// ErrQuizFileFormat indicates a quiz file has no usable questions layout.
	ErrQuizFileFormat = errors.New("invalid quiz file format")
)
