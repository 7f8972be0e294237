// Package apperrors defines the domain errors of the game-play engine. Each
// error carries a machine-readable code and the HTTP status the boundary
// answers with.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInternal Code = "INTERNAL"
	CodeNotFound Code = "NOT_FOUND"
	CodeInvalid  Code = "INVALID_REQUEST"

	CodeGameUnavailable         Code = "GAME_UNAVAILABLE"
	CodeGameHasNoTasks          Code = "GAME_HAS_NO_TASKS"
	CodeGameAlreadyStarted      Code = "GAME_ALREADY_STARTED"
	CodeSessionAlreadyCompleted Code = "SESSION_ALREADY_COMPLETED"
	CodeOwnershipMismatch       Code = "OWNERSHIP_MISMATCH"
	CodeTaskNotInGame           Code = "TASK_NOT_IN_GAME"
	CodeInvalidTaskSequence     Code = "INVALID_TASK_SEQUENCE"
	CodeTaskAlreadyCompleted    Code = "TASK_ALREADY_COMPLETED"
	CodeWrongLocation           Code = "WRONG_LOCATION"
	CodeInvalidCoordinates      Code = "INVALID_COORDINATES"
)

// Error is a domain error. Sentinels are compared by code, so a copy with a
// more specific message still matches its sentinel under errors.Is.
type Error struct {
	Code    Code
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: msg}
}

var (
	ErrNotFound       = &Error{CodeNotFound, http.StatusNotFound, "resource not found"}
	ErrInvalidRequest = &Error{CodeInvalid, http.StatusBadRequest, "invalid request"}

	ErrGameUnavailable         = &Error{CodeGameUnavailable, http.StatusBadRequest, "this game is not available"}
	ErrGameHasNoTasks          = &Error{CodeGameHasNoTasks, http.StatusBadRequest, "this game has no tasks"}
	ErrGameAlreadyStarted      = &Error{CodeGameAlreadyStarted, http.StatusConflict, "this game has already been started"}
	ErrSessionAlreadyCompleted = &Error{CodeSessionAlreadyCompleted, http.StatusBadRequest, "this game session is already completed"}
	ErrOwnershipMismatch       = &Error{CodeOwnershipMismatch, http.StatusConflict, "user does not own this game session"}
	ErrTaskNotInGame           = &Error{CodeTaskNotInGame, http.StatusBadRequest, "this task is not part of the current game"}
	ErrInvalidTaskSequence     = &Error{CodeInvalidTaskSequence, http.StatusConflict, "this task is not the next one in sequence"}
	ErrTaskAlreadyCompleted    = &Error{CodeTaskAlreadyCompleted, http.StatusConflict, "this task has already been completed"}
	ErrWrongLocation           = &Error{CodeWrongLocation, http.StatusConflict, "you are not close enough to the task location"}
	ErrInvalidCoordinates      = &Error{CodeInvalidCoordinates, http.StatusBadRequest, "latitude and longitude must be finite and in range"}
)

// StatusOf returns the HTTP status for err, or 500 when err is not a domain
// error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the domain code for err, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
