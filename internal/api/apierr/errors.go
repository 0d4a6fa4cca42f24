package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/account"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Fields carries per-field messages for validation failures
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeLevelNotFound      = "LEVEL_NOT_FOUND"
	CodeEmptyLadder        = "EMPTY_LADDER"
	CodePuzzleNotInLevel   = "PUZZLE_NOT_IN_LEVEL"
	CodeInvalidDifficulty  = "INVALID_DIFFICULTY"
	CodeInvalidDuration    = "INVALID_DURATION"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return &httpError{http.StatusUnprocessableEntity, APIError{
			Code:    CodeValidationFailed,
			Message: "Validation failed",
			Fields:  verr.Fields,
		}}
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrInfinityLevelNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeLevelNotFound, Message: "Infinity level not found"}}
	case errors.Is(err, model.ErrSpeedrunLevelNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeLevelNotFound, Message: "Speedrun level not found"}}
	case errors.Is(err, model.ErrRepetitionLevelNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeLevelNotFound, Message: "Repetition level not found"}}
	case errors.Is(err, model.ErrEmptyLadder):
		return &httpError{http.StatusConflict, APIError{Code: CodeEmptyLadder, Message: "No puzzles available at this difficulty"}}
	case errors.Is(err, model.ErrPuzzleNotInLevel):
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodePuzzleNotInLevel, Message: "Puzzle is not part of this difficulty"}}
	case errors.Is(err, model.ErrInvalidDifficulty):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDifficulty, Message: "Difficulty must be easy, medium, hard or insane"}}
	case errors.Is(err, model.ErrInvalidDuration):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidDuration, Message: "Duration must be positive"}}

	case errors.Is(err, account.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid username or password"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
