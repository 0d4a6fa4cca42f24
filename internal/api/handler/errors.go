package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/tactics-progress/internal/api/apierr"
	"github.com/mcoot/tactics-progress/internal/model"
)

// maxDurationMS is the largest millisecond count a time.Duration can hold
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

func playerIDFromPath(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}

// durationFromMS converts a request's duration_ms without overflowing
func durationFromMS(ms int64) (time.Duration, error) {
	if ms <= 0 || ms > maxDurationMS {
		return 0, model.ErrInvalidDuration
	}
	return time.Duration(ms) * time.Millisecond, nil
}
