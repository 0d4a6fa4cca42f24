package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tactics-progress/internal/api/request"
	"github.com/mcoot/tactics-progress/internal/api/response"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/services/repetition"
)

// RepetitionHandler handles repetition ladder endpoints
type RepetitionHandler struct {
	accountService    *account.Service
	repetitionService *repetition.Service
}

// NewRepetitionHandler creates a new repetition handler
func NewRepetitionHandler(accountService *account.Service, repetitionService *repetition.Service) *RepetitionHandler {
	return &RepetitionHandler{
		accountService:    accountService,
		repetitionService: repetitionService,
	}
}

func levelIDFromPath(r *http.Request) model.RepetitionLevelID {
	return model.RepetitionLevelID(mux.Vars(r)["level"])
}

// Status handles GET /api/v1/players/{id}/repetition
func (h *RepetitionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.repetitionService.Status(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.RepetitionStatusFromService(status))
}

// Rounds handles GET /api/v1/players/{id}/repetition/levels/{level}/rounds
func (h *RepetitionHandler) Rounds(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.GetPlayer(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	levelID := levelIDFromPath(r)
	rounds, err := h.repetitionService.RecentRounds(r.Context(), player.ID, levelID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.RecentRoundsFromModel(levelID, rounds))
}

// Complete handles POST /api/v1/players/{id}/repetition/levels/{level}/completions
func (h *RepetitionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	completion, err := h.repetitionService.RecordLevelCompletion(r.Context(), playerIDFromPath(r), levelIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.LevelCompletionFromModel(completion))
}

// RecordRound handles POST /api/v1/players/{id}/repetition/levels/{level}/rounds
func (h *RepetitionHandler) RecordRound(w http.ResponseWriter, r *http.Request) {
	var req request.RoundRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	d, err := durationFromMS(req.DurationMS)
	if err != nil {
		WriteError(w, err)
		return
	}

	round, err := h.repetitionService.RecordRound(r.Context(), playerIDFromPath(r), levelIDFromPath(r), d)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.RoundFromModel(round))
}
