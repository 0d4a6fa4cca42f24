package handler

import (
	"net/http"

	"github.com/mcoot/tactics-progress/internal/api/request"
	"github.com/mcoot/tactics-progress/internal/api/response"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/services/speedrun"
)

// SpeedrunHandler handles speedrun endpoints
type SpeedrunHandler struct {
	accountService  *account.Service
	speedrunService *speedrun.Service
}

// NewSpeedrunHandler creates a new speedrun handler
func NewSpeedrunHandler(accountService *account.Service, speedrunService *speedrun.Service) *SpeedrunHandler {
	return &SpeedrunHandler{
		accountService:  accountService,
		speedrunService: speedrunService,
	}
}

// Summary handles GET /api/v1/players/{id}/speedruns
func (h *SpeedrunHandler) Summary(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.GetPlayer(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	summary, err := h.speedrunService.Summary(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.SpeedrunSummaryFromService(summary))
}

// Record handles POST /api/v1/players/{id}/speedruns
func (h *SpeedrunHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req request.SpeedrunRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.LevelID == "" {
		WriteError(w, NewInvalidRequestError("level_id is required"))
		return
	}

	d, err := durationFromMS(req.DurationMS)
	if err != nil {
		WriteError(w, err)
		return
	}

	run, err := h.speedrunService.RecordCompletion(r.Context(), playerIDFromPath(r),
		model.SpeedrunLevelID(req.LevelID), d)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.CompletedSpeedrunFromModel(run))
}
