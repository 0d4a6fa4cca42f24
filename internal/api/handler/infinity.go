package handler

import (
	"net/http"

	"github.com/mcoot/tactics-progress/internal/api/request"
	"github.com/mcoot/tactics-progress/internal/api/response"
	"github.com/mcoot/tactics-progress/internal/model"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/services/infinity"
)

// InfinityHandler handles infinity ladder endpoints
type InfinityHandler struct {
	accountService  *account.Service
	infinityService *infinity.Service
}

// NewInfinityHandler creates a new infinity handler
func NewInfinityHandler(accountService *account.Service, infinityService *infinity.Service) *InfinityHandler {
	return &InfinityHandler{
		accountService:  accountService,
		infinityService: infinityService,
	}
}

// Status handles GET /api/v1/players/{id}/infinity
func (h *InfinityHandler) Status(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.GetPlayer(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	status, err := h.infinityService.Status(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.InfinityStatusFromService(status))
}

// Solve handles POST /api/v1/players/{id}/infinity/solves
func (h *InfinityHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req request.SolveRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.PuzzleID == "" {
		WriteError(w, NewInvalidRequestError("puzzle_id is required"))
		return
	}
	difficulty := model.Difficulty(req.Difficulty)
	if !difficulty.IsValid() {
		WriteError(w, model.ErrInvalidDifficulty)
		return
	}

	solve, err := h.infinityService.RecordSolve(r.Context(), playerIDFromPath(r), model.PuzzleID(req.PuzzleID), difficulty)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.SolveFromModel(solve))
}
