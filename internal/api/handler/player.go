package handler

import (
	"net/http"

	"github.com/mcoot/tactics-progress/internal/api/request"
	"github.com/mcoot/tactics-progress/internal/api/response"
	"github.com/mcoot/tactics-progress/internal/services/account"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	accountService *account.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(accountService *account.Service) *PlayerHandler {
	return &PlayerHandler{
		accountService: accountService,
	}
}

// Register handles POST /api/v1/players
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.accountService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.PlayerFromModel(player))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	player, err := h.accountService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.PlayerFromModel(player))
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.GetPlayer(r.Context(), playerIDFromPath(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.PlayerFromModel(player))
}
