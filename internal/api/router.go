package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tactics-progress/internal/api/handler"
	"github.com/mcoot/tactics-progress/internal/api/middleware"
	"github.com/mcoot/tactics-progress/internal/api/response"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/services/infinity"
	"github.com/mcoot/tactics-progress/internal/services/repetition"
	"github.com/mcoot/tactics-progress/internal/services/speedrun"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	AccountService    *account.Service
	InfinityService   *infinity.Service
	SpeedrunService   *speedrun.Service
	RepetitionService *repetition.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AccountService)
	infinityHandler := handler.NewInfinityHandler(cfg.AccountService, cfg.InfinityService)
	speedrunHandler := handler.NewSpeedrunHandler(cfg.AccountService, cfg.SpeedrunService)
	repetitionHandler := handler.NewRepetitionHandler(cfg.AccountService, cfg.RepetitionService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.RequestCache)

	// Player routes
	api.HandleFunc("/players", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)

	players := api.PathPrefix("/players/{id}").Subrouter()

	// Infinity routes
	players.HandleFunc("/infinity", infinityHandler.Status).Methods(http.MethodGet)
	players.HandleFunc("/infinity/solves", infinityHandler.Solve).Methods(http.MethodPost)

	// Speedrun routes
	players.HandleFunc("/speedruns", speedrunHandler.Summary).Methods(http.MethodGet)
	players.HandleFunc("/speedruns", speedrunHandler.Record).Methods(http.MethodPost)

	// Repetition routes
	players.HandleFunc("/repetition", repetitionHandler.Status).Methods(http.MethodGet)
	players.HandleFunc("/repetition/levels/{level}/rounds", repetitionHandler.Rounds).Methods(http.MethodGet)
	players.HandleFunc("/repetition/levels/{level}/rounds", repetitionHandler.RecordRound).Methods(http.MethodPost)
	players.HandleFunc("/repetition/levels/{level}/completions", repetitionHandler.Complete).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, response.Health{Status: "ok"})
}
