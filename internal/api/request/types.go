package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SolveRequest is the request body for recording an infinity solve
type SolveRequest struct {
	PuzzleID   string `json:"puzzle_id"`
	Difficulty string `json:"difficulty"`
}

// SpeedrunRequest is the request body for recording a speedrun completion
type SpeedrunRequest struct {
	LevelID    string `json:"level_id"`
	DurationMS int64  `json:"duration_ms"`
}

// RoundRequest is the request body for recording a repetition round
type RoundRequest struct {
	DurationMS int64 `json:"duration_ms"`
}
