package game

// GameStatus represents the current state of a round
type GameStatus string

const (
	StatusRunning  GameStatus = "RUNNING"
	StatusGameOver GameStatus = "GAME_OVER"
)
