package domain

import (
	"time"
)

// Favorite marks a game as favorited by a user. The (UserID, GameID)
// pair is unique.
type Favorite struct {
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
}
