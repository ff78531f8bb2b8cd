package models

import (
	"time"
)

// StatsDTO is the stats row plus the derived progress fields consumed by
// the level bar on the client.
type StatsDTO struct {
	UserID           uint   `json:"user_id"`
	Level            int    `json:"level"`
	Title            string `json:"title"`
	Points           int    `json:"points"`
	QuizzesCompleted int    `json:"quizzes_completed"`
	RemainingPoints  int    `json:"remaining_points"`
	TierSize         int    `json:"tier_size"`
}

// ScoreDTO flattens a best-score row with its category/difficulty names.
type ScoreDTO struct {
	Username   string    `json:"username,omitempty"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Points     int       `json:"points"`
	Date       time.Time `json:"date"`
}

type SessionDTO struct {
	ID         uint      `json:"id"`
	Category   string    `json:"category"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Points     int       `json:"points"`
	Date       time.Time `json:"date"`
}

type PlayedCountDTO struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Played     int    `json:"played"`
}

// FolderDTO is a folder together with the trivia saved inside it.
type FolderDTO struct {
	FolderID uint     `json:"folder_id"`
	Name     string   `json:"name"`
	Trivia   []Trivia `json:"trivia"`
}
