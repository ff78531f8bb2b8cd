package models

import (
	"time"
)

// PersonalBest keeps a user's best result per category/difficulty pair.
// Points never decrease once the row exists.
type PersonalBest struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex:idx_personal_best;not null"`
	CategoryID   uint      `json:"category_id" gorm:"uniqueIndex:idx_personal_best;not null"`
	DifficultyID uint      `json:"difficulty_id" gorm:"uniqueIndex:idx_personal_best;not null"`
	Score        int       `json:"score"`
	Points       int       `json:"points"`
	Date         time.Time `json:"date"`
}

// LeaderboardEntry is the single title holder for a category/difficulty
// board. An accepted update reassigns UserID to the submitter.
type LeaderboardEntry struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"uniqueIndex:idx_board_key;not null"`
	DifficultyID uint      `json:"difficulty_id" gorm:"uniqueIndex:idx_board_key;not null"`
	UserID       uint      `json:"user_id" gorm:"not null"`
	Score        int       `json:"score"`
	Points       int       `json:"points"`
	Date         time.Time `json:"date"`
}

// PlayedSession is one completed quiz attempt. SessionToken is generated
// once on the client so retries of the same attempt are rejected.
type PlayedSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	SessionToken string    `json:"session_token" gorm:"uniqueIndex;not null"`
	CategoryID   uint      `json:"category_id" gorm:"not null"`
	DifficultyID uint      `json:"difficulty_id" gorm:"not null"`
	Score        int       `json:"score"`
	Points       int       `json:"points"`
	Date         time.Time `json:"date"`
}

type PlayedCount struct {
	ID           uint `json:"-" gorm:"primaryKey"`
	UserID       uint `json:"user_id" gorm:"uniqueIndex:idx_played_key;not null"`
	CategoryID   uint `json:"category_id" gorm:"uniqueIndex:idx_played_key;not null"`
	DifficultyID uint `json:"difficulty_id" gorm:"uniqueIndex:idx_played_key;not null"`
	Played       int  `json:"played" gorm:"default:0"`
}
