package models

import (
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin" gorm:"default:false"`
}

// Stats holds one row per user, created all-zero at registration.
type Stats struct {
	UserID           uint   `json:"user_id" gorm:"primaryKey"`
	Level            int    `json:"level" gorm:"default:0"`
	Title            string `json:"title" gorm:"default:Newbie"`
	Points           int    `json:"points" gorm:"default:0"`
	QuizzesCompleted int    `json:"quizzes_completed" gorm:"default:0"`
}

func (Stats) TableName() string {
	return "stats"
}

type Badge struct {
	ID     uint      `json:"id" gorm:"primaryKey"`
	UserID uint      `json:"user_id" gorm:"uniqueIndex:idx_user_badge;not null"`
	Name   string    `json:"badge_name" gorm:"uniqueIndex:idx_user_badge;not null"`
	URL    string    `json:"badge_url"`
	Date   time.Time `json:"date"`
}
