package models

import (
	"time"
)

// DefaultFolderName is created for every user at registration and can
// never be renamed or deleted.
const DefaultFolderName = "All"

type Folder struct {
	ID        uint      `json:"folder_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_user_folder;not null"`
	Name      string    `json:"name" gorm:"uniqueIndex:idx_user_folder;not null"`
}

// Trivia is a question/answer pair a user saved into one of their folders.
type Trivia struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Question  string    `json:"question" gorm:"not null"`
	Answer    string    `json:"answer" gorm:"not null"`
	FolderID  uint      `json:"folder_id" gorm:"index;not null"`
}

func (Trivia) TableName() string {
	return "trivia"
}

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

type Difficulty struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"difficulty" gorm:"uniqueIndex;not null"`
}
