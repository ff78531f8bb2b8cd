package auth

import (
	"errors"
	"fmt"

	"triviahub/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no user %s", models.ErrNotFound, username)
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts the user together with their zeroed stats row and
// the default "All" folder, all in one transaction.
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ?", user.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: duplicate username %s", models.ErrBadRequest, user.Username)
		}

		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Stats{UserID: user.ID, Title: "Newbie"}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Folder{UserID: user.ID, Name: models.DefaultFolderName}).Error
	})
}
