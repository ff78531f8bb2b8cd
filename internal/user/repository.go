package user

import (
	"errors"
	"fmt"
	"log"

	"triviahub/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// USERS ----------------------------------------------------------------

func (r *Repository) FindAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("username").Find(&users).Error
	return users, err
}

func (r *Repository) GetByUsername(username string) (*models.User, error) {
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

// Update applies a partial update; only the provided columns change.
func (r *Repository) Update(username string, updates map[string]interface{}) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no user %s", models.ErrNotFound, username)
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("username = ?", user.Username).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Delete(username string) error {
	result := r.db.Where("username = ?", username).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no user %s", models.ErrNotFound, username)
	}
	return nil
}

// FOLDERS --------------------------------------------------------------

// GetFolders lists a user's folders with "All" first, the rest by name.
func (r *Repository) GetFolders(userID uint) ([]models.Folder, error) {
	var all models.Folder
	err := r.db.Where("user_id = ? AND name = ?", userID, models.DefaultFolderName).
		First(&all).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var rest []models.Folder
	if err := r.db.Where("user_id = ? AND name != ?", userID, models.DefaultFolderName).
		Order("name").Find(&rest).Error; err != nil {
		return nil, err
	}

	if all.ID == 0 {
		return rest, nil
	}
	return append([]models.Folder{all}, rest...), nil
}

func (r *Repository) CreateFolder(userID uint, name string) (*models.Folder, error) {
	folder := models.Folder{UserID: userID, Name: name}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Folder{}).
			Where("user_id = ? AND name = ?", userID, name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: duplicate folder name %s", models.ErrBadRequest, name)
		}
		return tx.Create(&folder).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *Repository) GetFolder(folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.First(&folder, folderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no such folder %d", models.ErrNotFound, folderID)
		}
		return nil, err
	}
	return &folder, nil
}

func (r *Repository) GetFolderTrivia(folderID uint) (*models.FolderDTO, error) {
	folder, err := r.GetFolder(folderID)
	if err != nil {
		return nil, err
	}

	trivia := []models.Trivia{}
	if err := r.db.Where("folder_id = ?", folderID).Find(&trivia).Error; err != nil {
		return nil, err
	}

	return &models.FolderDTO{
		FolderID: folder.ID,
		Name:     folder.Name,
		Trivia:   trivia,
	}, nil
}

func (r *Repository) RenameFolder(folderID, userID uint, newName string) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Folder{}).
			Where("user_id = ? AND name = ? AND id != ?", userID, newName, folderID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: duplicate folder name %s", models.ErrBadRequest, newName)
		}

		if err := tx.First(&folder, folderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no such folder %d", models.ErrNotFound, folderID)
			}
			return err
		}

		return tx.Model(&folder).Update("name", newName).Error
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolder removes a folder and everything saved in it. The default
// "All" folder cannot be deleted.
func (r *Repository) DeleteFolder(folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&folder, folderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no such folder %d", models.ErrNotFound, folderID)
			}
			return err
		}
		if folder.Name == models.DefaultFolderName {
			return fmt.Errorf("%w: folder %q cannot be deleted", models.ErrBadRequest, models.DefaultFolderName)
		}
		if err := tx.Where("folder_id = ?", folderID).Delete(&models.Trivia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Deleted folder %d (%s)", folder.ID, folder.Name)
	return &folder, nil
}

// SAVED TRIVIA ---------------------------------------------------------

func (r *Repository) GetAllFav(userID uint) ([]models.Trivia, error) {
	trivia := []models.Trivia{}
	err := r.db.Where("user_id = ?", userID).Find(&trivia).Error
	return trivia, err
}

// AddFav saves a question/answer pair into the named folder of the user.
func (r *Repository) AddFav(userID uint, question, answer, folderName string) (*models.Trivia, error) {
	var folder models.Folder
	err := r.db.Where("user_id = ? AND name = ?", userID, folderName).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no folder %s for user %d", models.ErrNotFound, folderName, userID)
		}
		return nil, err
	}

	trivia := models.Trivia{
		UserID:   userID,
		Question: question,
		Answer:   answer,
		FolderID: folder.ID,
	}
	if err := r.db.Create(&trivia).Error; err != nil {
		return nil, err
	}
	return &trivia, nil
}

func (r *Repository) GetTrivia(triviaID uint) (*models.Trivia, error) {
	var trivia models.Trivia
	err := r.db.First(&trivia, triviaID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no such trivia %d", models.ErrNotFound, triviaID)
		}
		return nil, err
	}
	return &trivia, nil
}

// MoveTrivia reassigns a saved question to another folder owned by the
// same user.
func (r *Repository) MoveTrivia(triviaID, userID uint, folderName string) (*models.Trivia, error) {
	var trivia models.Trivia
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&trivia, triviaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no such trivia %d", models.ErrNotFound, triviaID)
			}
			return err
		}

		var folder models.Folder
		err := tx.Where("user_id = ? AND name = ?", userID, folderName).First(&folder).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no folder %s for user %d", models.ErrNotFound, folderName, userID)
			}
			return err
		}

		return tx.Model(&trivia).Update("folder_id", folder.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &trivia, nil
}

func (r *Repository) DeleteTrivia(triviaID uint) error {
	result := r.db.Delete(&models.Trivia{}, triviaID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: no such trivia %d", models.ErrNotFound, triviaID)
	}
	return nil
}

// BADGES ---------------------------------------------------------------

func (r *Repository) GetBadges(userID uint) ([]models.Badge, error) {
	badges := []models.Badge{}
	err := r.db.Where("user_id = ?", userID).Order("date desc").Find(&badges).Error
	return badges, err
}

// AwardBadge grants a badge once. Awarding the same badge again is not
// an error; it reports awarded=false and leaves the stored row alone.
func (r *Repository) AwardBadge(badge *models.Badge) (bool, error) {
	awarded := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Badge{}).
			Where("user_id = ? AND name = ?", badge.UserID, badge.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		awarded = true
		return tx.Create(badge).Error
	})
	return awarded, err
}
