package user

import (
	"fmt"
	"strings"
	"time"

	"triviahub/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) FindAll() ([]models.User, error) {
	return s.repo.FindAll()
}

func (s *Service) Get(username string) (*models.User, error) {
	return s.repo.GetByUsername(username)
}

// UpdateRequest carries the optional profile fields of a partial update.
type UpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (s *Service) Update(username string, req UpdateRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password"] = string(hashed)
	}
	return s.repo.Update(username, updates)
}

func (s *Service) Delete(username string) error {
	return s.repo.Delete(username)
}

// FOLDERS --------------------------------------------------------------

func (s *Service) GetFolders(username string) ([]models.Folder, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.GetFolders(user.ID)
}

func (s *Service) CreateFolder(username, name string) (*models.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: folder name is required", models.ErrBadRequest)
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateFolder(user.ID, name)
}

func (s *Service) GetFolderTrivia(folderID uint) (*models.FolderDTO, error) {
	return s.repo.GetFolderTrivia(folderID)
}

func (s *Service) RenameFolder(username string, folderID uint, newName string) (*models.Folder, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("%w: folder name is required", models.ErrBadRequest)
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.RenameFolder(folderID, user.ID, newName)
}

func (s *Service) DeleteFolder(folderID uint) (*models.Folder, error) {
	return s.repo.DeleteFolder(folderID)
}

// SAVED TRIVIA ---------------------------------------------------------

func (s *Service) GetAllFav(username string) ([]models.Trivia, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAllFav(user.ID)
}

func (s *Service) AddFav(username, question, answer, folderName string) (*models.Trivia, error) {
	if question == "" || answer == "" {
		return nil, fmt.Errorf("%w: question and answer are required", models.ErrBadRequest)
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if folderName == "" {
		folderName = models.DefaultFolderName
	}
	return s.repo.AddFav(user.ID, question, answer, folderName)
}

func (s *Service) GetTrivia(triviaID uint) (*models.Trivia, error) {
	return s.repo.GetTrivia(triviaID)
}

func (s *Service) MoveTrivia(username string, triviaID uint, folderName string) (*models.Trivia, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.MoveTrivia(triviaID, user.ID, folderName)
}

func (s *Service) DeleteTrivia(triviaID uint) error {
	return s.repo.DeleteTrivia(triviaID)
}

// BADGES ---------------------------------------------------------------

func (s *Service) GetBadges(username string) ([]models.Badge, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBadges(user.ID)
}

func (s *Service) AwardBadge(username, badgeName string) (*models.Badge, bool, error) {
	if badgeName == "" {
		return nil, false, fmt.Errorf("%w: badge name is required", models.ErrBadRequest)
	}
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, false, err
	}

	badge := &models.Badge{
		UserID: user.ID,
		Name:   badgeName,
		URL:    fmt.Sprintf("/badges/%s.gif", strings.ToLower(badgeName)),
		Date:   time.Now(),
	}
	awarded, err := s.repo.AwardBadge(badge)
	if err != nil {
		return nil, false, err
	}
	return badge, awarded, nil
}
