package progression

import (
	"errors"
	"fmt"
	"log"
	"time"

	"triviahub/internal/models"

	"gorm.io/gorm"
)

const (
	// sessionLimit caps the per-user play history; the oldest record is
	// evicted synchronously when an insert pushes the count past it.
	sessionLimit = 15

	// leaderboardFloor is the qualifying minimum for claiming an empty
	// leaderboard slot. A first submission must exceed it (exclusive).
	leaderboardFloor = 80
)

// Outcome tags the result of a best-score upsert so callers branch on the
// tag instead of inspecting the returned row.
type Outcome int

const (
	Unchanged Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "unchanged"
}

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

func (r *Repository) ResolveCategory(name string) (uint, error) {
	var category models.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: no such category %s", models.ErrNotFound, name)
		}
		return 0, err
	}
	return category.ID, nil
}

func (r *Repository) ResolveDifficulty(name string) (uint, error) {
	var difficulty models.Difficulty
	err := r.db.Where("name = ?", name).First(&difficulty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: no such difficulty %s", models.ErrNotFound, name)
		}
		return 0, err
	}
	return difficulty.ID, nil
}

// STATS ----------------------------------------------------------------

func (r *Repository) GetStats(userID uint) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no stats for user %d", models.ErrNotFound, userID)
		}
		return nil, err
	}
	return &stats, nil
}

// ApplyPoints adds earned points to the user's stats row, bumps the
// completed-quiz counter and rederives level and title from the tier
// table. The whole row is replaced inside one transaction or not at all.
func (r *Repository) ApplyPoints(userID uint, earned int) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no stats for user %d", models.ErrNotFound, userID)
			}
			return err
		}

		stats.Points += earned
		stats.QuizzesCompleted++
		stats.Level, stats.Title = LevelFor(stats.Points)

		return tx.Save(&stats).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Applied %d points for user %d: level=%d points=%d", earned, userID, stats.Level, stats.Points)
	return &stats, nil
}

// PERSONAL BEST --------------------------------------------------------

// UpsertPersonalBest inserts a first entry unconditionally; an existing
// entry is overwritten only when the candidate's points are not lower
// than the stored ones. Ties are accepted and refresh the timestamp.
func (r *Repository) UpsertPersonalBest(userID, categoryID, difficultyID uint, score, points int) (Outcome, *models.PersonalBest, error) {
	outcome := Unchanged
	var entry models.PersonalBest

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND category_id = ? AND difficulty_id = ?",
			userID, categoryID, difficultyID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.PersonalBest{
				UserID:       userID,
				CategoryID:   categoryID,
				DifficultyID: difficultyID,
				Score:        score,
				Points:       points,
				Date:         time.Now(),
			}
			outcome = Updated
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if points < entry.Points {
			return nil
		}

		entry.Score = score
		entry.Points = points
		entry.Date = time.Now()
		outcome = Updated
		return tx.Save(&entry).Error
	})
	if err != nil {
		return Unchanged, nil, err
	}
	return outcome, &entry, nil
}

func (r *Repository) GetPersonalBests(username, category, difficulty string) ([]models.ScoreDTO, error) {
	query := r.db.Table("personal_bests p").
		Select(`c.name AS category, d.name AS difficulty, p.score, p.points, p.date`).
		Joins("JOIN categories c ON p.category_id = c.id").
		Joins("JOIN difficulties d ON p.difficulty_id = d.id").
		Joins("JOIN users u ON p.user_id = u.id").
		Where("u.username = ?", username)

	if category != "" {
		query = query.Where("c.name = ?", category)
	}
	if difficulty != "" {
		query = query.Where("d.name = ?", difficulty)
	}

	var scores []models.ScoreDTO
	if err := query.Order("c.name, d.id").Scan(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// LEADERBOARD ----------------------------------------------------------

// UpsertLeaderboard differs from the personal-best rule only in its
// insert gate: a brand-new board row is created only when the candidate
// clears the qualifying floor, so near-zero scores cannot claim an
// uncontested board. An accepted update also transfers the slot to the
// candidate's user.
func (r *Repository) UpsertLeaderboard(userID, categoryID, difficultyID uint, score, points int) (Outcome, *models.LeaderboardEntry, error) {
	outcome := Unchanged
	var entry models.LeaderboardEntry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("category_id = ? AND difficulty_id = ?",
			categoryID, difficultyID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if points <= leaderboardFloor {
				return nil
			}
			entry = models.LeaderboardEntry{
				CategoryID:   categoryID,
				DifficultyID: difficultyID,
				UserID:       userID,
				Score:        score,
				Points:       points,
				Date:         time.Now(),
			}
			outcome = Updated
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		if points < entry.Points {
			return nil
		}

		entry.UserID = userID
		entry.Score = score
		entry.Points = points
		entry.Date = time.Now()
		outcome = Updated
		return tx.Save(&entry).Error
	})
	if err != nil {
		return Unchanged, nil, err
	}
	return outcome, &entry, nil
}

func (r *Repository) GetLeaderboard(category, difficulty string) ([]models.ScoreDTO, error) {
	query := r.db.Table("leaderboard_entries l").
		Select(`c.name AS category, d.name AS difficulty, u.username, l.score, l.points, l.date`).
		Joins("JOIN categories c ON l.category_id = c.id").
		Joins("JOIN difficulties d ON l.difficulty_id = d.id").
		Joins("JOIN users u ON l.user_id = u.id")

	if category != "" {
		query = query.Where("c.name = ?", category)
	}
	if difficulty != "" {
		query = query.Where("d.name = ?", difficulty)
	}

	var scores []models.ScoreDTO
	if err := query.Order("c.name, d.id").Scan(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// SESSIONS -------------------------------------------------------------

// AppendSession records one completed attempt. A reused session token is
// rejected before anything is written, and when the insert pushes the
// user past the retention cap the single oldest record is deleted in the
// same transaction.
func (r *Repository) AppendSession(session *models.PlayedSession) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PlayedSession{}).
			Where("session_token = ?", session.SessionToken).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: session %s already recorded", models.ErrBadRequest, session.SessionToken)
		}

		if err := tx.Create(session).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.PlayedSession{}).
			Where("user_id = ?", session.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count <= sessionLimit {
			return nil
		}

		var oldest models.PlayedSession
		if err := tx.Where("user_id = ?", session.UserID).
			Order("date asc").First(&oldest).Error; err != nil {
			return err
		}
		log.Printf("Session cap reached for user %d, evicting session %d", session.UserID, oldest.ID)
		return tx.Delete(&oldest).Error
	})
}

func (r *Repository) GetSessions(username string, limit int) ([]models.SessionDTO, error) {
	query := r.db.Table("played_sessions p").
		Select(`p.id, c.name AS category, d.name AS difficulty, p.score, p.points, p.date`).
		Joins("JOIN users u ON p.user_id = u.id").
		Joins("JOIN categories c ON p.category_id = c.id").
		Joins("JOIN difficulties d ON p.difficulty_id = d.id").
		Where("u.username = ?", username).
		Order("p.date DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var sessions []models.SessionDTO
	if err := query.Scan(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *Repository) DeleteSession(id uint) (*models.PlayedSession, error) {
	var session models.PlayedSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no session %d", models.ErrNotFound, id)
			}
			return err
		}
		return tx.Delete(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *Repository) CountSessions(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PlayedSession{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// PLAYED COUNTS --------------------------------------------------------

// IncrementPlayed creates a zero-initialized counter on first play and
// bumps it in place afterwards, returning the new value.
func (r *Repository) IncrementPlayed(userID, categoryID, difficultyID uint, delta int) (int, error) {
	var counter models.PlayedCount
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND category_id = ? AND difficulty_id = ?",
			userID, categoryID, difficultyID).First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.PlayedCount{
				UserID:       userID,
				CategoryID:   categoryID,
				DifficultyID: difficultyID,
				Played:       delta,
			}
			return tx.Create(&counter).Error
		}
		if err != nil {
			return err
		}
		counter.Played += delta
		return tx.Save(&counter).Error
	})
	if err != nil {
		return 0, err
	}
	return counter.Played, nil
}

func (r *Repository) GetPlayedCount(userID, categoryID, difficultyID uint) (int, error) {
	var counter models.PlayedCount
	err := r.db.Where("user_id = ? AND category_id = ? AND difficulty_id = ?",
		userID, categoryID, difficultyID).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Played, nil
}

func (r *Repository) GetPlayedCounts(username, category, difficulty string) ([]models.PlayedCountDTO, error) {
	query := r.db.Table("played_counts p").
		Select(`c.name AS category, d.name AS difficulty, p.played`).
		Joins("JOIN categories c ON p.category_id = c.id").
		Joins("JOIN difficulties d ON p.difficulty_id = d.id").
		Joins("JOIN users u ON p.user_id = u.id").
		Where("u.username = ?", username)

	if category != "" {
		query = query.Where("c.name = ?", category)
	}
	if difficulty != "" {
		query = query.Where("d.name = ?", difficulty)
	}

	var counts []models.PlayedCountDTO
	if err := query.Order("c.name, d.id").Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
