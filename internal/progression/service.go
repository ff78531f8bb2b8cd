package progression

import (
	"fmt"
	"log"
	"time"

	"triviahub/internal/models"
)

// leaderboardAttemptLimit caps how many plays per category/difficulty may
// contend for the public leaderboard. The played counter itself is just
// informational; this rule is enforced here, in the orchestrator.
const leaderboardAttemptLimit = 3

// BoardCache is the read-through cache for leaderboard listings.
type BoardCache interface {
	GetBoard(category, difficulty string) ([]models.ScoreDTO, error)
	SetBoard(category, difficulty string, entries []models.ScoreDTO) error
	InvalidateBoard(category, difficulty string) error
}

// Broadcaster pushes board changes to subscribed websocket clients.
type Broadcaster interface {
	BroadcastMessage(board, messageType string, data interface{})
}

type Service struct {
	repo  *Repository
	cache BoardCache
	hub   Broadcaster
}

func NewService(repo *Repository, cache BoardCache, hub Broadcaster) *Service {
	return &Service{repo: repo, cache: cache, hub: hub}
}

// STATS ----------------------------------------------------------------

func (s *Service) GetStats(username string) (*models.StatsDTO, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetStats(user.ID)
	if err != nil {
		return nil, err
	}
	return statsDTO(stats), nil
}

func (s *Service) UpdatePoints(username string, earned int) (*models.StatsDTO, error) {
	if earned < 0 {
		return nil, fmt.Errorf("%w: earned points must be non-negative", models.ErrBadRequest)
	}
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.ApplyPoints(user.ID, earned)
	if err != nil {
		return nil, err
	}
	return statsDTO(stats), nil
}

func statsDTO(stats *models.Stats) *models.StatsDTO {
	progress := CalcProgress(stats.Points)
	return &models.StatsDTO{
		UserID:           stats.UserID,
		Level:            stats.Level,
		Title:            stats.Title,
		Points:           stats.Points,
		QuizzesCompleted: stats.QuizzesCompleted,
		RemainingPoints:  progress.Remaining,
		TierSize:         progress.TierSize,
	}
}

// SCORES ---------------------------------------------------------------

func (s *Service) GetScores(username, category, difficulty string) ([]models.ScoreDTO, error) {
	if _, err := s.repo.GetUserByUsername(username); err != nil {
		return nil, err
	}
	return s.repo.GetPersonalBests(username, category, difficulty)
}

func (s *Service) UpdateScore(username, category, difficulty string, score, points int) (Outcome, *models.PersonalBest, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return Unchanged, nil, err
	}
	categoryID, err := s.repo.ResolveCategory(category)
	if err != nil {
		return Unchanged, nil, err
	}
	difficultyID, err := s.repo.ResolveDifficulty(difficulty)
	if err != nil {
		return Unchanged, nil, err
	}
	return s.repo.UpsertPersonalBest(user.ID, categoryID, difficultyID, score, points)
}

// LEADERBOARD ----------------------------------------------------------

func (s *Service) GetLeaderboard(category, difficulty string) ([]models.ScoreDTO, error) {
	// Only fully specified boards are cached; the catch-all listing goes
	// straight to the database.
	cacheable := s.cache != nil && category != "" && difficulty != ""

	if cacheable {
		if entries, err := s.cache.GetBoard(category, difficulty); err == nil {
			return entries, nil
		}
	}

	entries, err := s.repo.GetLeaderboard(category, difficulty)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetBoard(category, difficulty, entries); err != nil {
			log.Printf("Error caching board %s/%s: %v", category, difficulty, err)
		}
	}
	return entries, nil
}

func (s *Service) UpdateLeaderboardScore(username, category, difficulty string, score, points int) (Outcome, *models.LeaderboardEntry, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return Unchanged, nil, err
	}
	categoryID, err := s.repo.ResolveCategory(category)
	if err != nil {
		return Unchanged, nil, err
	}
	difficultyID, err := s.repo.ResolveDifficulty(difficulty)
	if err != nil {
		return Unchanged, nil, err
	}

	outcome, entry, err := s.repo.UpsertLeaderboard(user.ID, categoryID, difficultyID, score, points)
	if err != nil {
		return Unchanged, nil, err
	}
	if outcome == Updated {
		s.publishBoardChange(username, category, difficulty, entry)
	}
	return outcome, entry, nil
}

// publishBoardChange drops the stale cached board and notifies live
// subscribers of the new title holder.
func (s *Service) publishBoardChange(username, category, difficulty string, entry *models.LeaderboardEntry) {
	if s.cache != nil {
		if err := s.cache.InvalidateBoard(category, difficulty); err != nil {
			log.Printf("Error invalidating board %s/%s: %v", category, difficulty, err)
		}
	}
	if s.hub != nil {
		s.hub.BroadcastMessage(BoardKey(category, difficulty), "leaderboard_update", models.ScoreDTO{
			Username:   username,
			Category:   category,
			Difficulty: difficulty,
			Score:      entry.Score,
			Points:     entry.Points,
			Date:       entry.Date,
		})
	}
}

// BoardKey names the websocket room for one category/difficulty board.
func BoardKey(category, difficulty string) string {
	return category + ":" + difficulty
}

// SESSIONS -------------------------------------------------------------

func (s *Service) GetSessions(username string, limit int) ([]models.SessionDTO, error) {
	if _, err := s.repo.GetUserByUsername(username); err != nil {
		return nil, err
	}
	return s.repo.GetSessions(username, limit)
}

func (s *Service) AddSession(username, sessionToken, category, difficulty string, score, points int) (*models.PlayedSession, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("%w: missing session token", models.ErrBadRequest)
	}
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.repo.ResolveCategory(category)
	if err != nil {
		return nil, err
	}
	difficultyID, err := s.repo.ResolveDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	session := &models.PlayedSession{
		UserID:       user.ID,
		SessionToken: sessionToken,
		CategoryID:   categoryID,
		DifficultyID: difficultyID,
		Score:        score,
		Points:       points,
		Date:         time.Now(),
	}
	if err := s.repo.AppendSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) DeleteSession(id uint) (*models.PlayedSession, error) {
	return s.repo.DeleteSession(id)
}

// PLAYED COUNTS --------------------------------------------------------

func (s *Service) GetPlayedCounts(username, category, difficulty string) ([]models.PlayedCountDTO, error) {
	if _, err := s.repo.GetUserByUsername(username); err != nil {
		return nil, err
	}
	return s.repo.GetPlayedCounts(username, category, difficulty)
}

func (s *Service) IncrementPlayedCount(username, category, difficulty string) (int, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		return 0, err
	}
	categoryID, err := s.repo.ResolveCategory(category)
	if err != nil {
		return 0, err
	}
	difficultyID, err := s.repo.ResolveDifficulty(difficulty)
	if err != nil {
		return 0, err
	}
	return s.repo.IncrementPlayed(user.ID, categoryID, difficultyID, 1)
}

// COMPLETION -----------------------------------------------------------

// CompleteQuizRequest is one finished attempt as reported by the client.
type CompleteQuizRequest struct {
	SessionToken string `json:"session_token"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
	Score        int    `json:"score"`
	Points       int    `json:"points"`
}

// CompleteQuizResult reports what each step of the completion pipeline did.
type CompleteQuizResult struct {
	Session      *models.PlayedSession `json:"session"`
	Stats        *models.StatsDTO      `json:"stats"`
	PersonalBest string                `json:"personal_best"`
	Leaderboard  string                `json:"leaderboard"`
	Played       int                   `json:"played"`
}

// CompleteQuiz runs the full pipeline for a reported attempt: record the
// session (rejecting replays), fold the points into the user's stats,
// try the personal best, bump the played counter and, while the user
// still has board attempts left for this category/difficulty, contend
// for the public leaderboard slot.
func (s *Service) CompleteQuiz(username string, req CompleteQuizRequest) (*CompleteQuizResult, error) {
	if req.Points < 0 || req.Score < 0 {
		return nil, fmt.Errorf("%w: score and points must be non-negative", models.ErrBadRequest)
	}

	session, err := s.AddSession(username, req.SessionToken, req.Category, req.Difficulty, req.Score, req.Points)
	if err != nil {
		return nil, err
	}

	stats, err := s.UpdatePoints(username, req.Points)
	if err != nil {
		return nil, err
	}

	bestOutcome, _, err := s.UpdateScore(username, req.Category, req.Difficulty, req.Score, req.Points)
	if err != nil {
		return nil, err
	}

	played, err := s.IncrementPlayedCount(username, req.Category, req.Difficulty)
	if err != nil {
		return nil, err
	}

	boardOutcome := Unchanged
	if played <= leaderboardAttemptLimit {
		boardOutcome, _, err = s.UpdateLeaderboardScore(username, req.Category, req.Difficulty, req.Score, req.Points)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("User %s exhausted leaderboard attempts for %s/%s (%d plays)",
			username, req.Category, req.Difficulty, played)
	}

	return &CompleteQuizResult{
		Session:      session,
		Stats:        stats,
		PersonalBest: bestOutcome.String(),
		Leaderboard:  boardOutcome.String(),
		Played:       played,
	}, nil
}
