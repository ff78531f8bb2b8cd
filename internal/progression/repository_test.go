package progression

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"triviahub/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Stats{},
		&models.Category{},
		&models.Difficulty{},
		&models.PersonalBest{},
		&models.LeaderboardEntry{},
		&models.PlayedSession{},
		&models.PlayedCount{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedPlayer creates a user with a zeroed stats row plus the Sports/easy
// reference rows and returns the three ids.
func seedPlayer(t *testing.T, db *gorm.DB, username string) (userID, categoryID, difficultyID uint) {
	t.Helper()

	user := models.User{Username: username, Password: "x", Email: username + "@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.Create(&models.Stats{UserID: user.ID, Title: "Newbie"}).Error; err != nil {
		t.Fatalf("failed to seed stats: %v", err)
	}

	category := models.Category{Name: "Sports"}
	if err := db.Where(category).FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	difficulty := models.Difficulty{Name: "easy"}
	if err := db.Where(difficulty).FirstOrCreate(&difficulty).Error; err != nil {
		t.Fatalf("failed to seed difficulty: %v", err)
	}
	return user.ID, category.ID, difficulty.ID
}

func TestApplyPoints(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, _, _ := seedPlayer(t, db, "hari")

	stats, err := repo.ApplyPoints(userID, 900)
	if err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}
	if stats.Points != 900 || stats.Level != 4 || stats.Title != "Newbie" {
		t.Errorf("after 900 points: got level=%d title=%s points=%d", stats.Level, stats.Title, stats.Points)
	}
	if stats.QuizzesCompleted != 1 {
		t.Errorf("expected 1 completed quiz, got %d", stats.QuizzesCompleted)
	}

	// Crossing a tier boundary rederives both level and title.
	stats, err = repo.ApplyPoints(userID, 111)
	if err != nil {
		t.Fatalf("ApplyPoints failed: %v", err)
	}
	if stats.Points != 1011 || stats.Level != 5 || stats.Title != "Apprentice" {
		t.Errorf("after 1011 points: got level=%d title=%s points=%d", stats.Level, stats.Title, stats.Points)
	}
	if stats.QuizzesCompleted != 2 {
		t.Errorf("expected 2 completed quizzes, got %d", stats.QuizzesCompleted)
	}
}

func TestApplyPointsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ApplyPoints(9999, 100)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertPersonalBest(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	// First entry is accepted regardless of magnitude.
	outcome, entry, err := repo.UpsertPersonalBest(userID, categoryID, difficultyID, 3, 30)
	if err != nil {
		t.Fatalf("UpsertPersonalBest failed: %v", err)
	}
	if outcome != Updated {
		t.Errorf("expected first entry to be accepted, got %v", outcome)
	}

	// A lower candidate leaves the stored entry alone.
	outcome, entry, err = repo.UpsertPersonalBest(userID, categoryID, difficultyID, 2, 20)
	if err != nil {
		t.Fatalf("UpsertPersonalBest failed: %v", err)
	}
	if outcome != Unchanged || entry.Points != 30 {
		t.Errorf("lower candidate should be rejected: outcome=%v points=%d", outcome, entry.Points)
	}

	// Ties are accepted and refresh the record.
	outcome, _, err = repo.UpsertPersonalBest(userID, categoryID, difficultyID, 5, 30)
	if err != nil {
		t.Fatalf("UpsertPersonalBest failed: %v", err)
	}
	if outcome != Updated {
		t.Errorf("equal points should overwrite, got %v", outcome)
	}

	// Higher candidate wins.
	outcome, entry, err = repo.UpsertPersonalBest(userID, categoryID, difficultyID, 9, 95)
	if err != nil {
		t.Fatalf("UpsertPersonalBest failed: %v", err)
	}
	if outcome != Updated || entry.Points != 95 || entry.Score != 9 {
		t.Errorf("higher candidate should win: outcome=%v score=%d points=%d", outcome, entry.Score, entry.Points)
	}

	var count int64
	db.Model(&models.PersonalBest{}).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one personal best row, got %d", count)
	}
}

func TestUpsertLeaderboardInsertGate(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	// At the floor exactly: not enough to claim an empty board.
	outcome, _, err := repo.UpsertLeaderboard(userID, categoryID, difficultyID, 8, 80)
	if err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}
	if outcome != Unchanged {
		t.Errorf("80 points must not claim an empty board, got %v", outcome)
	}

	var count int64
	db.Model(&models.LeaderboardEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no board rows after rejected insert, got %d", count)
	}

	// One past the floor claims the slot.
	outcome, entry, err := repo.UpsertLeaderboard(userID, categoryID, difficultyID, 8, 81)
	if err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}
	if outcome != Updated || entry.Points != 81 {
		t.Errorf("81 points should claim an empty board: outcome=%v points=%d", outcome, entry.Points)
	}
}

func TestUpsertLeaderboardTransfersSlot(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	holderID, categoryID, difficultyID := seedPlayer(t, db, "holder")
	challengerID, _, _ := seedPlayer(t, db, "challenger")

	if _, _, err := repo.UpsertLeaderboard(holderID, categoryID, difficultyID, 9, 90); err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}

	// A weaker challenge leaves the holder in place.
	outcome, entry, err := repo.UpsertLeaderboard(challengerID, categoryID, difficultyID, 8, 85)
	if err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}
	if outcome != Unchanged || entry.UserID != holderID {
		t.Errorf("weaker challenge must not take the slot: outcome=%v holder=%d", outcome, entry.UserID)
	}

	// A tie dethrones: the board favors the most recent equal run.
	outcome, entry, err = repo.UpsertLeaderboard(challengerID, categoryID, difficultyID, 9, 90)
	if err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}
	if outcome != Updated || entry.UserID != challengerID {
		t.Errorf("equal challenge should transfer the slot: outcome=%v holder=%d", outcome, entry.UserID)
	}
}

func TestAppendSessionRejectsReplay(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	session := &models.PlayedSession{
		UserID:       userID,
		SessionToken: "tok-1",
		CategoryID:   categoryID,
		DifficultyID: difficultyID,
		Score:        7,
		Points:       70,
		Date:         time.Now(),
	}
	if err := repo.AppendSession(session); err != nil {
		t.Fatalf("AppendSession failed: %v", err)
	}

	replay := &models.PlayedSession{
		UserID:       userID,
		SessionToken: "tok-1",
		CategoryID:   categoryID,
		DifficultyID: difficultyID,
		Date:         time.Now(),
	}
	err := repo.AppendSession(replay)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for reused token, got %v", err)
	}

	count, err := repo.CountSessions(userID)
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if count != 1 {
		t.Errorf("replay must not create a row, have %d sessions", count)
	}
}

func TestAppendSessionEvictsOldest(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < sessionLimit+1; i++ {
		session := &models.PlayedSession{
			UserID:       userID,
			SessionToken: fmt.Sprintf("tok-%d", i),
			CategoryID:   categoryID,
			DifficultyID: difficultyID,
			Score:        i,
			Points:       i * 10,
			Date:         base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.AppendSession(session); err != nil {
			t.Fatalf("AppendSession %d failed: %v", i, err)
		}
	}

	count, err := repo.CountSessions(userID)
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if count != sessionLimit {
		t.Errorf("expected history capped at %d, got %d", sessionLimit, count)
	}

	// The oldest record is the one that went.
	var remaining int64
	db.Model(&models.PlayedSession{}).Where("session_token = ?", "tok-0").Count(&remaining)
	if remaining != 0 {
		t.Errorf("expected oldest session evicted, but tok-0 survived")
	}
	db.Model(&models.PlayedSession{}).Where("session_token = ?", "tok-1").Count(&remaining)
	if remaining != 1 {
		t.Errorf("expected tok-1 to survive eviction")
	}
}

func TestDeleteSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	session := &models.PlayedSession{
		UserID:       userID,
		SessionToken: "tok-1",
		CategoryID:   categoryID,
		DifficultyID: difficultyID,
		Date:         time.Now(),
	}
	if err := repo.AppendSession(session); err != nil {
		t.Fatalf("AppendSession failed: %v", err)
	}

	deleted, err := repo.DeleteSession(session.ID)
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if deleted.SessionToken != "tok-1" {
		t.Errorf("deleted wrong session: %s", deleted.SessionToken)
	}

	_, err = repo.DeleteSession(session.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing session, got %v", err)
	}
}

func TestIncrementPlayed(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	played, err := repo.GetPlayedCount(userID, categoryID, difficultyID)
	if err != nil {
		t.Fatalf("GetPlayedCount failed: %v", err)
	}
	if played != 0 {
		t.Errorf("expected zero plays before first increment, got %d", played)
	}

	for want := 1; want <= 3; want++ {
		played, err = repo.IncrementPlayed(userID, categoryID, difficultyID, 1)
		if err != nil {
			t.Fatalf("IncrementPlayed failed: %v", err)
		}
		if played != want {
			t.Errorf("expected played=%d, got %d", want, played)
		}
	}

	var count int64
	db.Model(&models.PlayedCount{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single counter row, got %d", count)
	}
}

func TestGetLeaderboardFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	userID, categoryID, difficultyID := seedPlayer(t, db, "hari")

	history := models.Category{Name: "History"}
	if err := db.Create(&history).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	if _, _, err := repo.UpsertLeaderboard(userID, categoryID, difficultyID, 9, 90); err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}
	if _, _, err := repo.UpsertLeaderboard(userID, history.ID, difficultyID, 10, 100); err != nil {
		t.Fatalf("UpsertLeaderboard failed: %v", err)
	}

	all, err := repo.GetLeaderboard("", "")
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 board rows, got %d", len(all))
	}

	sports, err := repo.GetLeaderboard("Sports", "easy")
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(sports) != 1 || sports[0].Points != 90 || sports[0].Username != "hari" {
		t.Errorf("unexpected filtered board: %+v", sports)
	}
}
