package progression

import (
	"errors"
	"fmt"
	"testing"

	"triviahub/internal/models"
)

type fakeCache struct {
	boards      map[string][]models.ScoreDTO
	sets, hits  int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{boards: map[string][]models.ScoreDTO{}}
}

func (c *fakeCache) GetBoard(category, difficulty string) ([]models.ScoreDTO, error) {
	entries, ok := c.boards[BoardKey(category, difficulty)]
	if !ok {
		return nil, errors.New("cache miss")
	}
	c.hits++
	return entries, nil
}

func (c *fakeCache) SetBoard(category, difficulty string, entries []models.ScoreDTO) error {
	c.boards[BoardKey(category, difficulty)] = entries
	c.sets++
	return nil
}

func (c *fakeCache) InvalidateBoard(category, difficulty string) error {
	delete(c.boards, BoardKey(category, difficulty))
	c.invalidated++
	return nil
}

type fakeBroadcaster struct {
	boards []string
	types  []string
}

func (b *fakeBroadcaster) BroadcastMessage(board, messageType string, data interface{}) {
	b.boards = append(b.boards, board)
	b.types = append(b.types, messageType)
}

func newTestService(t *testing.T) (*Service, *fakeCache, *fakeBroadcaster) {
	t.Helper()
	db := newTestDB(t)
	seedPlayer(t, db, "hari")
	cache := newFakeCache()
	hub := &fakeBroadcaster{}
	return NewService(NewRepository(db), cache, hub), cache, hub
}

func TestUpdatePointsRejectsNegative(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.UpdatePoints("hari", -10)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for negative points, got %v", err)
	}
}

func TestUpdatePointsReportsProgress(t *testing.T) {
	service, _, _ := newTestService(t)

	stats, err := service.UpdatePoints("hari", 150)
	if err != nil {
		t.Fatalf("UpdatePoints failed: %v", err)
	}
	if stats.Points != 150 || stats.RemainingPoints != 50 || stats.TierSize != 200 {
		t.Errorf("unexpected progress: points=%d remaining=%d tier=%d",
			stats.Points, stats.RemainingPoints, stats.TierSize)
	}
}

func TestGetLeaderboardCachesFilteredBoards(t *testing.T) {
	service, cache, _ := newTestService(t)

	if _, _, err := service.UpdateLeaderboardScore("hari", "Sports", "easy", 9, 90); err != nil {
		t.Fatalf("UpdateLeaderboardScore failed: %v", err)
	}

	// First read fills the cache, second is served from it.
	if _, err := service.GetLeaderboard("Sports", "easy"); err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache fill, got %d", cache.sets)
	}
	if _, err := service.GetLeaderboard("Sports", "easy"); err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("expected one cache hit, got %d", cache.hits)
	}

	// The catch-all listing bypasses the cache entirely.
	if _, err := service.GetLeaderboard("", ""); err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("unfiltered listing must not touch the cache, sets=%d", cache.sets)
	}
}

func TestUpdateLeaderboardScorePublishes(t *testing.T) {
	service, cache, hub := newTestService(t)

	outcome, _, err := service.UpdateLeaderboardScore("hari", "Sports", "easy", 9, 90)
	if err != nil {
		t.Fatalf("UpdateLeaderboardScore failed: %v", err)
	}
	if outcome != Updated {
		t.Fatalf("expected board claim, got %v", outcome)
	}
	if cache.invalidated != 1 {
		t.Errorf("expected cache invalidation on board change, got %d", cache.invalidated)
	}
	if len(hub.boards) != 1 || hub.boards[0] != "Sports:easy" || hub.types[0] != "leaderboard_update" {
		t.Errorf("unexpected broadcast: boards=%v types=%v", hub.boards, hub.types)
	}

	// A rejected challenge publishes nothing.
	outcome, _, err = service.UpdateLeaderboardScore("hari", "Sports", "easy", 5, 50)
	if err != nil {
		t.Fatalf("UpdateLeaderboardScore failed: %v", err)
	}
	if outcome != Unchanged {
		t.Fatalf("expected rejection, got %v", outcome)
	}
	if cache.invalidated != 1 || len(hub.boards) != 1 {
		t.Errorf("rejected challenge must stay silent: invalidations=%d broadcasts=%d",
			cache.invalidated, len(hub.boards))
	}
}

func TestUpdateLeaderboardScoreUnknownCategory(t *testing.T) {
	service, _, _ := newTestService(t)

	_, _, err := service.UpdateLeaderboardScore("hari", "Botany", "easy", 9, 90)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown category, got %v", err)
	}
}

func TestCompleteQuiz(t *testing.T) {
	service, _, hub := newTestService(t)

	result, err := service.CompleteQuiz("hari", CompleteQuizRequest{
		SessionToken: "tok-1",
		Category:     "Sports",
		Difficulty:   "easy",
		Score:        9,
		Points:       90,
	})
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	if result.Stats.Points != 90 || result.Stats.QuizzesCompleted != 1 {
		t.Errorf("stats not folded in: %+v", result.Stats)
	}
	if result.PersonalBest != "updated" {
		t.Errorf("first run should set a personal best, got %s", result.PersonalBest)
	}
	if result.Leaderboard != "updated" {
		t.Errorf("90 points should claim the empty board, got %s", result.Leaderboard)
	}
	if result.Played != 1 {
		t.Errorf("expected played=1, got %d", result.Played)
	}
	if len(hub.boards) != 1 {
		t.Errorf("expected one broadcast, got %d", len(hub.boards))
	}
}

func TestCompleteQuizRejectsReplay(t *testing.T) {
	service, _, _ := newTestService(t)

	req := CompleteQuizRequest{
		SessionToken: "tok-1",
		Category:     "Sports",
		Difficulty:   "easy",
		Score:        9,
		Points:       90,
	}
	if _, err := service.CompleteQuiz("hari", req); err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}

	_, err := service.CompleteQuiz("hari", req)
	if !errors.Is(err, models.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for replayed token, got %v", err)
	}

	// The replay must not have touched the stats either.
	stats, err := service.GetStats("hari")
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Points != 90 || stats.QuizzesCompleted != 1 {
		t.Errorf("replay leaked into stats: %+v", stats)
	}
}

func TestCompleteQuizAttemptLimit(t *testing.T) {
	service, _, hub := newTestService(t)

	// Burn through the board attempts with scores the board rejects.
	for i := 0; i < leaderboardAttemptLimit; i++ {
		result, err := service.CompleteQuiz("hari", CompleteQuizRequest{
			SessionToken: fmt.Sprintf("tok-%d", i),
			Category:     "Sports",
			Difficulty:   "easy",
			Score:        1,
			Points:       10,
		})
		if err != nil {
			t.Fatalf("CompleteQuiz %d failed: %v", i, err)
		}
		if result.Leaderboard != "unchanged" {
			t.Errorf("attempt %d: 10 points must not claim the board", i)
		}
	}

	// A fourth run, however strong, no longer contends.
	result, err := service.CompleteQuiz("hari", CompleteQuizRequest{
		SessionToken: "tok-final",
		Category:     "Sports",
		Difficulty:   "easy",
		Score:        10,
		Points:       100,
	})
	if err != nil {
		t.Fatalf("CompleteQuiz failed: %v", err)
	}
	if result.Played != leaderboardAttemptLimit+1 {
		t.Errorf("expected played=%d, got %d", leaderboardAttemptLimit+1, result.Played)
	}
	if result.Leaderboard != "unchanged" {
		t.Errorf("exhausted attempts must not reach the board, got %s", result.Leaderboard)
	}
	if result.PersonalBest != "updated" {
		t.Errorf("personal best is unaffected by the attempt limit, got %s", result.PersonalBest)
	}
	if len(hub.boards) != 0 {
		t.Errorf("no broadcasts expected, got %d", len(hub.boards))
	}
}

func TestCompleteQuizRejectsNegative(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CompleteQuiz("hari", CompleteQuizRequest{
		SessionToken: "tok-1",
		Category:     "Sports",
		Difficulty:   "easy",
		Score:        -1,
		Points:       10,
	})
	if !errors.Is(err, models.ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for negative score, got %v", err)
	}
}
