package progression

import (
	"encoding/json"
	"net/http"
	"strconv"

	"triviahub/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), models.HTTPStatus(err))
}

type upsertResponse struct {
	Result string      `json:"result"`
	Entry  interface{} `json:"entry,omitempty"`
}

func upsertJSON(w http.ResponseWriter, outcome Outcome, entry interface{}) {
	resp := upsertResponse{Result: outcome.String()}
	if outcome == Updated {
		resp.Entry = entry
	}
	respondJSON(w, http.StatusOK, resp)
}

// STATS ----------------------------------------------------------------

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	stats, err := h.service.GetStats(username)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func (h *Handler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req struct {
		NewPoints int `json:"new_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	stats, err := h.service.UpdatePoints(username, req.NewPoints)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": stats})
}

// SCORES ---------------------------------------------------------------

func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")

	scores, err := h.service.GetScores(username, category, difficulty)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"top_scores": scores})
}

type scoreRequest struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	Points     int    `json:"points"`
}

func (h *Handler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	outcome, entry, err := h.service.UpdateScore(username, req.Category, req.Difficulty, req.Score, req.Points)
	if err != nil {
		respondError(w, err)
		return
	}
	upsertJSON(w, outcome, entry)
}

// LEADERBOARD ----------------------------------------------------------

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")

	entries, err := h.service.GetLeaderboard(category, difficulty)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func (h *Handler) UpdateLeaderboard(w http.ResponseWriter, r *http.Request) {
	username, ok := r.Context().Value("username").(string)
	if !ok || username == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	outcome, entry, err := h.service.UpdateLeaderboardScore(username, req.Category, req.Difficulty, req.Score, req.Points)
	if err != nil {
		respondError(w, err)
		return
	}
	upsertJSON(w, outcome, entry)
}

// SESSIONS -------------------------------------------------------------

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := h.service.GetSessions(username, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

func (h *Handler) AddSession(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.service.AddSession(username, req.SessionToken, req.Category, req.Difficulty, req.Score, req.Points)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"added": session})
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID uint `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	session, err := h.service.DeleteSession(req.SessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": session})
}

// PLAYED COUNTS --------------------------------------------------------

func (h *Handler) GetPlayedCounts(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")

	counts, err := h.service.GetPlayedCounts(username, category, difficulty)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"played_counts": counts})
}

func (h *Handler) UpdatePlayedCount(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req struct {
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	played, err := h.service.IncrementPlayedCount(username, req.Category, req.Difficulty)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"played": played})
}

// COMPLETION -----------------------------------------------------------

func (h *Handler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := h.service.CompleteQuiz(username, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
