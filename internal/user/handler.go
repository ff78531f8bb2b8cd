package user

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

func pathID(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// USERS ----------------------------------------------------------------

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindAll()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(mux.Vars(r)["username"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.service.Update(mux.Vars(r)["username"], req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := h.service.Delete(username); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": username})
}

// FOLDERS --------------------------------------------------------------

func (h *Handler) GetFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.service.GetFolders(mux.Vars(r)["username"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"folders": folders})
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderName string `json:"folder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	folder, err := h.service.CreateFolder(mux.Vars(r)["username"], req.FolderName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"created": folder})
}

func (h *Handler) GetFolderTrivia(w http.ResponseWriter, r *http.Request) {
	folderID, ok := pathID(r, "folderId")
	if !ok {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	folder, err := h.service.GetFolderTrivia(folderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"folder": folder})
}

func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := pathID(r, "folderId")
	if !ok {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	var req struct {
		NewFolderName string `json:"new_folder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	folder, err := h.service.RenameFolder(mux.Vars(r)["username"], folderID, req.NewFolderName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"updated": folder})
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := pathID(r, "folderId")
	if !ok {
		http.Error(w, "Invalid folder id", http.StatusBadRequest)
		return
	}

	folder, err := h.service.DeleteFolder(folderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": folder})
}

// SAVED TRIVIA ---------------------------------------------------------

func (h *Handler) GetAllFav(w http.ResponseWriter, r *http.Request) {
	trivia, err := h.service.GetAllFav(mux.Vars(r)["username"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trivia": trivia})
}

func (h *Handler) AddFav(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question   string `json:"question"`
		Answer     string `json:"answer"`
		FolderName string `json:"folder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	trivia, err := h.service.AddFav(mux.Vars(r)["username"], req.Question, req.Answer, req.FolderName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"added": trivia})
}

func (h *Handler) GetTrivia(w http.ResponseWriter, r *http.Request) {
	triviaID, ok := pathID(r, "triviaId")
	if !ok {
		http.Error(w, "Invalid trivia id", http.StatusBadRequest)
		return
	}

	trivia, err := h.service.GetTrivia(triviaID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trivia": trivia})
}

func (h *Handler) MoveTrivia(w http.ResponseWriter, r *http.Request) {
	triviaID, ok := pathID(r, "triviaId")
	if !ok {
		http.Error(w, "Invalid trivia id", http.StatusBadRequest)
		return
	}

	var req struct {
		FolderName string `json:"folder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	trivia, err := h.service.MoveTrivia(mux.Vars(r)["username"], triviaID, req.FolderName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trivia": trivia})
}

func (h *Handler) DeleteTrivia(w http.ResponseWriter, r *http.Request) {
	triviaID, ok := pathID(r, "triviaId")
	if !ok {
		http.Error(w, "Invalid trivia id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTrivia(triviaID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": triviaID})
}

// BADGES ---------------------------------------------------------------

func (h *Handler) GetBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.service.GetBadges(mux.Vars(r)["username"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

func (h *Handler) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Badge string `json:"badge"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	badge, awarded, err := h.service.AwardBadge(mux.Vars(r)["username"], req.Badge)
	if err != nil {
		respondError(w, err)
		return
	}
	if !awarded {
		respondJSON(w, http.StatusOK, map[string]string{"result": "already earned"})
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"badge": badge})
}
