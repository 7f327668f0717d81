package users

import (
	"encoding/json"
	"net/http"

	"helphive/core"
	"helphive/utils"
)

// GET /api/users/tasks/{id}/reviewable
func (h *Handler) ReviewableHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	ids, err := h.Core.CanReview(taskID, uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"reviewable": ids,
	}})
}

// POST /api/users/tasks/{id}/reviews
func (h *Handler) SubmitReviewHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	var req struct {
		RevieweeID uint             `json:"reviewee_id"`
		Ratings    core.RatingInput `json:"ratings"`
		Comment    string           `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RevieweeID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	review, err := h.Core.SubmitReview(taskID, uid, req.RevieweeID, req.Ratings, req.Comment)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Review submitted", Data: review})
}
