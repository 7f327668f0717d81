package users

import (
	"net/http"

	"helphive/utils"
)

// GET /api/users/profile
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	profile, err := h.Core.GetProfile(uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: profile})
}

// GET /api/users/{id}/trust
func (h *Handler) TrustScoreHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}
	userID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	score, err := h.Core.ComputeTrustScore(userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: score})
}
