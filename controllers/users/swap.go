package users

import (
	"encoding/json"
	"net/http"

	"helphive/utils"
)

// POST /api/users/swaps
func (h *Handler) RequestSwapHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var req struct {
		TaskToGiveID    uint `json:"task_to_give_id"`
		TaskToReceiveID uint `json:"task_to_receive_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TaskToGiveID == 0 || req.TaskToReceiveID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	swap, err := h.Core.RequestSwap(uid, req.TaskToGiveID, req.TaskToReceiveID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Swap requested", Data: swap})
}

// GET /api/users/swaps
func (h *Handler) SwapListHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	swaps, err := h.Core.ListSwapRequests(uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: swaps})
}

// POST /api/users/swaps/{id}/respond
func (h *Handler) RespondSwapHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	swapID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid swap id"})
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := h.Core.RespondToSwap(swapID, uid, req.Accept); err != nil {
		writeErr(w, err)
		return
	}
	msg := "Swap rejected"
	if req.Accept {
		msg = "Swap accepted"
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg})
}

// POST /api/users/swaps/helper
func (h *Handler) HelperSwapHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var req struct {
		FromTaskID uint `json:"from_task_id"`
		ToTaskID   uint `json:"to_task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FromTaskID == 0 || req.ToTaskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	if err := h.Core.HelperSwap(uid, req.FromTaskID, req.ToTaskID); err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Helper swap completed"})
}
