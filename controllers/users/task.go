package users

import (
	"encoding/json"
	"net/http"

	"helphive/core"
	"helphive/utils"
)

// POST /api/users/tasks
func (h *Handler) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	var req core.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request"})
		return
	}
	task, err := h.Core.CreateTask(uid, req)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// GET /api/users/tasks
func (h *Handler) TaskListHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}
	tasks, err := h.Core.ListOpenTasks()
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}

// GET /api/users/tasks/{id}
func (h *Handler) TaskDetailHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := authedUser(w, r); !ok {
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	detail, err := h.Core.GetTask(taskID)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: detail})
}

// POST /api/users/tasks/{id}/accept
func (h *Handler) AcceptTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := h.Core.AcceptTask(taskID, uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task accepted", Data: task})
}

// POST /api/users/tasks/{id}/complete
func (h *Handler) CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := authedUser(w, r)
	if !ok {
		return
	}
	taskID, ok := pathID(r, "id")
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := h.Core.CompleteTask(taskID, uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task completed", Data: task})
}
