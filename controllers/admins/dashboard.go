package admins

import (
	"net/http"

	"helphive/database"
	"helphive/models"
	"helphive/utils"
)

// GET /api/admin/dashboard
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	type statusCount struct {
		Status string
		Cnt    int64
	}
	var counts []statusCount
	if err := db.Model(&models.Task{}).
		Select("status, COUNT(*) as cnt").
		Group("status").
		Scan(&counts).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	tasksByStatus := map[string]int64{
		models.TaskOpen:       0,
		models.TaskInProgress: 0,
		models.TaskCompleted:  0,
	}
	for _, c := range counts {
		tasksByStatus[c.Status] = c.Cnt
	}

	var pendingSwaps int64
	if err := db.Model(&models.SwapRequest{}).Count(&pendingSwaps).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	var totalReviews int64
	if err := db.Model(&models.Review{}).Count(&totalReviews).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	// Credits settled = sum of owner spends; helper earnings mirror it
	// under the full policy and undercut it under split.
	var creditsSettled int64
	if err := db.Model(&models.CreditEntry{}).
		Where("entry_type = ?", models.CreditEntryTaskSpend).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&creditsSettled).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: map[string]interface{}{
		"total_users":     totalUsers,
		"tasks_by_status": tasksByStatus,
		"pending_swaps":   pendingSwaps,
		"total_reviews":   totalReviews,
		"credits_settled": creditsSettled,
	}})
}
