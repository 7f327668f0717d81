package core

import (
	"errors"

	"gorm.io/gorm"

	"helphive/models"
)

// RequestSwap creates a pending swap request: the requester offers a task
// they own in exchange for another owner's task. Both tasks must be open.
func (s *Service) RequestSwap(requesterID, giveID, receiveID uint) (*models.SwapRequest, error) {
	if giveID == receiveID {
		return nil, errf(KindValidation, "Cannot swap a task with itself")
	}

	var give models.Task
	if err := s.db.First(&give, giveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "Task offered not found")
		}
		return nil, internal("load task to give", err)
	}
	var receive models.Task
	if err := s.db.First(&receive, receiveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "Task requested not found")
		}
		return nil, internal("load task to receive", err)
	}

	if give.PostedBy != requesterID {
		return nil, errf(KindForbidden, "You do not own the task offered")
	}
	if receive.PostedBy == requesterID {
		return nil, errf(KindForbidden, "You already own the requested task")
	}
	if give.Status != models.TaskOpen || receive.Status != models.TaskOpen {
		return nil, errf(KindInvalidState, "Both tasks must be open to swap")
	}

	var dup models.SwapRequest
	err := s.db.Where("requester_id = ? AND task_to_give_id = ? AND task_to_receive_id = ?",
		requesterID, giveID, receiveID).First(&dup).Error
	if err == nil {
		return nil, errf(KindConflict, "Swap already requested")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal("check duplicate swap", err)
	}

	swap := models.SwapRequest{
		RequesterID:     requesterID,
		TaskToGiveID:    giveID,
		TaskToReceiveID: receiveID,
	}
	if err := s.db.Create(&swap).Error; err != nil {
		return nil, internal("create swap request", err)
	}
	return &swap, nil
}

// RespondToSwap resolves a pending request. Only the owner of the requested
// task may respond. Accepting swaps the postedBy of both tasks and deletes
// the request, all-or-nothing; rejecting deletes the request untouched.
// Accepting a request whose tasks changed since it was made fails with
// Conflict and leaves the request pending so the recipient can reject it.
func (s *Service) RespondToSwap(swapID, responderID uint, accept bool) error {
	var swap models.SwapRequest
	if err := s.db.First(&swap, swapID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errf(KindNotFound, "Swap request not found")
		}
		return internal("load swap request", err)
	}

	var receive models.Task
	if err := s.db.First(&receive, swap.TaskToReceiveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errf(KindNotFound, "Task requested no longer exists")
		}
		return internal("load task to receive", err)
	}
	if receive.PostedBy != responderID {
		return errf(KindForbidden, "Only the recipient can respond to this swap")
	}

	if !accept {
		if err := s.db.Delete(&swap).Error; err != nil {
			return internal("delete swap request", err)
		}
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var give, recv models.Task
		if err := tx.First(&give, swap.TaskToGiveID).Error; err != nil {
			return errf(KindConflict, "Task offered no longer exists")
		}
		if err := tx.First(&recv, swap.TaskToReceiveID).Error; err != nil {
			return errf(KindConflict, "Task requested no longer exists")
		}
		if give.Status != models.TaskOpen || recv.Status != models.TaskOpen ||
			give.PostedBy != swap.RequesterID || recv.PostedBy != responderID {
			return errf(KindConflict, "Tasks changed since the swap was requested")
		}

		if err := swapOwner(tx, &give, responderID); err != nil {
			return err
		}
		if err := swapOwner(tx, &recv, swap.RequesterID); err != nil {
			return err
		}
		if err := tx.Delete(&swap).Error; err != nil {
			return internal("delete swap request", err)
		}
		return nil
	})
}

func swapOwner(tx *gorm.DB, task *models.Task, newOwner uint) error {
	res := tx.Model(&models.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"posted_by": newOwner,
			"version":   task.Version + 1,
		})
	if res.Error != nil {
		return internal("swap owner", res.Error)
	}
	if res.RowsAffected == 0 {
		return errf(KindConflict, "Task was modified concurrently, please retry")
	}
	return nil
}

// HelperSwap moves the acting user from a task they are helping on to an
// open task with a free slot, atomically: leave and join either both happen
// or neither does. Leaving may revert the abandoned task to open. The new
// slot is swap-locked so the helper cannot chain further swaps from it.
func (s *Service) HelperSwap(userID, fromTaskID, toTaskID uint) error {
	if fromTaskID == toTaskID {
		return errf(KindValidation, "Cannot swap within the same task")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var from models.Task
		if err := tx.First(&from, fromTaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "Current task not found")
			}
			return internal("load current task", err)
		}
		var to models.Task
		if err := tx.First(&to, toTaskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "Target task not found")
			}
			return internal("load target task", err)
		}

		var membership models.TaskHelper
		err := tx.Where("task_id = ? AND user_id = ?", from.ID, userID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errf(KindForbidden, "You are not a helper on this task")
		}
		if err != nil {
			return internal("load membership", err)
		}
		if membership.SwapLocked {
			return errf(KindConflict, "This helper slot is locked by a previous swap")
		}

		if from.Status != models.TaskInProgress {
			return errf(KindConflict, "Current task is not in progress")
		}
		if to.Status != models.TaskOpen || to.IsFull() {
			return errf(KindConflict, "Target task has no free slot")
		}
		if to.PostedBy == userID {
			return errf(KindForbidden, "You cannot help your own task")
		}
		var already models.TaskHelper
		err = tx.Where("task_id = ? AND user_id = ?", to.ID, userID).First(&already).Error
		if err == nil {
			return errf(KindConflict, "You already help on the target task")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internal("check target membership", err)
		}

		// Leave: this is the one place a task may regress in_progress -> open.
		fromHelpers := from.CurHelpers - 1
		fromStatus := from.Status
		if fromHelpers < from.HelpersReq {
			fromStatus = models.TaskOpen
		}
		res := tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", from.ID, from.Version).
			Updates(map[string]interface{}{
				"cur_helpers": fromHelpers,
				"status":      fromStatus,
				"version":     from.Version + 1,
			})
		if res.Error != nil {
			return internal("leave task", res.Error)
		}
		if res.RowsAffected == 0 {
			return errf(KindConflict, "Current task was modified concurrently, please retry")
		}

		// Join.
		toStatus := models.TaskOpen
		if to.CurHelpers+1 >= to.HelpersReq {
			toStatus = models.TaskInProgress
		}
		res = tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", to.ID, to.Version).
			Updates(map[string]interface{}{
				"cur_helpers": to.CurHelpers + 1,
				"status":      toStatus,
				"version":     to.Version + 1,
			})
		if res.Error != nil {
			return internal("join task", res.Error)
		}
		if res.RowsAffected == 0 {
			return errf(KindConflict, "Target task was modified concurrently, please retry")
		}

		if err := tx.Delete(&membership).Error; err != nil {
			return internal("remove membership", err)
		}
		joined := models.TaskHelper{TaskID: to.ID, UserID: userID, SwapLocked: true}
		if err := tx.Create(&joined).Error; err != nil {
			return internal("add membership", err)
		}
		return nil
	})
}

// ListSwapRequests returns pending requests where the user is either the
// requester or the implicit recipient (owner of the requested task).
func (s *Service) ListSwapRequests(userID uint) ([]models.SwapRequest, error) {
	owned := s.db.Model(&models.Task{}).Select("id").Where("posted_by = ?", userID)
	var swaps []models.SwapRequest
	if err := s.db.
		Where("requester_id = ? OR task_to_receive_id IN (?)", userID, owned).
		Order("id DESC").Find(&swaps).Error; err != nil {
		return nil, internal("list swap requests", err)
	}
	return swaps, nil
}
