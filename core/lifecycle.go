package core

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"helphive/models"
	"helphive/utils"
)

// errStale signals a lost optimistic-concurrency race. The transaction rolls
// back and the operation retries against fresh state.
var errStale = errors.New("stale version")

type CreateTaskInput struct {
	Name        string `json:"name" validate:"required,nameok"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Priority    string `json:"priority"`
	Credits     int    `json:"credits"`
	HelpersReq  int    `json:"helpers_req"`
}

// CreateTask validates the input, persists an open task with zero helpers
// and dispatches the creation notification fire-and-forget.
func (s *Service) CreateTask(ownerID uint, in CreateTaskInput) (*models.Task, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, errf(KindValidation, "%s", err.Error())
	}
	if in.HelpersReq < 1 {
		return nil, errf(KindValidation, "helpers_req must be at least 1")
	}
	if in.Credits < 0 {
		return nil, errf(KindValidation, "credits cannot be negative")
	}
	switch in.Priority {
	case "":
		in.Priority = models.PriorityMedium
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return nil, errf(KindValidation, "priority must be low, medium or high")
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "User not found")
		}
		return nil, internal("load owner", err)
	}
	if !owner.IsActive() {
		return nil, errf(KindForbidden, "Inactive accounts cannot post tasks")
	}

	task := models.Task{
		PostedBy:    ownerID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		Priority:    in.Priority,
		Credits:     in.Credits,
		HelpersReq:  in.HelpersReq,
		Status:      models.TaskOpen,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, internal("create task", err)
	}

	go func(t models.Task) {
		if err := s.notifier.TaskCreated(&t); err != nil {
			log.Printf("notify task created (task %d): %v", t.ID, err)
		}
	}(task)

	return &task, nil
}

// AcceptTask adds userID as a helper on the task, filling one slot. When the
// last slot fills the task moves to in_progress. Lost version races retry a
// bounded number of times before surfacing Conflict.
func (s *Service) AcceptTask(taskID, userID uint) (*models.Task, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		task, err := s.tryAccept(taskID, userID)
		if errors.Is(err, errStale) {
			continue
		}
		return task, err
	}
	return nil, errf(KindConflict, "Task was modified concurrently, please retry")
}

func (s *Service) tryAccept(taskID, userID uint) (*models.Task, error) {
	var out models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "Task not found")
			}
			return internal("load task", err)
		}
		if task.PostedBy == userID {
			return errf(KindForbidden, "You cannot help your own task")
		}
		if task.Status != models.TaskOpen || task.IsFull() {
			return errf(KindConflict, "Task is no longer accepting helpers")
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "User not found")
			}
			return internal("load user", err)
		}
		if !user.IsActive() {
			return errf(KindForbidden, "Inactive accounts cannot accept tasks")
		}

		var existing models.TaskHelper
		err := tx.Where("task_id = ? AND user_id = ?", task.ID, userID).First(&existing).Error
		if err == nil {
			return errf(KindConflict, "You already accepted this task")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internal("check helper", err)
		}

		status := models.TaskOpen
		if task.CurHelpers+1 >= task.HelpersReq {
			status = models.TaskInProgress
		}
		res := tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", task.ID, task.Version).
			Updates(map[string]interface{}{
				"cur_helpers": task.CurHelpers + 1,
				"status":      status,
				"version":     task.Version + 1,
			})
		if res.Error != nil {
			return internal("update task", res.Error)
		}
		if res.RowsAffected == 0 {
			return errStale
		}
		if err := tx.Create(&models.TaskHelper{TaskID: task.ID, UserID: userID}).Error; err != nil {
			return internal("add helper", err)
		}

		task.CurHelpers++
		task.Status = status
		task.Version++
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteTask moves an in-progress task to completed and settles credits:
// the owner spends the task value, helpers earn according to the configured
// policy, and each movement lands in the ledger. The requester must be the
// owner or a helper.
func (s *Service) CompleteTask(taskID, requesterID uint) (*models.Task, error) {
	var out models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "Task not found")
			}
			return internal("load task", err)
		}
		if task.Status != models.TaskInProgress {
			return errf(KindInvalidState, "Only in-progress tasks can be completed")
		}

		var helpers []models.TaskHelper
		if err := tx.Where("task_id = ?", task.ID).Order("id ASC").Find(&helpers).Error; err != nil {
			return internal("load helpers", err)
		}
		isHelper := false
		for _, h := range helpers {
			if h.UserID == requesterID {
				isHelper = true
				break
			}
		}
		if requesterID != task.PostedBy && !isHelper {
			return errf(KindForbidden, "Only the owner or a helper can complete this task")
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND version = ?", task.ID, task.Version).
			Updates(map[string]interface{}{
				"status":  models.TaskCompleted,
				"version": task.Version + 1,
			})
		if res.Error != nil {
			return internal("update task", res.Error)
		}
		if res.RowsAffected == 0 {
			return errf(KindConflict, "Task was modified concurrently, please retry")
		}

		if err := s.settleCredits(tx, &task, helpers); err != nil {
			return err
		}

		task.Status = models.TaskCompleted
		task.Version++
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) settleCredits(tx *gorm.DB, task *models.Task, helpers []models.TaskHelper) error {
	if task.Credits == 0 || len(helpers) == 0 {
		return nil
	}

	// The owner pays the full task value under both policies.
	if err := tx.Model(&models.User{}).Where("id = ?", task.PostedBy).
		Update("credits_spent", gorm.Expr("credits_spent + ?", task.Credits)).Error; err != nil {
		return internal("charge owner", err)
	}
	spend := models.CreditEntry{
		UserID:      task.PostedBy,
		TaskID:      task.ID,
		EntryType:   models.CreditEntryTaskSpend,
		Amount:      task.Credits,
		ReferenceID: utils.GenerateReferenceID(task.PostedBy),
	}
	if err := tx.Create(&spend).Error; err != nil {
		return internal("record spend", err)
	}

	share := task.Credits
	if s.policy == PolicySplit {
		share = task.Credits / len(helpers)
	}
	if share == 0 {
		return nil
	}
	for _, h := range helpers {
		if err := tx.Model(&models.User{}).Where("id = ?", h.UserID).
			Update("credits_earned", gorm.Expr("credits_earned + ?", share)).Error; err != nil {
			return internal("pay helper", err)
		}
		earning := models.CreditEntry{
			UserID:      h.UserID,
			TaskID:      task.ID,
			EntryType:   models.CreditEntryTaskEarning,
			Amount:      share,
			ReferenceID: utils.GenerateReferenceID(h.UserID),
		}
		if err := tx.Create(&earning).Error; err != nil {
			return internal("record earning", err)
		}
	}
	return nil
}

// TaskDetail is a task with its filled helper slots, for presentation.
type TaskDetail struct {
	models.Task
	Helpers []models.TaskHelper `json:"helpers"`
}

func (s *Service) GetTask(taskID uint) (*TaskDetail, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "Task not found")
		}
		return nil, internal("load task", err)
	}
	var helpers []models.TaskHelper
	if err := s.db.Where("task_id = ?", task.ID).Order("id ASC").Find(&helpers).Error; err != nil {
		return nil, internal("load helpers", err)
	}
	return &TaskDetail{Task: task, Helpers: helpers}, nil
}

func (s *Service) ListOpenTasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.Where("status = ?", models.TaskOpen).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, internal("list tasks", err)
	}
	return tasks, nil
}

// Profile is a user record with the derived credit balance attached.
type Profile struct {
	models.User
	CreditBalance int `json:"credit_balance"`
}

func (s *Service) GetProfile(userID uint) (*Profile, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "User not found")
		}
		return nil, internal("load user", err)
	}
	return &Profile{User: user, CreditBalance: user.CreditBalance()}, nil
}
