package core

import (
	"errors"

	"gorm.io/gorm"

	"helphive/models"
)

type RatingInput struct {
	Punctuality  int `json:"punctuality"`
	Friendliness int `json:"friendliness"`
	Quality      int `json:"quality"`
}

func (in RatingInput) validate() error {
	for _, v := range []int{in.Punctuality, in.Friendliness, in.Quality} {
		if v < 1 || v > 5 {
			return errf(KindValidation, "Ratings must be between 1 and 5")
		}
	}
	return nil
}

// CanReview returns the user ids the reviewer may review on this task: the
// owner may review every helper, a helper may review only the owner. Before
// completion the set is empty. Non-participants get Forbidden.
func (s *Service) CanReview(taskID, reviewerID uint) ([]uint, error) {
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
	ids, err := reviewable(&task, helpers, reviewerID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskCompleted {
		return []uint{}, nil
	}
	return ids, nil
}

func reviewable(task *models.Task, helpers []models.TaskHelper, reviewerID uint) ([]uint, error) {
	if reviewerID == task.PostedBy {
		ids := make([]uint, 0, len(helpers))
		seen := make(map[uint]bool, len(helpers))
		for _, h := range helpers {
			if !seen[h.UserID] {
				seen[h.UserID] = true
				ids = append(ids, h.UserID)
			}
		}
		return ids, nil
	}
	for _, h := range helpers {
		if h.UserID == reviewerID {
			return []uint{task.PostedBy}, nil
		}
	}
	return nil, errf(KindForbidden, "You did not participate in this task")
}

// SubmitReview persists one review and folds it into the reviewee's rating
// summary in the same transaction. Only participants of a completed task may
// review, only across sides, and only once per directed pair.
func (s *Service) SubmitReview(taskID, reviewerID, revieweeID uint, in RatingInput, comment string) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if reviewerID == revieweeID {
		return nil, errf(KindValidation, "You cannot review yourself")
	}

	var out models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errf(KindNotFound, "Task not found")
			}
			return internal("load task", err)
		}
		if task.Status != models.TaskCompleted {
			return errf(KindInvalidState, "Reviews open only after the task is completed")
		}

		var helpers []models.TaskHelper
		if err := tx.Where("task_id = ?", task.ID).Find(&helpers).Error; err != nil {
			return internal("load helpers", err)
		}
		candidates, err := reviewable(&task, helpers, reviewerID)
		if err != nil {
			return err
		}
		allowed := false
		for _, id := range candidates {
			if id == revieweeID {
				allowed = true
				break
			}
		}
		if !allowed {
			return errf(KindForbidden, "You cannot review this participant")
		}

		var dup models.Review
		err = tx.Where("task_id = ? AND reviewer_id = ? AND reviewee_id = ?",
			task.ID, reviewerID, revieweeID).First(&dup).Error
		if err == nil {
			return errf(KindConflict, "You already reviewed this participant")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internal("check duplicate review", err)
		}

		review := models.Review{
			TaskID:       task.ID,
			ReviewerID:   reviewerID,
			RevieweeID:   revieweeID,
			Punctuality:  in.Punctuality,
			Friendliness: in.Friendliness,
			Quality:      in.Quality,
		}
		if comment != "" {
			review.Comment = &comment
		}
		if err := tx.Create(&review).Error; err != nil {
			return internal("create review", err)
		}

		if err := applyReview(tx, revieweeID, review.Composite()); err != nil {
			return err
		}
		out = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTrust(revieweeID)
	return &out, nil
}

// applyReview folds one composite score into the reviewee's stored summary.
// The update compares against the count it read, so two reviews landing at
// once cannot both apply to the same old state; the loser's whole
// transaction rolls back.
func applyReview(tx *gorm.DB, revieweeID uint, composite float64) error {
	var reviewee models.User
	if err := tx.First(&reviewee, revieweeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errf(KindNotFound, "Reviewee not found")
		}
		return internal("load reviewee", err)
	}
	newAvg := NextAverage(reviewee.RatingAverage, reviewee.RatingCount, composite)
	res := tx.Model(&models.User{}).
		Where("id = ? AND rating_count = ?", reviewee.ID, reviewee.RatingCount).
		Updates(map[string]interface{}{
			"rating_average": newAvg,
			"rating_count":   reviewee.RatingCount + 1,
		})
	if res.Error != nil {
		return internal("update rating summary", res.Error)
	}
	if res.RowsAffected == 0 {
		return errf(KindConflict, "Rating summary changed concurrently, please retry")
	}
	return nil
}
