package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"helphive/models"
	"helphive/utils"
)

const trustCacheTTL = 5 * time.Minute

// Recency weights for the rating history.
const (
	recentWindow   = 30 * 24 * time.Hour
	midWindow      = 90 * 24 * time.Hour
	recentWeight   = 1.5
	midWeight      = 1.2
	baselineWeight = 1.0
)

// TrustScore is a derived reputation view, recomputed on demand and never
// stored in the user record.
type TrustScore struct {
	UserID           uint          `json:"user_id"`
	Score            int           `json:"score"`
	CompletionRate   float64       `json:"completion_rate"`
	WeightedRating   float64       `json:"weighted_rating"`
	TotalHelperTasks int           `json:"total_helper_tasks"`
	Histogram        [5]int        `json:"histogram"`
	History          []RatingPoint `json:"history"`
}

// RatingPoint is one received review's composite score, oldest first.
type RatingPoint struct {
	TaskID  uint      `json:"task_id"`
	Score   float64   `json:"score"`
	RatedAt time.Time `json:"rated_at"`
}

// ComputeTrustScore derives the 0-100 reputation score from completion rate,
// recency-weighted received ratings and helper-task volume. Results are
// cached briefly when a cache is configured.
func (s *Service) ComputeTrustScore(userID uint) (*TrustScore, error) {
	if cached := s.cachedTrust(userID); cached != nil {
		return cached, nil
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errf(KindNotFound, "User not found")
		}
		return nil, internal("load user", err)
	}

	var reviews []models.Review
	if err := s.db.Where("reviewee_id = ?", userID).
		Order("created_at ASC, id ASC").Find(&reviews).Error; err != nil {
		return nil, internal("load reviews", err)
	}

	var memberships []models.TaskHelper
	if err := s.db.Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, internal("load helper tasks", err)
	}
	completed := 0
	if len(memberships) > 0 {
		taskIDs := make([]uint, 0, len(memberships))
		for _, m := range memberships {
			taskIDs = append(taskIDs, m.TaskID)
		}
		var n int64
		if err := s.db.Model(&models.Task{}).
			Where("id IN ? AND status = ?", taskIDs, models.TaskCompleted).
			Count(&n).Error; err != nil {
			return nil, internal("count completed tasks", err)
		}
		completed = int(n)
	}

	ts := &TrustScore{
		UserID:           userID,
		TotalHelperTasks: len(memberships),
		History:          make([]RatingPoint, 0, len(reviews)),
	}

	ts.CompletionRate = 1.0
	if ts.TotalHelperTasks > 0 {
		ts.CompletionRate = float64(completed) / float64(ts.TotalHelperTasks)
	}

	now := time.Now()
	var sumWeight, sumWeighted float64
	for _, r := range reviews {
		score := r.Composite()
		weight := baselineWeight
		switch age := now.Sub(r.CreatedAt); {
		case age <= recentWindow:
			weight = recentWeight
		case age <= midWindow:
			weight = midWeight
		}
		sumWeight += weight
		sumWeighted += score * weight

		bucket := int(math.Round(score))
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		ts.Histogram[bucket-1]++
		ts.History = append(ts.History, RatingPoint{TaskID: r.TaskID, Score: score, RatedAt: r.CreatedAt})
	}
	if sumWeight > 0 {
		ts.WeightedRating = sumWeighted / sumWeight
	}

	volume := math.Min(10, 10*math.Log10(float64(ts.TotalHelperTasks)+1))
	raw := math.Round(50*ts.WeightedRating/5 + 40*ts.CompletionRate + volume)
	ts.Score = int(math.Min(100, math.Max(0, raw)))

	// Presentation rounding, applied after the score is derived.
	ts.WeightedRating = utils.RoundFloat(ts.WeightedRating, 2)
	ts.CompletionRate = utils.RoundFloat(ts.CompletionRate, 2)

	s.storeTrust(ts)
	return ts, nil
}

func trustKey(userID uint) string {
	return fmt.Sprintf("trust:%d", userID)
}

func (s *Service) cachedTrust(userID uint) *TrustScore {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(context.Background(), trustKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var ts TrustScore
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil
	}
	return &ts
}

func (s *Service) storeTrust(ts *TrustScore) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(ts)
	if err != nil {
		return
	}
	_ = s.cache.Set(context.Background(), trustKey(ts.UserID), raw, trustCacheTTL).Err()
}

func (s *Service) invalidateTrust(userID uint) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(context.Background(), trustKey(userID)).Err()
}
