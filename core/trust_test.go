package core

import (
	"math"
	"testing"
	"time"

	"helphive/models"
)

func TestTrustScoreNewUser(t *testing.T) {
	s := newTestService(t)
	u := seedUser(t, s, "Newcomer")

	ts, err := s.ComputeTrustScore(u.ID)
	if err != nil {
		t.Fatalf("compute trust: %v", err)
	}
	// No helper history counts as a clean slate, not a failing one.
	if ts.CompletionRate != 1.0 {
		t.Fatalf("expected completion rate 1.0 for a new user, got %v", ts.CompletionRate)
	}
	if ts.Score != 40 {
		t.Fatalf("expected score 40 for a new user, got %d", ts.Score)
	}
	if ts.TotalHelperTasks != 0 || len(ts.History) != 0 {
		t.Fatalf("new user should have no history, got %d tasks / %d points", ts.TotalHelperTasks, len(ts.History))
	}
	for i, n := range ts.Histogram {
		if n != 0 {
			t.Fatalf("histogram bucket %d should be empty, got %d", i+1, n)
		}
	}
}

func TestTrustScoreMissingUser(t *testing.T) {
	s := newTestService(t)
	_, err := s.ComputeTrustScore(9999)
	wantKind(t, err, KindNotFound)
}

func TestTrustScorePerfectHelper(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	helper := seedUser(t, s, "Helper")

	for i := 0; i < 2; i++ {
		taskID := completedTask(t, s, owner.ID, 0, helper.ID)
		if _, err := s.SubmitReview(taskID, owner.ID, helper.ID, RatingInput{5, 5, 5}, ""); err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
	}

	ts, err := s.ComputeTrustScore(helper.ID)
	if err != nil {
		t.Fatalf("compute trust: %v", err)
	}
	if ts.TotalHelperTasks != 2 || ts.CompletionRate != 1.0 {
		t.Fatalf("expected 2 completed helper tasks, got %d at rate %v", ts.TotalHelperTasks, ts.CompletionRate)
	}
	if ts.WeightedRating != 5.0 {
		t.Fatalf("expected weighted rating 5.0, got %v", ts.WeightedRating)
	}
	// 50 + 40 + min(10, 10*log10(3)) rounds to 95.
	if ts.Score != 95 {
		t.Fatalf("expected score 95, got %d", ts.Score)
	}
	if ts.Histogram != [5]int{0, 0, 0, 0, 2} {
		t.Fatalf("expected both reviews in the 5 bucket, got %v", ts.Histogram)
	}
	if len(ts.History) != 2 {
		t.Fatalf("expected 2 history points, got %d", len(ts.History))
	}
}

func TestTrustScoreUnfinishedWork(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	helper := seedUser(t, s, "Helper")
	task := seedTask(t, s, owner.ID, 1, 0)
	if _, err := s.AcceptTask(task.ID, helper.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	ts, err := s.ComputeTrustScore(helper.ID)
	if err != nil {
		t.Fatalf("compute trust: %v", err)
	}
	if ts.CompletionRate != 0 {
		t.Fatalf("expected completion rate 0, got %v", ts.CompletionRate)
	}
	// Only the volume term survives: round(10*log10(2)) = 3.
	if ts.Score != 3 {
		t.Fatalf("expected score 3, got %d", ts.Score)
	}
}

func TestTrustScoreRecencyWeighting(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	helper := seedUser(t, s, "Helper")

	oldTask := completedTask(t, s, owner.ID, 0, helper.ID)
	oldReview, err := s.SubmitReview(oldTask, owner.ID, helper.ID, RatingInput{3, 3, 3}, "")
	if err != nil {
		t.Fatalf("old review: %v", err)
	}
	// Age the first review past the mid window boundary marker.
	backdated := time.Now().Add(-60 * 24 * time.Hour)
	if err := s.db.Model(&models.Review{}).Where("id = ?", oldReview.ID).
		Update("created_at", backdated).Error; err != nil {
		t.Fatalf("backdate review: %v", err)
	}

	newTask := completedTask(t, s, owner.ID, 0, helper.ID)
	if _, err := s.SubmitReview(newTask, owner.ID, helper.ID, RatingInput{5, 5, 5}, ""); err != nil {
		t.Fatalf("new review: %v", err)
	}

	ts, err := s.ComputeTrustScore(helper.ID)
	if err != nil {
		t.Fatalf("compute trust: %v", err)
	}
	// (3*1.2 + 5*1.5) / (1.2+1.5) = 4.111..., presented as 4.11.
	if math.Abs(ts.WeightedRating-4.11) > 1e-9 {
		t.Fatalf("expected weighted rating 4.11, got %v", ts.WeightedRating)
	}
	// round(50*4.111/5 + 40*1 + 10*log10(3)) = 86.
	if ts.Score != 86 {
		t.Fatalf("expected score 86, got %d", ts.Score)
	}

	if len(ts.History) != 2 {
		t.Fatalf("expected 2 history points, got %d", len(ts.History))
	}
	if !ts.History[0].RatedAt.Before(ts.History[1].RatedAt) {
		t.Fatalf("history must run oldest to newest")
	}
	if ts.History[0].TaskID != oldTask || ts.History[1].TaskID != newTask {
		t.Fatalf("history points out of order: %+v", ts.History)
	}
	if ts.Histogram != [5]int{0, 0, 1, 0, 1} {
		t.Fatalf("expected one 3 and one 5, got %v", ts.Histogram)
	}
}
