package core

import (
	"math"
	"testing"

	"helphive/models"
)

// completedTask seeds a task, fills it with the given helpers and completes
// it, returning the task id.
func completedTask(t *testing.T, s *Service, ownerID uint, credits int, helpers ...uint) uint {
	t.Helper()
	task := seedTask(t, s, ownerID, len(helpers), credits)
	for _, h := range helpers {
		if _, err := s.AcceptTask(task.ID, h); err != nil {
			t.Fatalf("accept helper %d: %v", h, err)
		}
	}
	if _, err := s.CompleteTask(task.ID, ownerID); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	return task.ID
}

func TestSubmitReviewRequiresCompletion(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	helper := seedUser(t, s, "Helper")
	task := seedTask(t, s, owner.ID, 1, 0)
	if _, err := s.AcceptTask(task.ID, helper.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := s.SubmitReview(task.ID, helper.ID, owner.ID, RatingInput{5, 5, 5}, "")
	wantKind(t, err, KindInvalidState)

	var n int64
	if err := s.db.Model(&models.Review{}).Count(&n).Error; err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if n != 0 {
		t.Fatalf("no review may persist before completion, found %d", n)
	}
}

func TestSubmitReviewGate(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	stranger := seedUser(t, s, "Stranger")
	taskID := completedTask(t, s, owner.ID, 0, a.ID, b.ID)

	if _, err := s.SubmitReview(taskID, a.ID, owner.ID, RatingInput{5, 4, 5}, "quick and kind"); err != nil {
		t.Fatalf("helper reviews owner: %v", err)
	}
	if _, err := s.SubmitReview(taskID, owner.ID, a.ID, RatingInput{4, 4, 4}, ""); err != nil {
		t.Fatalf("owner reviews helper: %v", err)
	}

	_, err := s.SubmitReview(taskID, a.ID, b.ID, RatingInput{5, 5, 5}, "")
	wantKind(t, err, KindForbidden)

	_, err = s.SubmitReview(taskID, stranger.ID, owner.ID, RatingInput{5, 5, 5}, "")
	wantKind(t, err, KindForbidden)

	_, err = s.SubmitReview(taskID, owner.ID, stranger.ID, RatingInput{5, 5, 5}, "")
	wantKind(t, err, KindForbidden)

	_, err = s.SubmitReview(taskID, owner.ID, owner.ID, RatingInput{5, 5, 5}, "")
	wantKind(t, err, KindValidation)

	_, err = s.SubmitReview(taskID, owner.ID, b.ID, RatingInput{6, 5, 5}, "")
	wantKind(t, err, KindValidation)

	// One review per directed pair.
	_, err = s.SubmitReview(taskID, a.ID, owner.ID, RatingInput{1, 1, 1}, "")
	wantKind(t, err, KindConflict)
}

func TestSubmitReviewUpdatesRatingSummary(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	c := seedUser(t, s, "Helper C")
	taskID := completedTask(t, s, owner.ID, 0, a.ID, b.ID, c.ID)

	inputs := []RatingInput{{5, 5, 5}, {3, 4, 5}, {1, 2, 3}}
	reviewers := []uint{a.ID, b.ID, c.ID}
	want := 0.0
	for i, in := range inputs {
		if _, err := s.SubmitReview(taskID, reviewers[i], owner.ID, in, ""); err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
		want += Composite(in.Punctuality, in.Friendliness, in.Quality)
	}
	want /= float64(len(inputs))

	got := reloadUser(t, s, owner.ID)
	if got.RatingCount != len(inputs) {
		t.Fatalf("expected rating count %d, got %d", len(inputs), got.RatingCount)
	}
	if math.Abs(got.RatingAverage-want) > 1e-9 {
		t.Fatalf("expected average %v, got %v", want, got.RatingAverage)
	}
}

func TestCanReview(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	stranger := seedUser(t, s, "Stranger")
	task := seedTask(t, s, owner.ID, 2, 0)
	if _, err := s.AcceptTask(task.ID, a.ID); err != nil {
		t.Fatalf("accept a: %v", err)
	}
	if _, err := s.AcceptTask(task.ID, b.ID); err != nil {
		t.Fatalf("accept b: %v", err)
	}

	// Nothing is reviewable before completion.
	ids, err := s.CanReview(task.ID, owner.ID)
	if err != nil {
		t.Fatalf("can review pre-completion: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty set before completion, got %v", ids)
	}

	if _, err := s.CompleteTask(task.ID, owner.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	ids, err = s.CanReview(task.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner can review: %v", err)
	}
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Fatalf("owner should be able to review both helpers, got %v", ids)
	}

	ids, err = s.CanReview(task.ID, a.ID)
	if err != nil {
		t.Fatalf("helper can review: %v", err)
	}
	if len(ids) != 1 || ids[0] != owner.ID {
		t.Fatalf("helper should be able to review only the owner, got %v", ids)
	}

	_, err = s.CanReview(task.ID, stranger.ID)
	wantKind(t, err, KindForbidden)

	_, err = s.CanReview(9999, owner.ID)
	wantKind(t, err, KindNotFound)
}
