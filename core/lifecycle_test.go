package core

import (
	"sync"
	"testing"

	"helphive/models"
)

func TestCreateTaskValidation(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")

	_, err := s.CreateTask(owner.ID, CreateTaskInput{
		Description: "no name",
		Category:    "errands",
		Location:    "Downtown",
		HelpersReq:  1,
	})
	wantKind(t, err, KindValidation)

	_, err = s.CreateTask(owner.ID, CreateTaskInput{
		Name:        "Valid name",
		Description: "d",
		Category:    "c",
		Location:    "l",
		HelpersReq:  0,
	})
	wantKind(t, err, KindValidation)

	_, err = s.CreateTask(owner.ID, CreateTaskInput{
		Name:        "Valid name",
		Description: "d",
		Category:    "c",
		Location:    "l",
		HelpersReq:  1,
		Credits:     -5,
	})
	wantKind(t, err, KindValidation)

	task, err := s.CreateTask(owner.ID, CreateTaskInput{
		Name:        "Valid name",
		Description: "d",
		Category:    "c",
		Location:    "l",
		HelpersReq:  2,
		Credits:     10,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != models.TaskOpen || task.CurHelpers != 0 {
		t.Fatalf("new task should be open with no helpers, got %s/%d", task.Status, task.CurHelpers)
	}
	if task.Priority != models.PriorityMedium {
		t.Fatalf("default priority should be medium, got %s", task.Priority)
	}
}

func TestCreateTaskUnknownOwner(t *testing.T) {
	s := newTestService(t)
	_, err := s.CreateTask(9999, CreateTaskInput{
		Name: "x", Description: "d", Category: "c", Location: "l", HelpersReq: 1,
	})
	wantKind(t, err, KindNotFound)
}

func TestCreateTaskInactiveOwner(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	if err := s.db.Model(owner).Update("status", models.AccountInactive).Error; err != nil {
		t.Fatalf("deactivate owner: %v", err)
	}
	_, err := s.CreateTask(owner.ID, CreateTaskInput{
		Name: "x", Description: "d", Category: "c", Location: "l", HelpersReq: 1,
	})
	wantKind(t, err, KindForbidden)
}

func TestAcceptTaskFillsSlotsAndTransitions(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	c := seedUser(t, s, "Helper C")
	task := seedTask(t, s, owner.ID, 2, 10)

	_, err := s.AcceptTask(task.ID, owner.ID)
	wantKind(t, err, KindForbidden)

	got, err := s.AcceptTask(task.ID, a.ID)
	if err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if got.CurHelpers != 1 || got.Status != models.TaskOpen {
		t.Fatalf("after one accept expected 1 helper and open, got %d/%s", got.CurHelpers, got.Status)
	}

	_, err = s.AcceptTask(task.ID, a.ID)
	wantKind(t, err, KindConflict)

	got, err = s.AcceptTask(task.ID, b.ID)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if got.CurHelpers != 2 || got.Status != models.TaskInProgress {
		t.Fatalf("full task should be in_progress with 2 helpers, got %d/%s", got.CurHelpers, got.Status)
	}

	_, err = s.AcceptTask(task.ID, c.ID)
	wantKind(t, err, KindConflict)

	final := reloadTask(t, s, task.ID)
	if final.CurHelpers != helperCount(t, s, task.ID) {
		t.Fatalf("cur_helpers %d out of sync with helper rows %d", final.CurHelpers, helperCount(t, s, task.ID))
	}
	if final.CurHelpers > final.HelpersReq {
		t.Fatalf("cur_helpers %d exceeds helpers_req %d", final.CurHelpers, final.HelpersReq)
	}
}

func TestAcceptTaskNotFound(t *testing.T) {
	s := newTestService(t)
	u := seedUser(t, s, "Helper")
	_, err := s.AcceptTask(12345, u.ID)
	wantKind(t, err, KindNotFound)
}

func TestConcurrentAcceptLastSlot(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	task := seedTask(t, s, owner.ID, 1, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []uint{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, uid uint) {
			defer wg.Done()
			_, errs[i] = s.AcceptTask(task.ID, uid)
		}(i, uid)
	}
	wg.Wait()

	okCount, conflictCount := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		case KindOf(err) == KindConflict:
			conflictCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || conflictCount != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got %d/%d", okCount, conflictCount)
	}

	final := reloadTask(t, s, task.ID)
	if final.CurHelpers != 1 || final.Status != models.TaskInProgress {
		t.Fatalf("expected exactly one filled slot and in_progress, got %d/%s", final.CurHelpers, final.Status)
	}
}

func TestConcurrentAcceptBothFit(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	task := seedTask(t, s, owner.ID, 2, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []uint{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, uid uint) {
			defer wg.Done()
			_, errs[i] = s.AcceptTask(task.ID, uid)
		}(i, uid)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("both accepts should fit, got: %v", err)
		}
	}
	final := reloadTask(t, s, task.ID)
	if final.CurHelpers != 2 || final.Status != models.TaskInProgress {
		t.Fatalf("expected 2 helpers and in_progress, got %d/%s", final.CurHelpers, final.Status)
	}
	if n := helperCount(t, s, task.ID); n != 2 {
		t.Fatalf("expected 2 helper rows, got %d", n)
	}
}

func TestCompleteTaskSettlesCreditsFullPolicy(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	stranger := seedUser(t, s, "Stranger")
	task := seedTask(t, s, owner.ID, 2, 10)

	if _, err := s.AcceptTask(task.ID, a.ID); err != nil {
		t.Fatalf("accept a: %v", err)
	}
	if _, err := s.AcceptTask(task.ID, b.ID); err != nil {
		t.Fatalf("accept b: %v", err)
	}

	_, err := s.CompleteTask(task.ID, stranger.ID)
	wantKind(t, err, KindForbidden)

	done, err := s.CompleteTask(task.ID, owner.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.TaskCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}

	if got := reloadUser(t, s, owner.ID); got.CreditsSpent != 10 || got.CreditBalance() != -10 {
		t.Fatalf("owner should have spent 10, got spent=%d balance=%d", got.CreditsSpent, got.CreditBalance())
	}
	for _, h := range []uint{a.ID, b.ID} {
		if got := reloadUser(t, s, h); got.CreditsEarned != 10 {
			t.Fatalf("helper %d should have earned the full value, got %d", h, got.CreditsEarned)
		}
	}

	var entries int64
	if err := s.db.Model(&models.CreditEntry{}).Where("task_id = ?", task.ID).Count(&entries).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if entries != 3 {
		t.Fatalf("expected 3 ledger entries (1 spend, 2 earnings), got %d", entries)
	}

	// Completed is terminal.
	_, err = s.CompleteTask(task.ID, owner.ID)
	wantKind(t, err, KindInvalidState)
	_, err = s.AcceptTask(task.ID, stranger.ID)
	wantKind(t, err, KindConflict)
	if got := reloadTask(t, s, task.ID); got.Status != models.TaskCompleted {
		t.Fatalf("status regressed to %s", got.Status)
	}
}

func TestCompleteTaskSplitPolicy(t *testing.T) {
	s := newTestService(t, WithCreditPolicy(PolicySplit))
	owner := seedUser(t, s, "Owner")
	a := seedUser(t, s, "Helper A")
	b := seedUser(t, s, "Helper B")
	task := seedTask(t, s, owner.ID, 2, 7)

	if _, err := s.AcceptTask(task.ID, a.ID); err != nil {
		t.Fatalf("accept a: %v", err)
	}
	if _, err := s.AcceptTask(task.ID, b.ID); err != nil {
		t.Fatalf("accept b: %v", err)
	}
	if _, err := s.CompleteTask(task.ID, a.ID); err != nil {
		t.Fatalf("helper completes: %v", err)
	}

	if got := reloadUser(t, s, owner.ID); got.CreditsSpent != 7 {
		t.Fatalf("owner should spend the full value, got %d", got.CreditsSpent)
	}
	// 7 credits over 2 helpers: floor division, remainder unpaid.
	for _, h := range []uint{a.ID, b.ID} {
		if got := reloadUser(t, s, h); got.CreditsEarned != 3 {
			t.Fatalf("helper %d should earn 3, got %d", h, got.CreditsEarned)
		}
	}
}

func TestCompleteTaskRequiresInProgress(t *testing.T) {
	s := newTestService(t)
	owner := seedUser(t, s, "Owner")
	task := seedTask(t, s, owner.ID, 2, 5)

	_, err := s.CompleteTask(task.ID, owner.ID)
	wantKind(t, err, KindInvalidState)

	_, err = s.CompleteTask(9999, owner.ID)
	wantKind(t, err, KindNotFound)
}
