package core

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"helphive/models"
)

var userSeq uint64

// newTestService builds a Service over an in-memory sqlite store. The pool
// is capped at one connection so concurrent calls serialize the same way
// MySQL row access does in production.
func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskHelper{},
		&models.SwapRequest{},
		&models.Review{},
		&models.CreditEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return New(db, opts...)
}

func seedUser(t *testing.T, s *Service, name string) *models.User {
	t.Helper()
	n := atomic.AddUint64(&userSeq, 1)
	u := &models.User{
		Name:     name,
		Number:   fmt.Sprintf("8%09d", n),
		Password: "not-a-real-hash",
		Role:     models.RoleUser,
		Status:   models.AccountActive,
	}
	if err := s.db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedTask(t *testing.T, s *Service, ownerID uint, helpersReq, credits int) *models.Task {
	t.Helper()
	task, err := s.CreateTask(ownerID, CreateTaskInput{
		Name:        "Walk the dog",
		Description: "Around the block twice",
		Category:    "errands",
		Location:    "Downtown",
		Credits:     credits,
		HelpersReq:  helpersReq,
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func reloadTask(t *testing.T, s *Service, id uint) *models.Task {
	t.Helper()
	var task models.Task
	if err := s.db.First(&task, id).Error; err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return &task
}

func reloadUser(t *testing.T, s *Service, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &user
}

func helperCount(t *testing.T, s *Service, taskID uint) int {
	t.Helper()
	var n int64
	if err := s.db.Model(&models.TaskHelper{}).Where("task_id = ?", taskID).Count(&n).Error; err != nil {
		t.Fatalf("count helpers: %v", err)
	}
	return int(n)
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected error kind %d, got %d (%v)", kind, got, err)
	}
}
