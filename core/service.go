package core

import (
	redis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"helphive/notify"
)

// CreditPolicy decides how a completed task's credit value is paid out.
type CreditPolicy string

const (
	// PolicyFullPerHelper: the owner spends the task value once and every
	// helper earns the full value.
	PolicyFullPerHelper CreditPolicy = "full"
	// PolicySplit: each helper earns value/helperCount (floor division).
	// The remainder is not paid out.
	PolicySplit CreditPolicy = "split"
)

// ParseCreditPolicy returns the policy named by s, defaulting to
// PolicyFullPerHelper for empty or unknown values.
func ParseCreditPolicy(s string) CreditPolicy {
	if CreditPolicy(s) == PolicySplit {
		return PolicySplit
	}
	return PolicyFullPerHelper
}

// casRetries bounds how often an operation re-reads and re-attempts a
// version-checked update before giving up with Conflict.
const casRetries = 3

// Service owns the task lifecycle, swap negotiation, review gate, rating
// aggregation and trust scoring. All mutations run inside a single
// transaction; task and rating rows carry version/count columns that every
// update compares against, so concurrent writers cannot both apply.
type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	cache    *redis.Client
	policy   CreditPolicy
}

type Option func(*Service)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithCache enables trust-score caching. Safe to pass nil.
func WithCache(rc *redis.Client) Option {
	return func(s *Service) { s.cache = rc }
}

func WithCreditPolicy(p CreditPolicy) Option {
	return func(s *Service) { s.policy = p }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		notifier: notify.Noop{},
		policy:   PolicyFullPerHelper,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
