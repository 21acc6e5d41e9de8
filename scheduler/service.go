package scheduler

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/avishkarm/clinic-scheduler/config"
)

// Service is the scheduling core: slot generation, conflict checking,
// free-slot suggestion and the booking write path. It owns no HTTP or
// rendering concerns.
type Service struct {
	db     *gorm.DB
	cfg    config.SchedulingConfig
	loc    *time.Location
	cache  *redis.Client
	events EventSink
	audit  AuditSink
}

type Option func(*Service)

// WithCache enables Redis caching of free-slot suggestions. Stale
// suggestions are safe: booking writes re-check conflicts.
func WithCache(client *redis.Client) Option {
	return func(s *Service) { s.cache = client }
}

func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

func WithAudit(sink AuditSink) Option {
	return func(s *Service) { s.audit = sink }
}

func New(db *gorm.DB, cfg config.SchedulingConfig, opts ...Option) *Service {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	s := &Service{db: db, cfg: cfg, loc: loc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
