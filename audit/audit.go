package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/avishkarm/clinic-scheduler/scheduler"
)

// Logger records audit entries as structured log events. Durable audit
// storage belongs to an external collaborator; this sink is the in-process
// default.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Record(ctx context.Context, entry scheduler.AuditEntry) {
	l.log.Info("audit",
		zap.Uint("actor", entry.Actor),
		zap.String("action", entry.Action),
		zap.String("object_type", entry.ObjectType),
		zap.Uint("object_id", entry.ObjectID),
	)
}
