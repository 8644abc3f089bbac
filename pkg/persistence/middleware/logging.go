package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.SessionStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at
// warn level. A missing session is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(op, id string, start time.Time, err error) {
	attrs := []any{"op", op, "session_id", id, "duration", time.Since(start)}
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.Warn("session store call failed", append(attrs, "err", err)...)
		return
	}
	m.logger.Debug("session store call", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, s *domain.Session) error {
	start := time.Now()
	err := m.next.Save(ctx, s)
	m.log("save", s.ID, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, id string) (*domain.Session, error) {
	start := time.Now()
	s, err := m.next.Load(ctx, id)
	m.log("load", id, start, err)
	return s, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.log("delete", id, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.log("list", "", start, err)
	return ids, err
}
