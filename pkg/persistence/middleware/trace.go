package middleware

import (
	"context"

	"github.com/aretw0/turingviz/pkg/domain"
	"github.com/aretw0/turingviz/pkg/ports"
)

type traceLimitMiddleware struct {
	next  ports.SessionStore
	limit int
}

// NewTraceLimitMiddleware keeps at most limit checkpoints of the undo trace
// when saving, dropping the oldest ones. A non-positive limit disables it.
// The caller's session is never modified.
func NewTraceLimitMiddleware(limit int) Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		if limit <= 0 {
			return next
		}
		return &traceLimitMiddleware{next: next, limit: limit}
	}
}

func (m *traceLimitMiddleware) Save(ctx context.Context, s *domain.Session) error {
	if len(s.Trace) <= m.limit {
		return m.next.Save(ctx, s)
	}
	trimmed := *s
	trimmed.Trace = s.Trace[len(s.Trace)-m.limit:]
	return m.next.Save(ctx, &trimmed)
}

func (m *traceLimitMiddleware) Load(ctx context.Context, id string) (*domain.Session, error) {
	return m.next.Load(ctx, id)
}

func (m *traceLimitMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *traceLimitMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
