package actionplan

import (
	"context"
	"log/slog"

	"github.com/carehome-actionplans/internal/domain"
)

type viewMarker interface {
	MarkViewed(ctx context.Context, c domain.Category, assignedTo string) error
}

// Tracker turns unseen counts into at most one mark-viewed write per
// (category, assignee) until the store reports the count back at zero.
type Tracker struct {
	marker viewMarker
	guard  AckGuard
}

func NewTracker(marker viewMarker, guard AckGuard) *Tracker {
	return &Tracker{marker: marker, guard: guard}
}

// Acknowledge fires MarkViewed for every category with a positive count whose
// guard it can acquire, and returns the categories it fired for. A zero count
// releases the guard. A failed write releases it too so the next call retries.
func (t *Tracker) Acknowledge(ctx context.Context, assignedTo string, counts map[domain.Category]int) []domain.Category {
	var fired []domain.Category
	for _, c := range domain.Categories() {
		n, ok := counts[c]
		if !ok {
			continue
		}
		key := ackKey(c, assignedTo)
		if n <= 0 {
			if err := t.guard.Release(ctx, key); err != nil {
				slog.Warn("could not release ack guard", "category", c, "assigned_to", assignedTo, "err", err)
			}
			continue
		}
		acquired, err := t.guard.Acquire(ctx, key)
		if err != nil {
			slog.Warn("could not acquire ack guard", "category", c, "assigned_to", assignedTo, "err", err)
			continue
		}
		if !acquired {
			continue
		}
		if err := t.marker.MarkViewed(ctx, c, assignedTo); err != nil {
			slog.Warn("mark viewed failed", "category", c, "assigned_to", assignedTo, "err", err)
			if rErr := t.guard.Release(ctx, key); rErr != nil {
				slog.Warn("could not release ack guard", "category", c, "assigned_to", assignedTo, "err", rErr)
			}
			continue
		}
		fired = append(fired, c)
	}
	return fired
}

func ackKey(c domain.Category, assignedTo string) string {
	return string(c) + ":" + assignedTo
}
