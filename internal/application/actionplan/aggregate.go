package actionplan

import (
	"fmt"
	"time"

	"github.com/carehome-actionplans/internal/domain"
)

// LoadState tracks one source list. NotRequested must never be read as an
// empty list.
type LoadState int

const (
	NotRequested LoadState = iota
	Loaded
	Failed
)

// SourceList is one partial list handed to Aggregate.
type SourceList struct {
	Source
	State LoadState
	Items []domain.ActionPlan
	Err   error
}

// SourceError reports a list that could not be merged.
type SourceError struct {
	Category domain.Category `json:"category"`
	Relation Relation        `json:"relation,omitempty"`
	Message  string          `json:"message"`
}

// Board is the deduplicated cross-category worklist.
type Board struct {
	// Ready is false until every configured source has loaded.
	Ready      bool                `json:"ready"`
	Items      []domain.ActionPlan `json:"-"`
	Pending    []domain.ActionPlan `json:"pending"`
	InProgress []domain.ActionPlan `json:"in_progress"`
	Completed  []domain.ActionPlan `json:"completed"`
	Overdue    map[string]bool     `json:"overdue"`
	Errors     []SourceError       `json:"errors,omitempty"`
}

// Aggregate merges lists in the order given. The first occurrence of an ID
// wins and later duplicates are dropped whole. It has no side effects.
func Aggregate(lists []SourceList, now time.Time) *Board {
	b := &Board{
		Ready:      true,
		Items:      []domain.ActionPlan{},
		Pending:    []domain.ActionPlan{},
		InProgress: []domain.ActionPlan{},
		Completed:  []domain.ActionPlan{},
		Overdue:    map[string]bool{},
	}
	seen := make(map[string]struct{})

	for _, l := range lists {
		switch l.State {
		case Loaded:
		case Failed:
			b.Ready = false
			msg := "source failed"
			if l.Err != nil {
				msg = l.Err.Error()
			}
			b.Errors = append(b.Errors, SourceError{Category: l.Category, Relation: l.Relation, Message: msg})
			continue
		default:
			b.Ready = false
			continue
		}

		for _, p := range l.Items {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}

			switch p.Status {
			case domain.StatusPending:
				b.Pending = append(b.Pending, p)
			case domain.StatusInProgress:
				b.InProgress = append(b.InProgress, p)
			case domain.StatusCompleted:
				b.Completed = append(b.Completed, p)
			default:
				b.Errors = append(b.Errors, SourceError{
					Category: l.Category,
					Relation: l.Relation,
					Message:  fmt.Sprintf("action plan %s has unknown status %q", p.ID, p.Status),
				})
				continue
			}
			b.Items = append(b.Items, p)
			if p.IsOverdue(now) {
				b.Overdue[p.ID] = true
			}
		}
	}
	return b
}
