package actionplan

import (
	"context"
	"fmt"

	"github.com/carehome-actionplans/internal/domain"
)

// Operation is a mutating action the Dispatcher can route.
type Operation string

const (
	OpUpdateStatus Operation = "update_status"
	OpDelete       Operation = "delete"
	OpMarkViewed   Operation = "mark_viewed"
)

// Command is the generic form of a dispatched write.
type Command struct {
	Category   domain.Category
	Op         Operation
	PlanID     string              // OpUpdateStatus, OpDelete
	ActorID    string              // OpDelete
	Update     domain.StatusUpdate // OpUpdateStatus
	AssignedTo string              // OpMarkViewed
}

// Dispatcher is the only component that decides which partition owns a write.
// Source port errors are returned unmodified and nothing is retried.
type Dispatcher struct {
	ports Ports
}

// NewDispatcher refuses a Ports value that leaves any category without a handler.
func NewDispatcher(ports Ports) (*Dispatcher, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	return &Dispatcher{ports: ports}, nil
}

// UpdateStatus routes by plan.Category, the category of the record being edited.
func (d *Dispatcher) UpdateStatus(ctx context.Context, plan *domain.ActionPlan, u domain.StatusUpdate) (*domain.ActionPlan, error) {
	port, err := d.ports.For(plan.Category)
	if err != nil {
		return nil, err
	}
	return port.UpdateStatus(ctx, plan.ID, u)
}

// Delete applies no status or ownership precondition; the owning partition
// re-validates both.
func (d *Dispatcher) Delete(ctx context.Context, plan *domain.ActionPlan, actorID string) error {
	port, err := d.ports.For(plan.Category)
	if err != nil {
		return err
	}
	return port.Delete(ctx, plan.ID, actorID)
}

func (d *Dispatcher) MarkViewed(ctx context.Context, c domain.Category, assignedTo string) error {
	port, err := d.ports.For(c)
	if err != nil {
		return err
	}
	return port.MarkViewed(ctx, assignedTo)
}

// Dispatch executes cmd. The returned plan is non-nil only for OpUpdateStatus.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (*domain.ActionPlan, error) {
	switch cmd.Op {
	case OpUpdateStatus:
		return d.UpdateStatus(ctx, &domain.ActionPlan{ID: cmd.PlanID, Category: cmd.Category}, cmd.Update)
	case OpDelete:
		return nil, d.Delete(ctx, &domain.ActionPlan{ID: cmd.PlanID, Category: cmd.Category}, cmd.ActorID)
	case OpMarkViewed:
		return nil, d.MarkViewed(ctx, cmd.Category, cmd.AssignedTo)
	default:
		return nil, fmt.Errorf("operation %q: %w", cmd.Op, domain.ErrBadRequest)
	}
}
