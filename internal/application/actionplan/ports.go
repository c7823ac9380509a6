package actionplan

import (
	"context"
	"fmt"

	"github.com/carehome-actionplans/internal/domain"
)

// SourcePort is the read/write surface of one category's storage partition.
// Every method is scoped to exactly that partition.
type SourcePort interface {
	ListAssigned(ctx context.Context, assignedTo string) ([]domain.ActionPlan, error)
	ListCreated(ctx context.Context, createdBy string) ([]domain.ActionPlan, error)
	ListByAssignee(ctx context.Context, assignedTo, scopeID string) ([]domain.ActionPlan, error)
	UnseenCount(ctx context.Context, assignedTo string) (int, error)

	Create(ctx context.Context, p *domain.ActionPlan) error
	UpdateStatus(ctx context.Context, planID string, u domain.StatusUpdate) (*domain.ActionPlan, error)
	// Delete removes a completed plan on behalf of its assignee or creator.
	Delete(ctx context.Context, planID, actorID string) error
	MarkViewed(ctx context.Context, assignedTo string) error
}

// Ports holds one SourcePort per category. Adding a category means adding a
// field here and a case in For; TestPorts_ForCoversEveryCategory fails until both exist.
type Ports struct {
	Resident    SourcePort
	CareFile    SourcePort
	Governance  SourcePort
	Clinical    SourcePort
	Environment SourcePort
}

// For resolves the partition that owns category c. Unknown tags and missing
// handlers fail with domain.ErrUnresolvedCategory; there is no default route.
func (p Ports) For(c domain.Category) (SourcePort, error) {
	var port SourcePort
	switch c {
	case domain.CategoryResident:
		port = p.Resident
	case domain.CategoryCareFile:
		port = p.CareFile
	case domain.CategoryGovernance:
		port = p.Governance
	case domain.CategoryClinical:
		port = p.Clinical
	case domain.CategoryEnvironment:
		port = p.Environment
	default:
		return nil, fmt.Errorf("category %q: %w", c, domain.ErrUnresolvedCategory)
	}
	if port == nil {
		return nil, fmt.Errorf("category %q has no handler: %w", c, domain.ErrUnresolvedCategory)
	}
	return port, nil
}

// Validate checks that every category in the closed set resolves.
func (p Ports) Validate() error {
	for _, c := range domain.Categories() {
		if _, err := p.For(c); err != nil {
			return err
		}
	}
	return nil
}
