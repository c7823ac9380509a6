package actionplan

import (
	"context"
	"time"

	"github.com/carehome-actionplans/internal/domain"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockPort struct{ mock.Mock }

func (m *mockPort) ListAssigned(ctx context.Context, assignedTo string) ([]domain.ActionPlan, error) {
	args := m.Called(ctx, assignedTo)
	plans, _ := args.Get(0).([]domain.ActionPlan)
	return plans, args.Error(1)
}
func (m *mockPort) ListCreated(ctx context.Context, createdBy string) ([]domain.ActionPlan, error) {
	args := m.Called(ctx, createdBy)
	plans, _ := args.Get(0).([]domain.ActionPlan)
	return plans, args.Error(1)
}
func (m *mockPort) ListByAssignee(ctx context.Context, assignedTo, scopeID string) ([]domain.ActionPlan, error) {
	args := m.Called(ctx, assignedTo, scopeID)
	plans, _ := args.Get(0).([]domain.ActionPlan)
	return plans, args.Error(1)
}
func (m *mockPort) UnseenCount(ctx context.Context, assignedTo string) (int, error) {
	args := m.Called(ctx, assignedTo)
	return args.Int(0), args.Error(1)
}
func (m *mockPort) Create(ctx context.Context, p *domain.ActionPlan) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPort) UpdateStatus(ctx context.Context, planID string, u domain.StatusUpdate) (*domain.ActionPlan, error) {
	args := m.Called(ctx, planID, u)
	if p, _ := args.Get(0).(*domain.ActionPlan); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPort) Delete(ctx context.Context, planID, actorID string) error {
	return m.Called(ctx, planID, actorID).Error(0)
}
func (m *mockPort) MarkViewed(ctx context.Context, assignedTo string) error {
	return m.Called(ctx, assignedTo).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishStatusChanged(ctx context.Context, p *domain.ActionPlan) error {
	return m.Called(ctx, p).Error(0)
}

// --- helpers ---

type portSet struct {
	resident, carefile, governance, clinical, environment *mockPort
}

func newPortSet() portSet {
	return portSet{&mockPort{}, &mockPort{}, &mockPort{}, &mockPort{}, &mockPort{}}
}

func (ps portSet) ports() Ports {
	return Ports{
		Resident:    ps.resident,
		CareFile:    ps.carefile,
		Governance:  ps.governance,
		Clinical:    ps.clinical,
		Environment: ps.environment,
	}
}

func (ps portSet) all() []*mockPort {
	return []*mockPort{ps.resident, ps.carefile, ps.governance, ps.clinical, ps.environment}
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func plan(id string, c domain.Category, s domain.Status) domain.ActionPlan {
	return domain.ActionPlan{ID: id, Category: c, Status: s, Priority: domain.PriorityMedium}
}

func strPtr(s string) *string { return &s }
