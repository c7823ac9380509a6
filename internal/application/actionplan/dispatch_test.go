package actionplan

import (
	"context"
	"errors"
	"testing"

	"github.com/carehome-actionplans/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPorts_ForCoversEveryCategory(t *testing.T) {
	ps := newPortSet()
	ports := ps.ports()
	want := map[domain.Category]SourcePort{
		domain.CategoryResident:    ps.resident,
		domain.CategoryCareFile:    ps.carefile,
		domain.CategoryGovernance:  ps.governance,
		domain.CategoryClinical:    ps.clinical,
		domain.CategoryEnvironment: ps.environment,
	}
	require.Len(t, want, len(domain.Categories()))
	for _, c := range domain.Categories() {
		got, err := ports.For(c)
		require.NoError(t, err, c)
		assert.Same(t, want[c], got, c)
	}
}

func TestPorts_ForUnknownCategory(t *testing.T) {
	_, err := newPortSet().ports().For("medication")
	assert.True(t, errors.Is(err, domain.ErrUnresolvedCategory))
}

func TestNewDispatcher_MissingHandler(t *testing.T) {
	ports := newPortSet().ports()
	ports.Environment = nil

	_, err := NewDispatcher(ports)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnresolvedCategory))
}

func TestDispatcher_UpdateStatus_RoutesToOwningCategoryOnly(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)

	u := domain.StatusUpdate{Status: domain.StatusCompleted, Comment: strPtr("done"), ActorID: "u1", ActorName: "Ann"}
	persisted := plan("ap-9", domain.CategoryClinical, domain.StatusCompleted)
	ps.clinical.On("UpdateStatus", mock.Anything, "ap-9", u).Return(&persisted, nil)

	inMemory := plan("ap-9", domain.CategoryClinical, domain.StatusPending)
	got, err := d.UpdateStatus(context.Background(), &inMemory, u)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	ps.clinical.AssertNumberOfCalls(t, "UpdateStatus", 1)
	for _, p := range []*mockPort{ps.resident, ps.carefile, ps.governance, ps.environment} {
		p.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestDispatcher_Delete_UnresolvedCategoryMutatesNothing(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)

	orphan := plan("ap-1", domain.Category(""), domain.StatusCompleted)
	err = d.Delete(context.Background(), &orphan, "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnresolvedCategory))
	for _, p := range ps.all() {
		p.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestDispatcher_Delete_NoStatusPrecondition(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)

	ps.resident.On("Delete", mock.Anything, "r1", "u1").Return(nil)
	p := plan("r1", domain.CategoryResident, domain.StatusPending)

	require.NoError(t, d.Delete(context.Background(), &p, "u1"))
	ps.resident.AssertExpectations(t)
}

func TestDispatcher_PropagatesPortErrorUnmodified(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)

	portErr := errors.New("boom")
	ps.governance.On("Delete", mock.Anything, "g1", "u1").Return(portErr)
	p := plan("g1", domain.CategoryGovernance, domain.StatusCompleted)

	assert.Same(t, portErr, d.Delete(context.Background(), &p, "u1"))
}

func TestDispatcher_Dispatch(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)
	ctx := context.Background()

	ps.environment.On("MarkViewed", mock.Anything, "u1").Return(nil)
	_, err = d.Dispatch(ctx, Command{Category: domain.CategoryEnvironment, Op: OpMarkViewed, AssignedTo: "u1"})
	require.NoError(t, err)

	ps.carefile.On("Delete", mock.Anything, "cf-1", "u1").Return(nil)
	_, err = d.Dispatch(ctx, Command{Category: domain.CategoryCareFile, Op: OpDelete, PlanID: "cf-1", ActorID: "u1"})
	require.NoError(t, err)

	u := domain.StatusUpdate{Status: domain.StatusInProgress, ActorID: "u1"}
	updated := plan("g1", domain.CategoryGovernance, domain.StatusInProgress)
	ps.governance.On("UpdateStatus", mock.Anything, "g1", u).Return(&updated, nil)
	got, err := d.Dispatch(ctx, Command{Category: domain.CategoryGovernance, Op: OpUpdateStatus, PlanID: "g1", Update: u})
	require.NoError(t, err)
	assert.Equal(t, "g1", got.ID)

	_, err = d.Dispatch(ctx, Command{Category: domain.CategoryGovernance, Op: "archive", PlanID: "g1"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = d.Dispatch(ctx, Command{Category: "medication", Op: OpMarkViewed, AssignedTo: "u1"})
	assert.True(t, errors.Is(err, domain.ErrUnresolvedCategory))

	for _, p := range ps.all() {
		p.AssertExpectations(t)
	}
}
