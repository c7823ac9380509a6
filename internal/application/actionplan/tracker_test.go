package actionplan

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carehome-actionplans/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, ps portSet) (*Tracker, *MemoryGuard) {
	t.Helper()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)
	g := NewMemoryGuard(time.Minute)
	return NewTracker(d, g), g
}

func TestTracker_FiresOncePerCategoryUntilStoreCatchesUp(t *testing.T) {
	ps := newPortSet()
	tr, _ := newTestTracker(t, ps)
	ctx := context.Background()
	ps.governance.On("MarkViewed", mock.Anything, "u1").Return(nil)

	counts := map[domain.Category]int{domain.CategoryGovernance: 2}
	assert.Equal(t, []domain.Category{domain.CategoryGovernance}, tr.Acknowledge(ctx, "u1", counts))
	// Second render before the store reflects the acknowledgement.
	assert.Empty(t, tr.Acknowledge(ctx, "u1", counts))

	ps.governance.AssertNumberOfCalls(t, "MarkViewed", 1)
}

func TestTracker_ZeroCountIsNoopAndReleases(t *testing.T) {
	ps := newPortSet()
	tr, _ := newTestTracker(t, ps)
	ctx := context.Background()
	ps.clinical.On("MarkViewed", mock.Anything, "u1").Return(nil)

	assert.Empty(t, tr.Acknowledge(ctx, "u1", map[domain.Category]int{domain.CategoryClinical: 0}))
	ps.clinical.AssertNotCalled(t, "MarkViewed", mock.Anything, mock.Anything)

	// Acknowledged, then the store reports zero, then a new plan arrives.
	tr.Acknowledge(ctx, "u1", map[domain.Category]int{domain.CategoryClinical: 1})
	tr.Acknowledge(ctx, "u1", map[domain.Category]int{domain.CategoryClinical: 0})
	fired := tr.Acknowledge(ctx, "u1", map[domain.Category]int{domain.CategoryClinical: 1})

	assert.Equal(t, []domain.Category{domain.CategoryClinical}, fired)
	ps.clinical.AssertNumberOfCalls(t, "MarkViewed", 2)
}

func TestTracker_FailedMarkReleasesGuardForRetry(t *testing.T) {
	ps := newPortSet()
	tr, _ := newTestTracker(t, ps)
	ctx := context.Background()
	ps.resident.On("MarkViewed", mock.Anything, "u1").Return(domain.ErrTransient).Once()
	ps.resident.On("MarkViewed", mock.Anything, "u1").Return(nil).Once()

	counts := map[domain.Category]int{domain.CategoryResident: 3}
	assert.Empty(t, tr.Acknowledge(ctx, "u1", counts))
	assert.Equal(t, []domain.Category{domain.CategoryResident}, tr.Acknowledge(ctx, "u1", counts))
	ps.resident.AssertExpectations(t)
}

func TestTracker_GuardsAreScopedPerAssignee(t *testing.T) {
	ps := newPortSet()
	tr, _ := newTestTracker(t, ps)
	ctx := context.Background()
	ps.carefile.On("MarkViewed", mock.Anything, mock.Anything).Return(nil)

	counts := map[domain.Category]int{domain.CategoryCareFile: 1}
	tr.Acknowledge(ctx, "u1", counts)
	tr.Acknowledge(ctx, "u2", counts)

	ps.carefile.AssertNumberOfCalls(t, "MarkViewed", 2)
}

type failingGuard struct{}

func (failingGuard) Acquire(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (failingGuard) Release(context.Context, string) error         { return errors.New("redis down") }

func TestTracker_GuardErrorSkipsWrite(t *testing.T) {
	ps := newPortSet()
	d, err := NewDispatcher(ps.ports())
	require.NoError(t, err)
	tr := NewTracker(d, failingGuard{})

	assert.Empty(t, tr.Acknowledge(context.Background(), "u1", map[domain.Category]int{domain.CategoryEnvironment: 4}))
	ps.environment.AssertNotCalled(t, "MarkViewed", mock.Anything, mock.Anything)
}

func TestMemoryGuard_ExpiresAfterTTL(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	clock := testNow
	g.now = func() time.Time { return clock }
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Acquire(ctx, "k")
	assert.False(t, ok)

	clock = clock.Add(time.Minute)
	ok, _ = g.Acquire(ctx, "k")
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "k"))
	ok, _ = g.Acquire(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryGuard_SweepsExpiredKeysWhenGrown(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	clock := testNow
	g.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < minSweep-1; i++ {
		ok, err := g.Acquire(ctx, fmt.Sprintf("old-%d", i))
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Len(t, g.held, minSweep-1)

	clock = clock.Add(time.Minute)
	ok, err := g.Acquire(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, g.held, 1)
	assert.Equal(t, minSweep, g.sweepAt)
}

func TestMemoryGuard_SweepThresholdDoublesWithLiveKeys(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	g.now = func() time.Time { return testNow }
	ctx := context.Background()

	for i := 0; i < minSweep; i++ {
		ok, _ := g.Acquire(ctx, fmt.Sprintf("live-%d", i))
		require.True(t, ok)
	}

	assert.Len(t, g.held, minSweep)
	assert.Equal(t, 2*minSweep, g.sweepAt)
	ok, _ := g.Acquire(ctx, "live-0")
	assert.False(t, ok)
}
