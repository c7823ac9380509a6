package actionplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carehome-actionplans/internal/domain"
	"github.com/carehome-actionplans/internal/pkg/id"
	"github.com/carehome-actionplans/internal/pkg/validate"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentLoads bounds the source reads issued for one board load.
const maxConcurrentLoads = 4

// Actor is the authenticated staff member acting on the board.
type Actor struct {
	ID      string
	Name    string
	Role    string
	ScopeID string
}

type Service interface {
	Board(ctx context.Context, actor Actor) (*Board, error)
	UnseenCounts(ctx context.Context, assignedTo string) (map[domain.Category]int, error)
	// BoardOpened acknowledges unseen plans in the background and returns immediately.
	BoardOpened(ctx context.Context, actor Actor)
	UpdateStatus(ctx context.Context, c domain.Category, planID string, req domain.StatusChangeRequest, actor Actor) (*domain.ActionPlan, error)
	Delete(ctx context.Context, c domain.Category, planID string, actor Actor) error
	MarkViewed(ctx context.Context, c domain.Category, actor Actor) error
	Raise(ctx context.Context, c domain.Category, req domain.RaiseRequest, actor Actor) (*domain.ActionPlan, error)
}

// StatusPublisher announces status changes to other systems.
type StatusPublisher interface {
	PublishStatusChanged(ctx context.Context, p *domain.ActionPlan) error
}

type service struct {
	ports      Ports
	sources    []Source
	dispatcher *Dispatcher
	tracker    *Tracker
	publisher  StatusPublisher
	ackTimeout time.Duration
	now        func() time.Time
	// ackDone is called after each background acknowledgement run. Tests hook it.
	ackDone func(fired []domain.Category)
}

type ServiceDeps struct {
	Ports      Ports
	Sources    []Source        // defaults to DefaultSources()
	Guard      AckGuard        // defaults to a MemoryGuard
	Publisher  StatusPublisher // optional
	AckTimeout time.Duration
	Now        func() time.Time
}

func NewService(deps ServiceDeps) (Service, error) {
	dispatcher, err := NewDispatcher(deps.Ports)
	if err != nil {
		return nil, err
	}
	sources := deps.Sources
	if sources == nil {
		sources = DefaultSources()
	}
	guard := deps.Guard
	if guard == nil {
		guard = NewMemoryGuard(30 * time.Second)
	}
	ackTimeout := deps.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = 10 * time.Second
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		ports:      deps.Ports,
		sources:    sources,
		dispatcher: dispatcher,
		tracker:    NewTracker(dispatcher, guard),
		publisher:  deps.Publisher,
		ackTimeout: ackTimeout,
		now:        now,
		ackDone:    func([]domain.Category) {},
	}, nil
}

// Board loads every configured source and aggregates them. A failing source
// is reported on the board, never treated as empty.
func (s *service) Board(ctx context.Context, actor Actor) (*Board, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("missing actor: %w", domain.ErrUnauthorized)
	}
	lists := make([]SourceList, len(s.sources))
	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for i, src := range s.sources {
		i, src := i, src
		lists[i] = SourceList{Source: src}
		port, err := s.ports.For(src.Category)
		if err != nil {
			lists[i].State, lists[i].Err = Failed, err
			continue
		}
		g.Go(func() error {
			items, err := load(ctx, port, src, actor)
			if err != nil {
				slog.Warn("action plan source failed", "category", src.Category, "relation", src.Relation, "err", err)
				lists[i].State, lists[i].Err = Failed, err
				return nil
			}
			lists[i].State, lists[i].Items = Loaded, items
			return nil
		})
	}
	_ = g.Wait()
	return Aggregate(lists, s.now()), nil
}

func load(ctx context.Context, port SourcePort, src Source, actor Actor) ([]domain.ActionPlan, error) {
	switch {
	case src.Relation == RelationCreated:
		return port.ListCreated(ctx, actor.ID)
	case src.Scoped:
		return port.ListByAssignee(ctx, actor.ID, actor.ScopeID)
	default:
		return port.ListAssigned(ctx, actor.ID)
	}
}

func (s *service) UnseenCounts(ctx context.Context, assignedTo string) (map[domain.Category]int, error) {
	counts, errs := s.unseenCounts(ctx, assignedTo)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return counts, nil
}

// unseenCounts returns the counts it could read plus one error per failed category.
func (s *service) unseenCounts(ctx context.Context, assignedTo string) (map[domain.Category]int, []error) {
	var (
		mu     sync.Mutex
		counts = make(map[domain.Category]int)
		errs   []error
		g      errgroup.Group
	)
	g.SetLimit(maxConcurrentLoads)
	for _, c := range domain.Categories() {
		c := c
		port, err := s.ports.For(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.Go(func() error {
			n, err := port.UnseenCount(ctx, assignedTo)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("unseen count %s: %w", c, err))
				return nil
			}
			counts[c] = n
			return nil
		})
	}
	_ = g.Wait()
	return counts, errs
}

func (s *service) BoardOpened(ctx context.Context, actor Actor) {
	if actor.ID == "" {
		return
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ackTimeout)
	go func() {
		defer cancel()
		counts, errs := s.unseenCounts(bg, actor.ID)
		for _, err := range errs {
			slog.Warn("skipping acknowledgement", "assigned_to", actor.ID, "err", err)
		}
		fired := s.tracker.Acknowledge(bg, actor.ID, counts)
		if len(fired) > 0 {
			slog.Info("acknowledged action plans", "assigned_to", actor.ID, "categories", fired)
		}
		s.ackDone(fired)
	}()
}

func (s *service) UpdateStatus(ctx context.Context, c domain.Category, planID string, req domain.StatusChangeRequest, actor Actor) (*domain.ActionPlan, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if planID == "" {
		return nil, fmt.Errorf("missing action plan id: %w", domain.ErrBadRequest)
	}
	updated, err := s.dispatcher.UpdateStatus(ctx, &domain.ActionPlan{ID: planID, Category: c}, domain.StatusUpdate{
		Status:    req.Status,
		Comment:   req.Comment,
		ActorID:   actor.ID,
		ActorName: actor.Name,
	})
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishStatusChanged(ctx, updated); err != nil {
			slog.Warn("could not publish status change", "action_plan_id", updated.ID, "category", c, "err", err)
		}
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, c domain.Category, planID string, actor Actor) error {
	if actor.ID == "" {
		return fmt.Errorf("missing actor: %w", domain.ErrUnauthorized)
	}
	if planID == "" {
		return fmt.Errorf("missing action plan id: %w", domain.ErrBadRequest)
	}
	return s.dispatcher.Delete(ctx, &domain.ActionPlan{ID: planID, Category: c}, actor.ID)
}

func (s *service) MarkViewed(ctx context.Context, c domain.Category, actor Actor) error {
	return s.dispatcher.MarkViewed(ctx, c, actor.ID)
}

// Raise records a new pending plan against an audit finding in category c.
func (s *service) Raise(ctx context.Context, c domain.Category, req domain.RaiseRequest, actor Actor) (*domain.ActionPlan, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	port, err := s.ports.For(c)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	p := &domain.ActionPlan{
		ID:             id.New(),
		Category:       c,
		Status:         domain.StatusPending,
		Priority:       req.Priority,
		Description:    req.Description,
		TemplateName:   req.TemplateName,
		AuditID:        req.AuditID,
		ScopeID:        req.ScopeID,
		AssignedTo:     req.AssignedTo,
		AssignedToName: req.AssignedToName,
		CreatedBy:      actor.ID,
		CreatedByName:  actor.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if p.ScopeID == "" {
		p.ScopeID = actor.ScopeID
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", domain.ErrBadRequest)
		}
		p.DueDate = &due
	}
	if err := port.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
