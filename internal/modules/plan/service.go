package plan

import (
	"context"
	"errors"
	"strings"
	"time"

	"devplan/internal/domain"
	"devplan/internal/pkg/apperr"
	"devplan/internal/pkg/validator"
	"devplan/internal/repository"

	"go.uber.org/zap"
)

// Service manages development plans and their goals, actions, check-ins
// and feedback. Every operation is authorized against the caller.
type Service struct {
	plans PlanStore
	authz Authorizer
	log   *zap.Logger
}

func NewService(plans PlanStore, authz Authorizer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{plans: plans, authz: authz, log: log}
}

// CreateDraft stores a new DRAFT plan with its goals and actions in one
// transaction.
func (s *Service) CreateDraft(ctx context.Context, caller domain.Identity, req CreatePlanRequest) (*domain.Plan, error) {
	if caller.IsZero() {
		return nil, ErrUnauthorized
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if !req.PeriodTo.After(req.PeriodFrom) {
		return nil, ErrInvalidPeriod
	}

	ownerID, err := s.authz.AuthorizePlanCreation(ctx, caller, req.UserID)
	if err != nil {
		return nil, err
	}

	p := &domain.Plan{
		UserID:      ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      domain.PlanStatusDraft,
		PeriodFrom:  req.PeriodFrom.UTC(),
		PeriodTo:    req.PeriodTo.UTC(),
		Goals:       make([]domain.Goal, 0, len(req.Goals)),
	}
	for _, g := range req.Goals {
		p.Goals = append(p.Goals, newGoal(g))
	}

	if err := s.plans.CreateWithGoals(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("plan created",
		zap.String("plan_id", p.ID),
		zap.String("owner_id", ownerID),
		zap.String("created_by", caller.UserID),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, caller domain.Identity, planID string) (*domain.Plan, error) {
	if _, err := s.authz.AuthorizePlanRead(ctx, caller, planID); err != nil {
		return nil, err
	}
	p, err := s.plans.GetPlan(ctx, strings.TrimSpace(planID))
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	return p, nil
}

// ListByUser pages through the plans of q.UserID, or the caller's own plans
// when it is empty.
func (s *Service) ListByUser(ctx context.Context, caller domain.Identity, q ListQuery) (domain.Page[domain.Plan], error) {
	ownerID, err := s.authz.AuthorizePlanListing(ctx, caller, q.UserID)
	if err != nil {
		return domain.Page[domain.Plan]{}, err
	}
	page, err := s.plans.ListByUser(ctx, ownerID, repository.PageParams{Page: q.Page, PageSize: q.PageSize})
	if err != nil {
		return domain.Page[domain.Plan]{}, apperr.Internal(err)
	}
	return page, nil
}

// Activate moves a DRAFT plan to ACTIVE. Any other status is a conflict.
func (s *Service) Activate(ctx context.Context, caller domain.Identity, planID string) error {
	own, err := s.authz.AuthorizePlanRead(ctx, caller, planID)
	if err != nil {
		return err
	}
	moved, err := s.plans.TransitionStatus(ctx, own.PlanID, domain.PlanStatusDraft, domain.PlanStatusActive)
	if err != nil {
		return apperr.Internal(err)
	}
	if !moved {
		return ErrPlanNotDraft
	}
	s.log.Info("plan activated", zap.String("plan_id", own.PlanID), zap.String("by", caller.UserID))
	return nil
}

func (s *Service) AddGoal(ctx context.Context, caller domain.Identity, planID string, in GoalInput) (*domain.Goal, error) {
	own, err := s.authz.AuthorizePlanRead(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	g := newGoal(in)
	g.PlanID = own.PlanID
	if err := s.plans.AddGoal(ctx, &g); err != nil {
		return nil, apperr.Internal(err)
	}
	return &g, nil
}

func (s *Service) AddAction(ctx context.Context, caller domain.Identity, planID, goalID string, in ActionInput) (*domain.ActionItem, error) {
	goal, err := s.authorizeGoal(ctx, caller, planID, goalID)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	a := newAction(in)
	a.GoalID = goal.ID
	if err := s.plans.AddAction(ctx, &a); err != nil {
		return nil, apperr.Internal(err)
	}
	return &a, nil
}

// AddCheckIn records progress on a goal. ProgressPct must be within 0..100.
func (s *Service) AddCheckIn(ctx context.Context, caller domain.Identity, planID, goalID string, req CheckInRequest) (*domain.CheckIn, error) {
	goal, err := s.authorizeGoal(ctx, caller, planID, goalID)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	c := &domain.CheckIn{
		GoalID:      goal.ID,
		Notes:       req.Notes,
		ProgressPct: *req.ProgressPct,
	}
	if err := s.plans.AddCheckIn(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// AddFeedback attaches a comment to the plan, authored by the caller.
func (s *Service) AddFeedback(ctx context.Context, caller domain.Identity, planID string, req FeedbackRequest) (*domain.Feedback, error) {
	own, err := s.authz.AuthorizeFeedback(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	f := &domain.Feedback{
		PlanID:   own.PlanID,
		AuthorID: caller.UserID,
		Message:  strings.TrimSpace(req.Message),
	}
	if err := s.plans.AddFeedback(ctx, f); err != nil {
		return nil, apperr.Internal(err)
	}
	return f, nil
}

func (s *Service) authorizeGoal(ctx context.Context, caller domain.Identity, planID, goalID string) (*domain.Goal, error) {
	own, err := s.authz.AuthorizePlanRead(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	goalID = strings.TrimSpace(goalID)
	if goalID == "" {
		return nil, apperr.BadRequest("goal id is required")
	}
	goal, err := s.plans.GetGoal(ctx, own.PlanID, goalID)
	if err != nil {
		return nil, notFound(err, ErrGoalNotFound)
	}
	return goal, nil
}

func newGoal(in GoalInput) domain.Goal {
	g := domain.Goal{
		Title:      strings.TrimSpace(in.Title),
		Specific:   in.Specific,
		Measurable: in.Measurable,
		Achievable: in.Achievable,
		Relevant:   in.Relevant,
		TimeBound:  utc(in.TimeBound),
		Actions:    make([]domain.ActionItem, 0, len(in.Actions)),
	}
	for _, a := range in.Actions {
		g.Actions = append(g.Actions, newAction(a))
	}
	return g
}

func newAction(in ActionInput) domain.ActionItem {
	return domain.ActionItem{
		Description: strings.TrimSpace(in.Description),
		OwnerID:     in.OwnerID,
		DueDate:     utc(in.DueDate),
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func notFound(err error, target *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return apperr.Internal(err)
}
