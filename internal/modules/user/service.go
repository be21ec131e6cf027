package user

import (
	"context"
	"errors"
	"strings"

	"devplan/internal/domain"
	"devplan/internal/pkg/apperr"
	"devplan/internal/pkg/password"
	"devplan/internal/pkg/validator"
	"devplan/internal/repository"

	"go.uber.org/zap"
)

// Service contains the business logic for user accounts
type Service struct {
	users  UserStore
	authz  Authorizer
	hasher password.Hasher
	log    *zap.Logger
}

func NewService(users UserStore, authz Authorizer, hasher password.Hasher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, authz: authz, hasher: hasher, log: log}
}

// Create registers a new active account. Anyone may call it; only an ADMIN
// caller may choose the role or the manager. caller is zero for anonymous
// requests.
func (s *Service) Create(ctx context.Context, caller domain.Identity, req CreateUserRequest) (*domain.User, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	wantsRole := req.Role != nil && strings.TrimSpace(*req.Role) != ""
	wantsManager := req.ManagerID != nil && strings.TrimSpace(*req.ManagerID) != ""
	if (wantsRole || wantsManager) && caller.Role != domain.RoleAdmin {
		return nil, ErrRoleAssignment
	}

	role := domain.RoleUser
	if wantsRole {
		r, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, ErrUnknownRole
		}
		role = r
	}

	var managerID *string
	if wantsManager {
		mgr, err := s.users.GetByID(ctx, strings.TrimSpace(*req.ManagerID))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrInvalidManager
			}
			return nil, apperr.Internal(err)
		}
		if !mgr.Role.AtLeast(domain.RoleManager) {
			return nil, ErrInvalidManager
		}
		managerID = &mgr.ID
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		ManagerID:    managerID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info("user created",
		zap.String("user_id", u.ID),
		zap.String("role", u.Role.String()),
		zap.String("created_by", caller.UserID),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, caller domain.Identity, id string) (*domain.User, error) {
	return s.authz.AuthorizeUserAccess(ctx, caller, id)
}

// List pages through the users the caller may see: everyone for an ADMIN,
// direct reports for a MANAGER.
func (s *Service) List(ctx context.Context, caller domain.Identity, q ListQuery) (domain.Page[domain.User], error) {
	scope, err := s.authz.AuthorizeUserList(caller)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}

	filter := repository.UserFilter{PageParams: repository.PageParams{Page: q.Page, PageSize: q.PageSize}}
	if !scope.All {
		managerID := scope.ManagerID
		filter.ManagerID = &managerID
	}
	page, err := s.users.List(ctx, filter)
	if err != nil {
		return domain.Page[domain.User]{}, apperr.Internal(err)
	}
	return page, nil
}

func (s *Service) Rename(ctx context.Context, caller domain.Identity, id string, req UpdateUserRequest) (*domain.User, error) {
	target, err := s.authz.AuthorizeUserAccess(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.UpdateName(ctx, target.ID, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) Activate(ctx context.Context, caller domain.Identity, id string) error {
	return s.setActive(ctx, caller, id, true)
}

// Deactivate also ends every session of the user.
func (s *Service) Deactivate(ctx context.Context, caller domain.Identity, id string) error {
	return s.setActive(ctx, caller, id, false)
}

func (s *Service) setActive(ctx context.Context, caller domain.Identity, id string, active bool) error {
	if err := s.authz.AuthorizeActivation(caller); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.BadRequest("user id is required")
	}
	if !active && id == caller.UserID {
		return ErrSelfDeactivation
	}

	if err := s.users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return apperr.Internal(err)
	}
	s.log.Info("user activation changed",
		zap.String("user_id", id),
		zap.Bool("active", active),
		zap.String("changed_by", caller.UserID),
	)
	return nil
}
