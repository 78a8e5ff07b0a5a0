// Package managers implements manager administration and the invite flow
// that brings new managers into a shop.
package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/internal/users"
	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type managerStore interface {
	GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error)
	GetManagerByID(ctx context.Context, shopID, managerID uuid.UUID) (*models.ShopManager, error)
	ListManagers(ctx context.Context, shopID uuid.UUID) ([]models.ShopManager, error)
	UpdatePermissions(ctx context.Context, managerID uuid.UUID, perms enums.PermissionSet) error
	DeleteManager(ctx context.Context, managerID uuid.UUID) error
	CreateInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ManagerInvite, error)
	GetInviteByID(ctx context.Context, id uuid.UUID) (*models.ManagerInvite, error)
	ListInvitesForShop(ctx context.Context, shopID uuid.UUID) ([]models.ManagerInvite, error)
	ListInvitesForUser(ctx context.Context, userID uuid.UUID) ([]models.ManagerInvite, error)
	DeleteInvite(ctx context.Context, id uuid.UUID) error
	AcceptInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ShopManager, error)
}

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type accessResolver interface {
	Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*access.Access, error)
}

// InviteInput captures a manager invite request.
type InviteInput struct {
	Email       string
	Permissions enums.PermissionSet
}

// Service exposes manager and invite operations.
type Service interface {
	Invite(ctx context.Context, actorID uuid.UUID, slug string, input InviteInput) (*InviteDTO, error)
	ListManagers(ctx context.Context, actorID uuid.UUID, slug string) ([]ManagerDTO, error)
	ListShopInvites(ctx context.Context, actorID uuid.UUID, slug string) ([]InviteDTO, error)
	UpdatePermissions(ctx context.Context, actorID uuid.UUID, slug string, managerID uuid.UUID, perms enums.PermissionSet) (*ManagerDTO, error)
	RemoveManager(ctx context.Context, actorID uuid.UUID, slug string, managerID uuid.UUID) error
	ListMyInvites(ctx context.Context, userID uuid.UUID) ([]InviteDTO, error)
	AcceptInvite(ctx context.Context, userID, inviteID uuid.UUID) (*ManagerDTO, error)
	DeclineInvite(ctx context.Context, userID, inviteID uuid.UUID) error
}

type service struct {
	repo     managerStore
	users    userFinder
	resolver accessResolver
}

// NewService builds a manager service with the provided dependencies.
func NewService(repo managerStore, usersRepo userFinder, resolver accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("manager repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, users: usersRepo, resolver: resolver}, nil
}

func (s *service) Invite(ctx context.Context, actorID uuid.UUID, slug string, input InviteInput) (*InviteDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateManagers)
	if err != nil {
		return nil, err
	}

	target, err := s.users.FindByEmail(ctx, users.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no account with that email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	if target.ID == acc.Shop.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns this shop")
	}
	if _, err := s.repo.GetManager(ctx, target.ID, acc.Shop.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already manages this shop")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check manager record")
	}

	invite := &models.ManagerInvite{
		UserID:      target.ID,
		ShopID:      acc.Shop.ID,
		SentByID:    actorID,
		Permissions: normalizePermissions(input.Permissions),
	}
	created, err := s.repo.CreateInvite(ctx, invite)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "invite already pending")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invite")
	}
	created.User = target

	dto := inviteToDTO(created)
	return &dto, nil
}

func (s *service) ListManagers(ctx context.Context, actorID uuid.UUID, slug string) ([]ManagerDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewManagers)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListManagers(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list managers")
	}
	out := make([]ManagerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, managerToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) ListShopInvites(ctx context.Context, actorID uuid.UUID, slug string) ([]InviteDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewManagers)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListInvitesForShop(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invites")
	}
	out := make([]InviteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, inviteToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdatePermissions(ctx context.Context, actorID uuid.UUID, slug string, managerID uuid.UUID, perms enums.PermissionSet) (*ManagerDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditManagers)
	if err != nil {
		return nil, err
	}

	manager, err := s.repo.GetManagerByID(ctx, acc.Shop.ID, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manager")
	}

	normalized := normalizePermissions(perms)
	if err := s.repo.UpdatePermissions(ctx, manager.ID, normalized); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update permissions")
	}
	manager.Permissions = normalized

	dto := managerToDTO(manager)
	return &dto, nil
}

func (s *service) RemoveManager(ctx context.Context, actorID uuid.UUID, slug string, managerID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteManagers)
	if err != nil {
		return err
	}

	manager, err := s.repo.GetManagerByID(ctx, acc.Shop.ID, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load manager")
	}
	if err := s.repo.DeleteManager(ctx, manager.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete manager")
	}
	return nil
}

func (s *service) ListMyInvites(ctx context.Context, userID uuid.UUID) ([]InviteDTO, error) {
	rows, err := s.repo.ListInvitesForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invites")
	}
	out := make([]InviteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, inviteToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) AcceptInvite(ctx context.Context, userID, inviteID uuid.UUID) (*ManagerDTO, error) {
	invite, err := s.loadOwnInvite(ctx, userID, inviteID)
	if err != nil {
		return nil, err
	}

	manager, err := s.repo.AcceptInvite(ctx, invite)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already a manager of this shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept invite")
	}

	dto := managerToDTO(manager)
	return &dto, nil
}

func (s *service) DeclineInvite(ctx context.Context, userID, inviteID uuid.UUID) error {
	invite, err := s.loadOwnInvite(ctx, userID, inviteID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteInvite(ctx, invite.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline invite")
	}
	return nil
}

// loadOwnInvite hides invites addressed to other users behind not-found.
func (s *service) loadOwnInvite(ctx context.Context, userID, inviteID uuid.UUID) (*models.ManagerInvite, error) {
	invite, err := s.repo.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invite")
	}
	if invite.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite not found")
	}
	return invite, nil
}

// normalizePermissions overlays the input on a full default set so every key
// in the vocabulary is stored explicitly.
func normalizePermissions(input enums.PermissionSet) enums.PermissionSet {
	out := enums.DefaultPermissions()
	for perm, granted := range input {
		if perm.IsValid() {
			out[perm] = granted
		}
	}
	return out
}
