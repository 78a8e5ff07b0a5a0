// Package terminals manages a shop's registered POS devices and the catalog
// snapshot they pull when syncing. Sync output keeps soft-deleted variants as
// tombstones so offline terminals can reconcile local state.
package terminals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type terminalStore interface {
	Create(ctx context.Context, terminal *models.Terminal) (*models.Terminal, error)
	Get(ctx context.Context, shopID, terminalID uuid.UUID) (*models.Terminal, error)
	List(ctx context.Context, shopID uuid.UUID) ([]models.Terminal, error)
	Delete(ctx context.Context, shopID, terminalID uuid.UUID) error
	TouchLastSeen(ctx context.Context, terminalID uuid.UUID, at time.Time) error
}

type catalogSyncStore interface {
	ListVariantsForSync(ctx context.Context, shopID uuid.UUID, since *time.Time) ([]models.ProductVariant, error)
}

type accessResolver interface {
	Require(ctx context.Context, userID uuid.UUID, slug string, perms ...enums.Permission) (*access.Access, error)
}

// Service exposes terminal registration and sync.
type Service interface {
	CreateTerminal(ctx context.Context, actorID uuid.UUID, slug string, name string) (*TerminalDTO, error)
	ListTerminals(ctx context.Context, actorID uuid.UUID, slug string) ([]TerminalDTO, error)
	DeleteTerminal(ctx context.Context, actorID uuid.UUID, slug string, terminalID uuid.UUID) error
	Sync(ctx context.Context, actorID uuid.UUID, slug string, terminalID uuid.UUID, since *time.Time) (*SyncDTO, error)
}

type service struct {
	repo     terminalStore
	catalog  catalogSyncStore
	resolver accessResolver
	now      func() time.Time
}

// NewService builds a terminals service with the provided dependencies.
func NewService(repo terminalStore, catalog catalogSyncStore, resolver accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("terminal repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog sync store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, catalog: catalog, resolver: resolver, now: time.Now}, nil
}

func (s *service) CreateTerminal(ctx context.Context, actorID uuid.UUID, slug string, name string) (*TerminalDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateTerminals)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, pkgerrors.NewValidation(map[string]string{"name": "name is required"})
	}

	created, err := s.repo.Create(ctx, &models.Terminal{ShopID: acc.Shop.ID, Name: name})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "terminal name already used in this shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create terminal")
	}
	dto := terminalToDTO(created)
	return &dto, nil
}

func (s *service) ListTerminals(ctx context.Context, actorID uuid.UUID, slug string) ([]TerminalDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewTerminals)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list terminals")
	}
	out := make([]TerminalDTO, 0, len(rows))
	for i := range rows {
		out = append(out, terminalToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) DeleteTerminal(ctx context.Context, actorID uuid.UUID, slug string, terminalID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteTerminals)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, acc.Shop.ID, terminalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete terminal")
	}
	return nil
}

func (s *service) Sync(ctx context.Context, actorID uuid.UUID, slug string, terminalID uuid.UUID, since *time.Time) (*SyncDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewTerminals)
	if err != nil {
		return nil, err
	}

	terminal, err := s.repo.Get(ctx, acc.Shop.ID, terminalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "terminal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load terminal")
	}

	variants, err := s.catalog.ListVariantsForSync(ctx, acc.Shop.ID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog snapshot")
	}

	syncedAt := s.now()
	if err := s.repo.TouchLastSeen(ctx, terminal.ID, syncedAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sync time")
	}
	terminal.LastSeenAt = &syncedAt

	out := &SyncDTO{
		Terminal: terminalToDTO(terminal),
		SyncedAt: syncedAt,
		Variants: make([]SyncVariantDTO, 0, len(variants)),
	}
	for i := range variants {
		out.Variants = append(out.Variants, syncVariantToDTO(&variants[i]))
	}
	return out, nil
}
