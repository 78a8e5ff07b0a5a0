package managers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

type stubStore struct {
	managers map[uuid.UUID]*models.ShopManager
	invites  map[uuid.UUID]*models.ManagerInvite
}

func newStubStore() *stubStore {
	return &stubStore{
		managers: make(map[uuid.UUID]*models.ShopManager),
		invites:  make(map[uuid.UUID]*models.ManagerInvite),
	}
}

func (s *stubStore) GetManager(ctx context.Context, userID, shopID uuid.UUID) (*models.ShopManager, error) {
	for _, m := range s.managers {
		if m.UserID == userID && m.ShopID == shopID {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) GetManagerByID(ctx context.Context, shopID, managerID uuid.UUID) (*models.ShopManager, error) {
	m, ok := s.managers[managerID]
	if !ok || m.ShopID != shopID {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (s *stubStore) ListManagers(ctx context.Context, shopID uuid.UUID) ([]models.ShopManager, error) {
	var out []models.ShopManager
	for _, m := range s.managers {
		if m.ShopID == shopID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *stubStore) UpdatePermissions(ctx context.Context, managerID uuid.UUID, perms enums.PermissionSet) error {
	if m, ok := s.managers[managerID]; ok {
		m.Permissions = perms
	}
	return nil
}

func (s *stubStore) DeleteManager(ctx context.Context, managerID uuid.UUID) error {
	delete(s.managers, managerID)
	return nil
}

func (s *stubStore) CreateInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ManagerInvite, error) {
	for _, existing := range s.invites {
		if existing.UserID == invite.UserID && existing.ShopID == invite.ShopID {
			return nil, &duplicateErr{}
		}
	}
	invite.ID = uuid.New()
	s.invites[invite.ID] = invite
	return invite, nil
}

func (s *stubStore) GetInviteByID(ctx context.Context, id uuid.UUID) (*models.ManagerInvite, error) {
	invite, ok := s.invites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return invite, nil
}

func (s *stubStore) ListInvitesForShop(ctx context.Context, shopID uuid.UUID) ([]models.ManagerInvite, error) {
	var out []models.ManagerInvite
	for _, invite := range s.invites {
		if invite.ShopID == shopID {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (s *stubStore) ListInvitesForUser(ctx context.Context, userID uuid.UUID) ([]models.ManagerInvite, error) {
	var out []models.ManagerInvite
	for _, invite := range s.invites {
		if invite.UserID == userID {
			out = append(out, *invite)
		}
	}
	return out, nil
}

func (s *stubStore) DeleteInvite(ctx context.Context, id uuid.UUID) error {
	delete(s.invites, id)
	return nil
}

func (s *stubStore) AcceptInvite(ctx context.Context, invite *models.ManagerInvite) (*models.ShopManager, error) {
	if _, ok := s.invites[invite.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	manager := &models.ShopManager{
		ID:          uuid.New(),
		UserID:      invite.UserID,
		ShopID:      invite.ShopID,
		Permissions: invite.Permissions,
	}
	s.managers[manager.ID] = manager
	delete(s.invites, invite.ID)
	return manager, nil
}

type duplicateErr struct{}

func (*duplicateErr) Error() string { return "duplicate key value violates unique constraint" }

type stubShopLoader struct {
	shop *models.Shop
}

func (s *stubShopLoader) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	if s.shop == nil || s.shop.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	return s.shop, nil
}

type stubUserFinder struct {
	byEmail map[string]*models.User
}

func (s *stubUserFinder) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fixture struct {
	svc    Service
	store  *stubStore
	users  *stubUserFinder
	shop   *models.Shop
	owner  uuid.UUID
	target *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	shop := &models.Shop{ID: uuid.New(), OwnerID: owner, Slug: "corner-store"}
	store := newStubStore()
	target := &models.User{ID: uuid.New(), Email: "mona@example.com", FullName: "Mona"}
	usersStub := &stubUserFinder{byEmail: map[string]*models.User{target.Email: target}}

	resolver, err := access.NewResolver(&stubShopLoader{shop: shop}, store)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	svc, err := NewService(store, usersStub, resolver)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, store: store, users: usersStub, shop: shop, owner: owner, target: target}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestInviteLifecycleAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{
		Email:       "mona@example.com",
		Permissions: enums.PermissionSet{enums.PermViewProducts: true},
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if !invite.Permissions[enums.PermViewProducts] {
		t.Fatal("granted permission missing from snapshot")
	}
	if invite.Permissions[enums.PermDeleteManagers] {
		t.Fatal("unrequested permission should default to false")
	}

	manager, err := f.svc.AcceptInvite(ctx, f.target.ID, invite.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if manager.UserID != f.target.ID {
		t.Fatal("manager bound to wrong user")
	}
	if !manager.Permissions[enums.PermViewProducts] {
		t.Fatal("permission snapshot not carried to manager")
	}

	// The invite is consumed; a second accept is a miss.
	_, err = f.svc.AcceptInvite(ctx, f.target.ID, invite.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestInviteLifecycleDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	if err := f.svc.DeclineInvite(ctx, f.target.ID, invite.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	if len(f.store.managers) != 0 {
		t.Fatal("decline must not create a manager")
	}

	err = f.svc.DeclineInvite(ctx, f.target.ID, invite.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestInviteRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestInviteRejectsOwnerAndUnknownEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.byEmail["owner@example.com"] = &models.User{ID: f.owner, Email: "owner@example.com"}

	_, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "owner@example.com"})
	assertCode(t, err, pkgerrors.CodeConflict)

	_, err = f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "ghost@example.com"})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAcceptInviteForOtherUserIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	_, err = f.svc.AcceptInvite(ctx, uuid.New(), invite.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdatePermissionsDropsUnknownKeysAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	manager, err := f.svc.AcceptInvite(ctx, f.target.ID, invite.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	updated, err := f.svc.UpdatePermissions(ctx, f.owner, "corner-store", manager.ID, enums.PermissionSet{
		enums.PermViewSales: true,
	})
	if err != nil {
		t.Fatalf("update permissions: %v", err)
	}
	if !updated.Permissions[enums.PermViewSales] {
		t.Fatal("granted permission missing")
	}
	if len(updated.Permissions) != len(enums.AllPermissions()) {
		t.Fatalf("expected full vocabulary, got %d keys", len(updated.Permissions))
	}
}

func TestRemoveManagerRequiresPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invite, err := f.svc.Invite(ctx, f.owner, "corner-store", InviteInput{Email: "mona@example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	manager, err := f.svc.AcceptInvite(ctx, f.target.ID, invite.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The manager herself lacks can_delete_managers.
	err = f.svc.RemoveManager(ctx, f.target.ID, "corner-store", manager.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	if err := f.svc.RemoveManager(ctx, f.owner, "corner-store", manager.ID); err != nil {
		t.Fatalf("owner remove: %v", err)
	}
	if len(f.store.managers) != 0 {
		t.Fatal("manager row not removed")
	}
}
