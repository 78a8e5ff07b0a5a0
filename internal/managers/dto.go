package managers

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
)

// ManagerDTO is the public shape of a shop manager.
type ManagerDTO struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	Email       string              `json:"email,omitempty"`
	FullName    string              `json:"full_name,omitempty"`
	Permissions enums.PermissionSet `json:"permissions"`
	JoinedAt    time.Time           `json:"joined_at"`
}

// InviteDTO is the public shape of a pending manager invite.
type InviteDTO struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	Email       string              `json:"email,omitempty"`
	FullName    string              `json:"full_name,omitempty"`
	ShopSlug    string              `json:"shop_slug,omitempty"`
	ShopName    string              `json:"shop_name,omitempty"`
	SentByName  string              `json:"sent_by_name,omitempty"`
	Permissions enums.PermissionSet `json:"permissions"`
	CreatedAt   time.Time           `json:"created_at"`
}

func managerToDTO(manager *models.ShopManager) ManagerDTO {
	dto := ManagerDTO{
		ID:          manager.ID,
		UserID:      manager.UserID,
		Permissions: manager.Permissions,
		JoinedAt:    manager.JoinedAt,
	}
	if manager.User != nil {
		dto.Email = manager.User.Email
		dto.FullName = manager.User.FullName
	}
	return dto
}

func inviteToDTO(invite *models.ManagerInvite) InviteDTO {
	dto := InviteDTO{
		ID:          invite.ID,
		UserID:      invite.UserID,
		Permissions: invite.Permissions,
		CreatedAt:   invite.CreatedAt,
	}
	if invite.User != nil {
		dto.Email = invite.User.Email
		dto.FullName = invite.User.FullName
	}
	if invite.Shop != nil {
		dto.ShopSlug = invite.Shop.Slug
		dto.ShopName = invite.Shop.Name
	}
	if invite.SentBy != nil {
		dto.SentByName = invite.SentBy.FullName
	}
	return dto
}
