package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarashraf/kasher-backend/pkg/db/models"
)

// UserDTO is the public shape of a user account.
type UserDTO struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	CanCreateShops bool      `json:"can_create_shops"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToDTO maps a user row to its public shape.
func ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		CanCreateShops: user.CanCreateShops,
		CreatedAt:      user.CreatedAt,
	}
}
