package handler

import (
	"time"

	"github.com/msomdec/credgate/internal/domain"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type failureResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type createUserResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

// UserDTO is the JSON representation of a user. It never carries the
// password digest.
type UserDTO struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
