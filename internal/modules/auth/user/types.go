package user

import (
	"errors"
	"time"

	"github.com/bondfire/core/internal/models"
)

type RegisterDTO struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required,min=3"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

type LoginDTO struct {
	Identifier string `json:"identifier" binding:"required"` // email or username
	Password   string `json:"password" binding:"required"`
}

type UpdateUserDTO struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type userResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Role        models.UserRole `json:"role"`
	IsPremium   bool            `json:"is_premium"`
	LastLoginAt *time.Time      `json:"last_login_at"`
	Created     time.Time       `json:"created"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user,omitempty"`
}

func toResponse(u *models.UserModel) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsPremium:   u.IsPremium,
		LastLoginAt: u.LastLoginAt,
		Created:     u.CreatedAt,
	}
}

var (
	errUserNotFound      = errors.New("user not found")
	errWrongPassword     = errors.New("wrong password")
	errEmailTaken        = errors.New("email already registered")
	errUsernameTaken     = errors.New("username already taken")
	errPasswordSameAsOld = errors.New("password same as old")
)
