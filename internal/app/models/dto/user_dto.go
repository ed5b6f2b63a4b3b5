package dto

import (
	"time"

	"github.com/uniconnect/backend/internal/app/models"
)

// UserResponse represents a user profile as returned by the API
type UserResponse struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	RoleType        string     `json:"roleType"`
	College         string     `json:"college"`
	Branch          string     `json:"branch"`
	GraduationYear  int        `json:"graduationYear"`
	IsWorking       bool       `json:"isWorking"`
	Company         *string    `json:"company,omitempty"`
	Headline        *string    `json:"headline,omitempty"`
	ProfilePhotoURL *string    `json:"profilePhotoUrl,omitempty"`
	IsActive        bool       `json:"isActive"`
	EmailVerified   bool       `json:"emailVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// UserBasicResponse carries the fields embedded in other resources
type UserBasicResponse struct {
	ID              int64   `json:"id"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email"`
	RoleType        string  `json:"roleType"`
	Headline        *string `json:"headline,omitempty"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
}

// ToUserResponse maps a user model to its API representation
func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		RoleType:        string(user.RoleType),
		College:         user.College,
		Branch:          user.Branch,
		GraduationYear:  user.GraduationYear,
		IsWorking:       user.IsWorking,
		Company:         user.Company,
		Headline:        user.Headline,
		ProfilePhotoURL: user.ProfilePhotoURL,
		IsActive:        user.IsActive,
		EmailVerified:   user.EmailVerified,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
	}
}

// ToUserBasicResponse maps a user model to the embedded representation
func ToUserBasicResponse(user *models.User) *UserBasicResponse {
	if user == nil {
		return nil
	}
	return &UserBasicResponse{
		ID:              user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		RoleType:        string(user.RoleType),
		Headline:        user.Headline,
		ProfilePhotoURL: user.ProfilePhotoURL,
	}
}

// UserFilterRequest represents directory filtering parameters
type UserFilterRequest struct {
	College        *string `form:"college"`
	Branch         *string `form:"branch"`
	GraduationYear *int    `form:"graduationYear"`
	Role           *string `form:"role"`
	Name           *string `form:"name"` // Matches against first or last name
	Page           int     `form:"page,default=1" binding:"min=1"`
	PageSize       int     `form:"pageSize,default=10" binding:"min=1,max=100"`
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName      string  `json:"firstName" binding:"required,min=2,max=100"`
	LastName       string  `json:"lastName" binding:"required,min=2,max=100"`
	College        string  `json:"college" binding:"required"`
	Branch         string  `json:"branch" binding:"required"`
	GraduationYear int     `json:"graduationYear" binding:"required,min=1950"`
	IsWorking      bool    `json:"isWorking"`
	Company        *string `json:"company"`
	Headline       *string `json:"headline"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// UpdateProfilePhotoResponse represents a successful profile photo update
type UpdateProfilePhotoResponse struct {
	ProfilePhotoURL string `json:"profilePhotoUrl"`
}

// SetUserActiveRequest toggles an account on or off (admin only)
type SetUserActiveRequest struct {
	IsActive bool `json:"isActive"`
}
