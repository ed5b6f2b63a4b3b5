package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id" example:"1"`                                                         // Unique identifier for the user
	Email           string     `json:"email" db:"email" example:"jane@university.edu"`                                 // User's email address
	Password        string     `json:"-" db:"password"`                                                                // User's hashed password (excluded from JSON)
	FirstName       string     `json:"firstName" db:"first_name" example:"Jane"`                                       // User's first name
	LastName        string     `json:"lastName" db:"last_name" example:"Doe"`                                          // User's last name
	RoleType        RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`                                      // User's role (STUDENT, ALUMNI or ADMIN)
	College         string     `json:"college" db:"college" example:"Engineering College"`                             // College the user attends or attended
	Branch          string     `json:"branch" db:"branch" example:"Computer Science"`                                  // Branch or major
	GraduationYear  int        `json:"graduationYear" db:"graduation_year" example:"2024"`                             // Year of (expected) graduation
	IsWorking       bool       `json:"isWorking" db:"is_working" example:"true"`                                       // Whether the user currently works
	Company         *string    `json:"company,omitempty" db:"company" example:"Acme Corp"`                             // Current company (nullable)
	Headline        *string    `json:"headline,omitempty" db:"headline" example:"Backend Engineer"`                    // Short profile headline (nullable)
	ProfilePhotoURL *string    `json:"profilePhotoUrl,omitempty" db:"profile_photo_url" example:"uploads/profile.jpg"` // URL of the user's profile photo (nullable)
	IsActive        bool       `json:"isActive" db:"is_active" example:"true"`                                         // Whether the user account is active
	EmailVerified   bool       `json:"emailVerified" db:"email_verified" example:"true"`                               // Whether the email address has been verified
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2026-04-20T18:00:00Z"`        // Timestamp of the last login (nullable)
	CreatedAt       time.Time  `json:"createdAt" db:"created_at" example:"2026-01-01T10:00:00Z"`                       // Timestamp when the user was created
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at" example:"2026-01-02T15:30:00Z"`                       // Timestamp when the user was last updated
}

// FullName returns the display name used in notifications and exports.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
