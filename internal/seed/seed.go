package seed

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/repositories"
	"github.com/uniconnect/backend/internal/pkg/auth"
)

const (
	defaultAdminEmail = "admin@uniconnect.app"
	// Meant for first login only; rotate it immediately in any real deployment.
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData seeds the default admin account if it does not exist yet.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	exists, err := userRepo.EmailExists(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")

	hashedPassword, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	now := time.Now()
	admin := &models.User{
		Email:          defaultAdminEmail,
		Password:       hashedPassword,
		FirstName:      "System",
		LastName:       "Administrator",
		RoleType:       models.RoleAdmin,
		College:        "UniConnect",
		Branch:         "Administration",
		GraduationYear: now.Year(),
		IsActive:       true,
		EmailVerified:  true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}
