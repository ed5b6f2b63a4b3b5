package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/app/repositories"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/auth"
	"github.com/uniconnect/backend/internal/pkg/email"
	"github.com/uniconnect/backend/internal/pkg/validation"
)

// AuthService handles registration, login, token rotation and email verification
type AuthService struct {
	userRepo              *repositories.UserRepository
	tokenRepo             *repositories.TokenRepository
	verificationTokenRepo *repositories.VerificationTokenRepository
	jwtService            *auth.JWTService
	emailService          email.EmailService
	logger                zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	verificationTokenRepo *repositories.VerificationTokenRepository,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:              userRepo,
		tokenRepo:             tokenRepo,
		verificationTokenRepo: verificationTokenRepo,
		jwtService:            jwtService,
		emailService:          emailService,
		logger:                logger,
	}
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < validation.PasswordMinLength {
		return apperrors.NewBadRequestError(
			fmt.Sprintf("Password must be at least %d characters long", validation.PasswordMinLength))
	}

	hasLetter := false
	hasDigit := false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return apperrors.NewBadRequestError("Password must contain at least one letter")
	}
	if !hasDigit {
		return apperrors.NewBadRequestError("Password must contain at least one digit")
	}

	return nil
}

// Register creates an account, sends a verification mail and issues tokens
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	if !validation.ValidGraduationYear(req.GraduationYear) {
		return nil, apperrors.NewBadRequestError("Graduation year is out of range")
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Password:       hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		RoleType:       models.RoleType(req.RoleType),
		College:        req.College,
		Branch:         req.Branch,
		GraduationYear: req.GraduationYear,
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.sendVerificationMail(ctx, user)

	return s.buildAuthResponse(ctx, user)
}

// Login authenticates a user and issues a new token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Indistinguishable from a wrong password
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to record login time")
	}

	return s.buildAuthResponse(ctx, user)
}

// RefreshToken rotates a refresh token. The presented token is revoked and a
// fresh pair is issued; a revoked or expired token never yields a new pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, expiryDate, isRevoked, err := s.tokenRepo.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrTokenNotFound, apperrors.ErrTokenExpired, apperrors.ErrTokenRevoked) {
			return nil, err
		}
		return nil, fmt.Errorf("token validation error: %w", err)
	}

	if expiryDate.Before(time.Now()) {
		_ = s.tokenRepo.RevokeToken(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}
	if isRevoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoke before reissue so the old token can never be replayed
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateTokenResponse(ctx, user)
}

// Logout revokes the presented refresh token. Revoking an unknown token is
// not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}

	err := s.tokenRepo.RevokeToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token and marks the account verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.ErrInvalidEmailToken
	}

	userID, expiryDate, err := s.verificationTokenRepo.GetTokenInfo(ctx, token)
	if err != nil {
		return apperrors.ErrInvalidEmailToken
	}

	if expiryDate.Before(time.Now()) {
		_ = s.verificationTokenRepo.DeleteToken(ctx, token)
		return apperrors.ErrInvalidEmailToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperrors.ErrInvalidEmailToken
	}

	if err := s.userRepo.SetEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	// The token and any stale siblings are single use
	if err := s.verificationTokenRepo.DeleteTokensByUserID(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to clean up verification tokens")
	}

	if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName()); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("Failed to send welcome email")
	}

	return nil
}

// ResendVerification issues a fresh verification token for an unverified account
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		// Don't reveal whether the address is registered
		return nil
	}

	if user.EmailVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	if err := s.verificationTokenRepo.DeleteTokensByUserID(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to clean up verification tokens")
	}

	s.sendVerificationMail(ctx, user)
	return nil
}

// sendVerificationMail creates a verification token and mails it. Failures
// are logged, not surfaced; the account works, only the mail is missing.
func (s *AuthService) sendVerificationMail(ctx context.Context, user *models.User) {
	token, err := email.GenerateVerificationToken()
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate verification token")
		return
	}

	expiry := time.Now().Add(24 * time.Hour)
	if err := s.verificationTokenRepo.CreateToken(ctx, user.ID, token, expiry); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to store verification token")
		return
	}

	if err := s.emailService.SendVerificationEmail(user.Email, user.FullName(), token); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to send verification email")
	}
}

// buildAuthResponse bundles a fresh token pair with the user profile
func (s *AuthService) buildAuthResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	tokens, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: *tokens,
		User:  dto.ToUserResponse(user),
	}, nil
}

// generateTokenResponse creates and persists a token pair
func (s *AuthService) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	tokenExpiry := s.jwtService.GetRefreshTokenExpiry()

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, tokenExpiry); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshTokenExpiresIn: int64(refreshExpiresIn),
	}, nil
}
