package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/app/repositories"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/auth"
	"github.com/uniconnect/backend/internal/pkg/filestorage"
	"github.com/uniconnect/backend/internal/pkg/helpers"
	"github.com/uniconnect/backend/internal/pkg/validation"
)

// MaxProfilePhotoSize limits uploads to 5MB
const MaxProfilePhotoSize = 5 * 1024 * 1024

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UserService handles directory browsing and profile management
type UserService struct {
	userRepo    *repositories.UserRepository
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo *repositories.UserRepository,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// ListUsers returns the member directory filtered and paginated
func (s *UserService) ListUsers(ctx context.Context, filter *dto.UserFilterRequest) (*dto.UserListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	users, total, err := s.userRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.ToUserResponse(user))
	}

	return &dto.UserListResponse{
		Users:          responses,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// GetUser returns one user profile
func (s *UserService) GetUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := dto.ToUserResponse(user)
	return &response, nil
}

// UpdateProfile updates the caller's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if !validation.ValidGraduationYear(req.GraduationYear) {
		return nil, apperrors.NewBadRequestError("Graduation year is out of range")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.College = req.College
	user.Branch = req.Branch
	user.GraduationYear = req.GraduationYear
	user.IsWorking = req.IsWorking
	user.Company = req.Company
	user.Headline = req.Headline

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	response := dto.ToUserResponse(user)
	return &response, nil
}

// ChangePassword verifies the current password and stores a new hash.
// Existing refresh tokens stay valid; revoking them is a logout concern.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpdateProfilePhoto stores a new profile photo and removes the previous one
func (s *UserService) UpdateProfilePhoto(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*dto.UpdateProfilePhotoResponse, error) {
	if fileHeader.Size > MaxProfilePhotoSize {
		return nil, apperrors.NewBadRequestError("Profile photo must be smaller than 5MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedPhotoExtensions[ext] {
		return nil, apperrors.NewBadRequestError("Profile photo must be a JPG, PNG or WebP image")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	photoURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "profile_photos")
	if err != nil {
		return nil, fmt.Errorf("failed to store profile photo: %w", err)
	}

	if err := s.userRepo.UpdateProfilePhotoURL(ctx, userID, &photoURL); err != nil {
		// Roll back the orphaned upload
		if delErr := s.fileStorage.DeleteFile(photoURL); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", photoURL).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("failed to update profile photo: %w", err)
	}

	if user.ProfilePhotoURL != nil {
		if err := s.fileStorage.DeleteFile(*user.ProfilePhotoURL); err != nil {
			s.logger.Warn().Err(err).Str("path", *user.ProfilePhotoURL).Msg("Failed to remove previous profile photo")
		}
	}

	return &dto.UpdateProfilePhotoResponse{ProfilePhotoURL: photoURL}, nil
}

// DeleteProfilePhoto removes the caller's profile photo
func (s *UserService) DeleteProfilePhoto(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.ProfilePhotoURL == nil {
		return nil
	}

	if err := s.userRepo.UpdateProfilePhotoURL(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear profile photo: %w", err)
	}

	if err := s.fileStorage.DeleteFile(*user.ProfilePhotoURL); err != nil {
		s.logger.Warn().Err(err).Str("path", *user.ProfilePhotoURL).Msg("Failed to remove profile photo file")
	}

	return nil
}

// SetUserActive enables or disables an account. Routes restrict this to admins.
func (s *UserService) SetUserActive(ctx context.Context, userID int64, isActive bool) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.userRepo.SetActive(ctx, userID, isActive); err != nil {
		return fmt.Errorf("failed to update account state: %w", err)
	}

	return nil
}
