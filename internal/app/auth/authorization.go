package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
	"github.com/uniconnect/backend/internal/pkg/logger"
)

// Common errors specific to authorization. Built on the forbidden family so
// the error middleware maps them to 403.
var (
	ErrNotAlumni        = apperrors.NewForbiddenError("Only alumni can perform this action")
	ErrNotStudent       = apperrors.NewForbiddenError("Only students can apply to job postings")
	ErrPermissionDenied = apperrors.NewForbiddenError("You don't have permission for this action")
)

// ConnectionReader is the slice of the connection repository the gate needs.
type ConnectionReader interface {
	GetBetween(ctx context.Context, userA, userB int64) (*models.Connection, error)
}

// UserReader resolves users for role checks.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// JobReader resolves job postings for ownership checks.
type JobReader interface {
	GetByID(ctx context.Context, id int64) (*models.Job, error)
}

// AuthorizationService handles authorization operations. Every caller that
// needs the accepted-connection predicate goes through CanMessage or
// ValidateCanMessage; messaging entry points must not query connection state
// on their own.
type AuthorizationService struct {
	userReader       UserReader
	connectionReader ConnectionReader
	jobReader        JobReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(users UserReader, connections ConnectionReader, jobs JobReader) *AuthorizationService {
	return &AuthorizationService{
		userReader:       users,
		connectionReader: connections,
		jobReader:        jobs,
	}
}

// CanMessage reports whether an accepted, unblocked connection exists between
// the two users. It is direction-agnostic.
func (s *AuthorizationService) CanMessage(ctx context.Context, userID, peerID int64) (bool, error) {
	if userID == peerID {
		return false, nil
	}

	conn, err := s.connectionReader.GetBetween(ctx, userID, peerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrConnectionNotFound) {
			return false, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("peerID", peerID).Msg("Error resolving connection for messaging gate")
		return false, fmt.Errorf("failed to check connection: %w", err)
	}

	return conn.Status == models.ConnectionAccepted, nil
}

// ValidateCanMessage returns a forbidden error unless the two users hold an
// accepted connection. REST send, realtime send, conversation fetch and
// mark-read all call this before touching the message store.
func (s *AuthorizationService) ValidateCanMessage(ctx context.Context, userID, peerID int64) error {
	ok, err := s.CanMessage(ctx, userID, peerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("You can only send messages to your connections")
	}
	return nil
}

// IsAlumni checks if the user holds the alumni role
func (s *AuthorizationService) IsAlumni(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsAlumni")
		return false, err
	}
	return user.RoleType == models.RoleAlumni, nil
}

// ValidateAlumni validates that the user is an alumni or returns an error
func (s *AuthorizationService) ValidateAlumni(ctx context.Context, userID int64) error {
	isAlumni, err := s.IsAlumni(ctx, userID)
	if err != nil {
		return err
	}
	if !isAlumni {
		return ErrNotAlumni
	}
	return nil
}

// IsStudent checks if the user holds the student role
func (s *AuthorizationService) IsStudent(ctx context.Context, userID int64) (bool, error) {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in IsStudent")
		return false, err
	}
	return user.RoleType == models.RoleStudent, nil
}

// ValidateStudent validates that the user is a student or returns an error
func (s *AuthorizationService) ValidateStudent(ctx context.Context, userID int64) error {
	isStudent, err := s.IsStudent(ctx, userID)
	if err != nil {
		return err
	}
	if !isStudent {
		return ErrNotStudent
	}
	return nil
}

// CanModifyJob checks if the user owns the job posting
func (s *AuthorizationService) CanModifyJob(ctx context.Context, jobID, userID int64) (bool, error) {
	job, err := s.jobReader.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrJobNotFound) {
			return false, err
		}
		logger.Error().Err(err).Int64("jobID", jobID).Msg("Error getting job by ID in CanModifyJob")
		return false, fmt.Errorf("failed to check job ownership: %w", err)
	}
	return job.PostedByID == userID, nil
}

// ValidateJobOwnership validates that the user owns the job or returns an error
func (s *AuthorizationService) ValidateJobOwnership(ctx context.Context, jobID, userID int64) error {
	canModify, err := s.CanModifyJob(ctx, jobID, userID)
	if err != nil {
		return err
	}
	if !canModify {
		return ErrPermissionDenied
	}
	return nil
}

// ValidateEmailVerified rejects users who have not verified their address.
// Gates connection initiation and job creation, not browsing.
func (s *AuthorizationService) ValidateEmailVerified(ctx context.Context, userID int64) error {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in ValidateEmailVerified")
		return err
	}
	if !user.EmailVerified {
		return apperrors.ErrEmailNotVerified
	}
	return nil
}

// GetUserInfo returns user information
func (s *AuthorizationService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userReader.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error getting user by ID in GetUserInfo")
		return nil, fmt.Errorf("failed to get user information: %w", err)
	}
	return user, nil
}
