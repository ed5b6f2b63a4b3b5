package services

import (
	"github.com/rs/zerolog"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/repositories"
	"github.com/uniconnect/backend/internal/pkg/auth"
	"github.com/uniconnect/backend/internal/pkg/email"
	"github.com/uniconnect/backend/internal/pkg/filestorage"
)

// Services bundles every application service
type Services struct {
	AuthService       *AuthService
	UserService       *UserService
	ConnectionService *ConnectionService
	ChatService       *ChatService
	JobService        *JobService
}

// NewServices wires the services against their repositories
func NewServices(
	repos *repositories.Repositories,
	authorization *appauth.AuthorizationService,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	fileStorage filestorage.FileStorage,
	notifier RealtimeNotifier,
	logger zerolog.Logger,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository,
			repos.TokenRepository,
			repos.VerificationTokenRepository,
			jwtService,
			emailService,
			logger,
		),
		UserService: NewUserService(
			repos.UserRepository,
			fileStorage,
			logger,
		),
		ConnectionService: NewConnectionService(
			repos.ConnectionRepository,
			repos.UserRepository,
			authorization,
			notifier,
			logger,
		),
		ChatService: NewChatService(
			repos.MessageRepository,
			repos.UserRepository,
			authorization,
			notifier,
			logger,
		),
		JobService: NewJobService(
			repos.JobRepository,
			authorization,
			logger,
		),
	}
}
