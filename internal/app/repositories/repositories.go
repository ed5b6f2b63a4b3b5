package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	TokenRepository             *TokenRepository
	VerificationTokenRepository *VerificationTokenRepository
	ConnectionRepository        *ConnectionRepository
	MessageRepository           *MessageRepository
	JobRepository               *JobRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		TokenRepository:             NewTokenRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
		ConnectionRepository:        NewConnectionRepository(db),
		MessageRepository:           NewMessageRepository(db),
		JobRepository:               NewJobRepository(db),
	}
}
