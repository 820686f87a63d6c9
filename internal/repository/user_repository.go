package repository

import (
	"context"
	"errors"
	"fmt"

	"menuely/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(logger zerolog.Logger) UserRepository {
	return &userRepository{
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// Create inserts a user and fills in its generated fields.
func (r *userRepository) Create(ctx context.Context, q Querier, user *model.User) error {
	query := `
		INSERT INTO users (email, firstname, lastname, employer_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, user.Email, user.Firstname, user.Lastname, user.EmployerID).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("email", user.Email).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by its ID.
func (r *userRepository) GetByID(ctx context.Context, q Querier, id int64) (*model.User, error) {
	query := `
		SELECT id, email, firstname, lastname, employer_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u model.User
	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Firstname, &u.Lastname, &u.EmployerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("user_id", id).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", id).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
