package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
)

// DefaultAdminName is the display name of the seeded admin account.
const DefaultAdminName = "Administrator"

// Seed creates the initial admin account if it does not exist yet.
// When password is empty a random one is generated and logged once, so a
// fresh install never ships a well-known credential.
func Seed(ctx context.Context, db *sql.DB, email, password string) error {
	queries := New(db)

	email = model.NormalizeEmail(email)
	_, err := queries.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	generated := false
	if password == "" {
		password = uuid.NewString()
		generated = true
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", auth.MinPasswordLength)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if generated {
		slog.Info("created default admin user with generated password",
			"id", user.ID,
			"email", user.Email,
			"password", password,
		)
	} else {
		slog.Info("created default admin user", "id", user.ID, "email", user.Email)
	}

	return nil
}
