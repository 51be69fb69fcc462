// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

// AccountService manages accounts and verifies credentials.
type AccountService struct {
	queries *store.Queries
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{queries: store.New(db)}
}

// CreateUserInput holds the fields for creating an account.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// CreateUser creates an account. The email is normalized before storage and
// the password length minimum applies here because a hash is being newly
// set.
func (s *AccountService) CreateUser(ctx context.Context, input CreateUserInput) (model.User, error) {
	fields := make(map[string]string)

	email := model.NormalizeEmail(input.Email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "Invalid email address"
	}

	if len(input.Password) < auth.MinPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength)
	}

	role := input.Role
	if role == "" {
		role = model.RoleAuthor
	}
	if role != model.RoleAdmin && role != model.RoleAuthor {
		fields["role"] = "Invalid role"
	}

	if len(fields) > 0 {
		return model.User{}, &ValidationError{Fields: fields}
	}

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Name:         input.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.User{}, &ValidationError{Fields: map[string]string{
				"email": "Email is already registered",
			}}
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// UpdatePassword changes an account's password. This is the only other
// place the minimum-length rule applies; saves that do not touch the hash
// never re-validate it.
func (s *AccountService) UpdatePassword(ctx context.Context, userID int64, password string) error {
	if len(password) < auth.MinPasswordLength {
		return &ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength),
		}}
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		UpdatedAt:    time.Now(),
		ID:           userID,
	})
}

// Authenticate verifies credentials and returns the matching account.
// Unknown email and wrong password both return ErrInvalidCredentials; the
// caller must not be able to tell which one happened.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "email", email)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		return model.User{}, ErrInvalidCredentials
	}
	if !valid {
		slog.Debug("invalid password attempt", "email", email)
		return model.User{}, ErrInvalidCredentials
	}

	// Re-hash if the stored hash uses outdated parameters.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: time.Now(),
		ID:          user.ID,
	}); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	return user, nil
}
