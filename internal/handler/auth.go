// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	accounts        *service.AccountService
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		accounts:        service.NewAccountService(db),
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// loginRequest is the login form shape.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse reports the authenticated account.
type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// clientIP extracts the remote IP without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Login handles POST /login. Whatever the reason a login fails — unknown
// account, wrong password, lockout pending — the response body is the same
// generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if h.loginProtection != nil && !h.loginProtection.AllowIP(ip) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts, slow down", nil)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.IsAccountLocked(req.Email); locked {
			h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login attempt on locked account", nil, ip, map[string]any{"email": req.Email})
			WriteUnauthorized(w, "Invalid email or password")
			return
		}
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login failed", nil, ip, map[string]any{"email": req.Email})
			if h.loginProtection != nil {
				if locked, duration := h.loginProtection.RecordFailedAttempt(req.Email); locked {
					h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
						"Account locked due to failed attempts", nil, ip,
						map[string]any{"email": req.Email, "duration": duration.String()})
				}
			}
			WriteUnauthorized(w, "Invalid email or password")
			return
		}
		WriteInternalError(w, "login error", "error", err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Email)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		WriteInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo,
		"User logged in", &user.ID, ip, map[string]any{"email": user.Email})

	WriteSuccess(w, loginResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if userID > 0 {
		h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo,
			"User logged out", &userID, clientIP(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	WriteSuccess(w, map[string]string{"status": "logged_out"})
}
