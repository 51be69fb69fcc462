// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

// Principal is the resolved identity of the current request. It is produced
// by the session middleware after credential verification and threaded as an
// explicit argument into every operation that makes an authorization
// decision; there is no ambient "current user" state.
//
// A session is either Anonymous or Authenticated(UserID); there are no
// intermediate states. A failed login leaves the session Anonymous.
type Principal struct {
	UserID int64
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// IsAuthenticated reports whether the principal is bound to an account.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}
