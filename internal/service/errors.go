// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic: account management, credential
// verification, post lifecycle, and audit event logging. Every operation
// that needs authorization takes the request principal as an explicit
// argument.
package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned for lookup misses and for ownership mismatches
// alike. Callers cannot distinguish "does not exist" from "belongs to
// someone else"; that is deliberate, to avoid confirming the existence of
// other accounts' content.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is the single failure surfaced by Authenticate,
// whether the account is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError carries field-level validation failures. It is always
// recoverable by resubmission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
