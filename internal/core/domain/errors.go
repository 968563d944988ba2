package domain

import (
	"errors"
	"fmt"
)

// --- TAXONOMIE D'ERREURS ---
// Chaque erreur concrète wrappe une "kind" sentinelle via %w.
// Les couches externes (HTTP) font errors.Is(err, domain.ErrXxx) pour mapper
// vers un status code, sans jamais voir les erreurs techniques (pgx, redis...).

var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInternal        = errors.New("internal error")
)

// --- ERREURS CONCRÈTES (Identity) ---

var (
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already exists", ErrConflict)
	ErrUsernameTaken      = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid login or password", ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrMissingFields      = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidUsername    = fmt.Errorf("%w: username must be at least 3 characters", ErrValidation)
)

// --- ERREURS CONCRÈTES (Content) ---

var (
	ErrPostNotFound    = fmt.Errorf("%w: post not found", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("%w: comment not found", ErrNotFound)
	ErrAlreadyLiked    = fmt.Errorf("%w: post already liked", ErrConflict)
	ErrNotLiked        = fmt.Errorf("%w: post not liked yet", ErrConflict)
	ErrNotOwner        = fmt.Errorf("%w: only the owner may do this", ErrForbidden)
	ErrCommentTooDeep  = fmt.Errorf("%w: comment thread too deep", ErrValidation)
)
