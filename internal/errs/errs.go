// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable machine code and the HTTP status the
// transport layer should report it with.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Common sentinels across store/handler layers.
var (
	// ErrProfileNotFound indicates a referenced player profile does not exist.
	ErrProfileNotFound = &Error{Code: "PROFILE_NOT_FOUND", Message: "player profile not found", Status: http.StatusBadRequest}

	// ErrNoEquippedWeapon indicates the attacker has no weapon equipped.
	ErrNoEquippedWeapon = &Error{Code: "NO_EQUIPPED_WEAPON", Message: "attacker has no equipped weapon", Status: http.StatusBadRequest}

	// ErrTargetOutOfRange indicates the target is beyond melee hit range.
	ErrTargetOutOfRange = &Error{Code: "TARGET_OUT_OF_RANGE", Message: "target is out of hit range", Status: http.StatusBadRequest}

	// ErrWeaponNotFound indicates the equipped weapon is unknown to the catalog.
	ErrWeaponNotFound = &Error{Code: "WEAPON_NOT_FOUND", Message: "weapon not found in catalog", Status: http.StatusBadRequest}

	// ErrWeaponNotOwned indicates an equip attempt outside the owned set.
	ErrWeaponNotOwned = &Error{Code: "WEAPON_NOT_OWNED", Message: "weapon is not in the player's owned set", Status: http.StatusBadRequest}

	// ErrQuestNotFound indicates an unknown quest id.
	ErrQuestNotFound = &Error{Code: "QUEST_NOT_FOUND", Message: "quest not found in catalog", Status: http.StatusBadRequest}

	// ErrSkillNotFound indicates an unknown skill id at profile creation.
	ErrSkillNotFound = &Error{Code: "SKILL_NOT_FOUND", Message: "skill not found in catalog", Status: http.StatusBadRequest}

	// ErrDuplicateUser indicates a username or email collision.
	ErrDuplicateUser = &Error{Code: "DUPLICATE_USER", Message: "a user with this username or email already exists", Status: http.StatusConflict}

	// ErrUserNotFound indicates the user account does not exist.
	ErrUserNotFound = &Error{Code: "USER_NOT_FOUND", Message: "user account not found", Status: http.StatusNotFound}

	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "credential or password is incorrect", Status: http.StatusUnauthorized}

	// ErrBanned indicates the account is currently banned.
	ErrBanned = &Error{Code: "BANNED", Message: "this account is banned", Status: http.StatusForbidden}

	// ErrUnauthorized indicates a missing or unresolvable session.
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "valid non-banned session required", Status: http.StatusUnauthorized}

	// ErrForbidden indicates the caller does not own the referenced profile.
	ErrForbidden = &Error{Code: "FORBIDDEN", Message: "profile not owned by this user", Status: http.StatusForbidden}

	// ErrSessionNotFound indicates an expired, revoked, or unknown session token.
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found", Status: http.StatusUnauthorized}
)

// Validation builds a request validation error with a caller-supplied message.
func Validation(message string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Message: message, Status: http.StatusBadRequest}
}

// WeakPassword is returned when a registration password is too short.
func WeakPassword() *Error {
	return &Error{Code: "WEAK_PASSWORD", Message: "password must have at least 8 characters", Status: http.StatusBadRequest}
}

// As unwraps err into *Error if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
