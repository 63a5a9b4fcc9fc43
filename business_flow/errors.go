// Package businessflow contains the core business logic and use cases for the number pool dashboard
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Session and role errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrEmailNotAllowed   = errors.New("email is not on the admin allowlist")
	ErrInvalidCaptcha    = errors.New("captcha verification failed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session has expired")

	// Roster errors
	ErrMemberNotFound      = errors.New("team member not found")
	ErrMemberNameRequired  = errors.New("member name is required")
	ErrMemberEmailRequired = errors.New("member email is required")

	// Country errors
	ErrCountryNotFound      = errors.New("country not found")
	ErrCountryAlreadyExists = errors.New("country already exists")
	ErrCountryNameRequired  = errors.New("country name is required")
	ErrDialCodeRequired     = errors.New("dial code is required")
	ErrInvalidFlagImage     = errors.New("flag image could not be decoded")

	// Inventory and allocation errors
	ErrInventoryNotFound      = errors.New("no number inventory for country")
	ErrNumberNotInInventory   = errors.New("number is not in the inventory")
	ErrNumberAlreadyAllocated = errors.New("number is already allocated to another member")
	ErrNumberNotAllocated     = errors.New("number is not allocated to anyone")

	// Stats errors
	ErrNegativeStatsValue = errors.New("stats values cannot be negative")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailNotAllowed(err error) bool {
	return errors.Is(err, ErrEmailNotAllowed)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsMemberNameRequired(err error) bool {
	return errors.Is(err, ErrMemberNameRequired)
}

func IsMemberEmailRequired(err error) bool {
	return errors.Is(err, ErrMemberEmailRequired)
}

func IsCountryNotFound(err error) bool {
	return errors.Is(err, ErrCountryNotFound)
}

func IsCountryAlreadyExists(err error) bool {
	return errors.Is(err, ErrCountryAlreadyExists)
}

func IsCountryNameRequired(err error) bool {
	return errors.Is(err, ErrCountryNameRequired)
}

func IsDialCodeRequired(err error) bool {
	return errors.Is(err, ErrDialCodeRequired)
}

func IsInvalidFlagImage(err error) bool {
	return errors.Is(err, ErrInvalidFlagImage)
}

func IsInventoryNotFound(err error) bool {
	return errors.Is(err, ErrInventoryNotFound)
}

func IsNumberNotInInventory(err error) bool {
	return errors.Is(err, ErrNumberNotInInventory)
}

func IsNumberAlreadyAllocated(err error) bool {
	return errors.Is(err, ErrNumberAlreadyAllocated)
}

func IsNumberNotAllocated(err error) bool {
	return errors.Is(err, ErrNumberNotAllocated)
}

func IsNegativeStatsValue(err error) bool {
	return errors.Is(err, ErrNegativeStatsValue)
}
