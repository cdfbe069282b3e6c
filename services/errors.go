package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/leonelm2/PotreroMobile/brackets"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
)

// Every error returned by a service wraps exactly one of these kinds.
var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("operation requires administrator privileges")
)

const (
	KindValidation   = "validation_error"
	KindInvalidState = "invalid_state"
	KindConflict     = "conflict"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindInternal     = "internal"
)

// KindOf returns the machine readable kind reported to API clients.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidStateError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// engineError classifies an error returned by the brackets package.
func engineError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if brackets.IsInputError(err) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if errors.Is(err, brackets.ErrMatchNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidState, err)
}

// repositoryError translates storage sentinels into the service taxonomy.
// Unknown errors are wrapped with op and end up as internal errors.
func repositoryError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isClassified(err):
		return err
	case errors.Is(err, repositories.ErrDisciplineNotFound),
		errors.Is(err, repositories.ErrTeamNotFound),
		errors.Is(err, repositories.ErrPlayerNotFound),
		errors.Is(err, repositories.ErrChampionshipNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrDisciplineNameConflict),
		errors.Is(err, repositories.ErrDisciplineInUse),
		errors.Is(err, repositories.ErrTeamInUse),
		errors.Is(err, repositories.ErrPlayerNumberConflict),
		errors.Is(err, repositories.ErrUserEmailConflict),
		errors.Is(err, repositories.ErrUserUsernameConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repositories.ErrTeamDisciplineInvalid),
		errors.Is(err, repositories.ErrPlayerTeamInvalid),
		errors.Is(err, repositories.ErrChampionshipTeamInvalid):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isClassified(err error) bool {
	return KindOf(err) != KindInternal
}

// requireAdmin is the authorization boundary for mutating operations.
func requireAdmin(actor models.Actor) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func requireAuthenticated(actor models.Actor) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthorized
	}
	return nil
}
