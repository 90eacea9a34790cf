package mindflux

import (
	"errors"
	"fmt"
)

// Sentinel errors for the mindflux package.
// Use errors.Is to check: errors.Is(err, mindflux.ErrNodeNotFound)
var (
	ErrNodeNotFound       = errors.New("mindflux: node not found")
	ErrStoreUnavailable   = errors.New("mindflux: store unavailable")
	ErrInvariantViolation = errors.New("mindflux: invariant violation")
	ErrInvalidNode        = errors.New("mindflux: invalid node")
	ErrDuplicateNode      = errors.New("mindflux: duplicate node")
	ErrDuplicateItem      = errors.New("mindflux: duplicate item")
	ErrInvalidTier        = errors.New("mindflux: invalid tier")
	ErrInvalidState       = errors.New("mindflux: invalid item state")
)

// ErrNoDueAnswer is returned when an answer is requested for a node that has no
// due item at or above the requested ordinal. It indicates a logic error upstream.
var ErrNoDueAnswer = fmt.Errorf("%w: no due answer", ErrInvariantViolation)

// unavailable wraps a collaborator failure as ErrStoreUnavailable unless it
// already carries a mindflux sentinel.
func unavailable(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrInvariantViolation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
