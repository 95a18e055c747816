package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBlackoutNotFound = errors.New("blackout not found")
	ErrInvalidID        = errors.New("invalid id")

	// State errors: the record exists but refuses the operation.
	ErrMembershipNotActive  = errors.New("membership is not in active standing")
	ErrResourceUnavailable  = errors.New("resource is out of service")
	ErrBookingCancelled     = errors.New("booking is cancelled")
	ErrInsufficientUnits    = errors.New("not enough units available")
	ErrNoResourcesRequested = errors.New("no resources requested")

	// ErrExtentTaken surfaces the claim-atom uniqueness backstop: a
	// concurrent writer committed an intersecting claim after our
	// conflict check passed.
	ErrExtentTaken = errors.New("extent already claimed")
)

// ValidationError reports malformed input detected before any claim is
// consulted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// ConflictError reports an overlap between a requested extent and an
// existing claim. The message names the claim kind, the offending
// range/slot and, for administrative reservations, who placed it.
type ConflictError struct {
	ResourceID   string
	ResourceName string
	Kind         ClaimKind
	Extent       Extent
	Detail       string
}

func (e ConflictError) Error() string {
	var b strings.Builder
	name := e.ResourceName
	if name == "" {
		name = e.ResourceID
	}
	switch e.Kind {
	case ClaimBlackout:
		fmt.Fprintf(&b, "%s is out of service %s", name, e.Extent)
	case ClaimBooking:
		fmt.Fprintf(&b, "%s is already booked %s", name, e.Extent)
	case ClaimReservation:
		fmt.Fprintf(&b, "%s is reserved %s", name, e.Extent)
	case ClaimHold:
		fmt.Fprintf(&b, "%s is on hold %s", name, e.Extent)
	default:
		fmt.Fprintf(&b, "%s is unavailable %s", name, e.Extent)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// BulkConflictError aggregates every offending resource of a bulk
// operation so the caller sees all of them at once.
type BulkConflictError struct {
	Conflicts []ConflictError
}

func (e BulkConflictError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Error())
	}
	return strings.Join(msgs, "; ")
}

// IsConflict reports whether err is a single or aggregated conflict.
func IsConflict(err error) bool {
	var single ConflictError
	var bulk BulkConflictError
	return errors.As(err, &single) || errors.As(err, &bulk) || errors.Is(err, ErrExtentTaken)
}

// IsValidation reports whether err is a malformed-input rejection.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsState reports whether err is a state rejection (record exists but
// refuses the operation).
func IsState(err error) bool {
	return errors.Is(err, ErrMembershipNotActive) ||
		errors.Is(err, ErrResourceUnavailable) ||
		errors.Is(err, ErrBookingCancelled) ||
		errors.Is(err, ErrInsufficientUnits)
}

// IsNotFound reports whether err means a referenced record is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrBlackoutNotFound)
}
