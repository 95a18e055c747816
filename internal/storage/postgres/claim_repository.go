package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// ClaimRepository reads the occupancy ledger: every committed claim on
// a resource. Cancelled bookings, unconfirmed bookings and expired
// holds are filtered here so callers only ever see live claims.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

func (r *ClaimRepository) ListBlackouts(ctx context.Context, resourceID string, from, to time.Time) ([]domain.Blackout, error) {
	const q = `
SELECT id, resource_id, start_date, end_date, reason, created_at
FROM blackouts
WHERE resource_id = $1 AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC`

	rows, err := query(ctx, r.pool, q, resourceID, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	defer rows.Close()

	var blackouts []domain.Blackout
	for rows.Next() {
		var b domain.Blackout
		if err := rows.Scan(&b.ID, &b.ResourceID, &b.Start, &b.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blackout: %w", err)
		}
		b.Start = domain.Day(b.Start)
		b.End = domain.Day(b.End)
		blackouts = append(blackouts, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blackouts: %w", rows.Err())
	}
	return blackouts, nil
}

func (r *ClaimRepository) ListBookingClaims(ctx context.Context, resourceID string, from, to time.Time) ([]domain.BookingClaim, error) {
	const q = `
SELECT b.id, bu.resource_id, b.claimant_id, b.start_date, b.end_date, b.slot
FROM bookings b
JOIN booking_units bu ON bu.booking_id = b.id
WHERE bu.resource_id = $1
  AND b.cancelled = FALSE AND b.confirmed = TRUE
  AND b.start_date <= $3 AND b.end_date >= $2
ORDER BY b.start_date ASC`

	rows, err := query(ctx, r.pool, q, resourceID, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list booking claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.BookingClaim
	for rows.Next() {
		bc, err := scanBookingClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking claim: %w", err)
		}
		claims = append(claims, bc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate booking claims: %w", rows.Err())
	}
	return claims, nil
}

func (r *ClaimRepository) ListReservations(ctx context.Context, resourceID string, from, to time.Time) ([]domain.AdminReservation, error) {
	const q = `
SELECT id, resource_id, start_date, end_date, slot, reserved_by, remarks, created_at
FROM admin_reservations
WHERE resource_id = $1 AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC`

	rows, err := query(ctx, r.pool, q, resourceID, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.AdminReservation
	for rows.Next() {
		ar, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, ar)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %w", rows.Err())
	}
	return reservations, nil
}

func (r *ClaimRepository) ListActiveHolds(ctx context.Context, resourceID string, now time.Time) ([]domain.Hold, error) {
	const q = `
SELECT id, resource_id, COALESCE(booking_id::text, ''), claimant_id, start_date, end_date, slot, expires_at, created_at
FROM holds
WHERE resource_id = $1 AND expires_at > $2
ORDER BY created_at ASC`

	rows, err := query(ctx, r.pool, q, resourceID, now)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list active holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		var h domain.Hold
		var start, end *time.Time
		var slot *string
		if err := rows.Scan(&h.ID, &h.ResourceID, &h.BookingID, &h.ClaimantID, &start, &end, &slot, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan hold: %w", err)
		}
		if start != nil && end != nil {
			extent := domain.Extent{Start: domain.Day(*start), End: domain.Day(*end)}
			if slot != nil {
				extent.Slot = domain.Slot(*slot).Norm()
			}
			h.Extent = &extent
		}
		holds = append(holds, h)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate holds: %w", rows.Err())
	}
	return holds, nil
}

// Calendar queries: the same claims, over many resources at once.

func (r *ClaimRepository) ListBookingsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.BookingClaim, error) {
	const q = `
SELECT b.id, bu.resource_id, b.claimant_id, b.start_date, b.end_date, b.slot
FROM bookings b
JOIN booking_units bu ON bu.booking_id = b.id
WHERE bu.resource_id = ANY($1)
  AND b.cancelled = FALSE AND b.confirmed = TRUE
  AND b.start_date <= $3 AND b.end_date >= $2
ORDER BY b.start_date ASC, bu.resource_id ASC`

	rows, err := query(ctx, r.pool, q, resourceIDs, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bookings in range: %w", err)
	}
	defer rows.Close()

	var claims []domain.BookingClaim
	for rows.Next() {
		bc, err := scanBookingClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking claim: %w", err)
		}
		claims = append(claims, bc)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bookings in range: %w", rows.Err())
	}
	return claims, nil
}

func (r *ClaimRepository) ListReservationsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.AdminReservation, error) {
	const q = `
SELECT id, resource_id, start_date, end_date, slot, reserved_by, remarks, created_at
FROM admin_reservations
WHERE resource_id = ANY($1) AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC, resource_id ASC`

	rows, err := query(ctx, r.pool, q, resourceIDs, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reservations in range: %w", err)
	}
	defer rows.Close()

	var reservations []domain.AdminReservation
	for rows.Next() {
		ar, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, ar)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations in range: %w", rows.Err())
	}
	return reservations, nil
}

func (r *ClaimRepository) ListBlackoutsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.Blackout, error) {
	const q = `
SELECT id, resource_id, start_date, end_date, reason, created_at
FROM blackouts
WHERE resource_id = ANY($1) AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC, resource_id ASC`

	rows, err := query(ctx, r.pool, q, resourceIDs, domain.Day(from), domain.Day(to))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list blackouts in range: %w", err)
	}
	defer rows.Close()

	var blackouts []domain.Blackout
	for rows.Next() {
		var b domain.Blackout
		if err := rows.Scan(&b.ID, &b.ResourceID, &b.Start, &b.End, &b.Reason, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blackout: %w", err)
		}
		b.Start = domain.Day(b.Start)
		b.End = domain.Day(b.End)
		blackouts = append(blackouts, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate blackouts in range: %w", rows.Err())
	}
	return blackouts, nil
}

func scanBookingClaim(row rowScanner) (domain.BookingClaim, error) {
	var bc domain.BookingClaim
	var start, end time.Time
	var slot string
	if err := row.Scan(&bc.BookingID, &bc.ResourceID, &bc.ClaimantID, &start, &end, &slot); err != nil {
		return domain.BookingClaim{}, err
	}
	bc.Extent = domain.Extent{Start: domain.Day(start), End: domain.Day(end), Slot: domain.Slot(slot).Norm()}
	return bc, nil
}

func scanReservation(row rowScanner) (domain.AdminReservation, error) {
	var ar domain.AdminReservation
	var start, end time.Time
	var slot string
	if err := row.Scan(&ar.ID, &ar.ResourceID, &start, &end, &slot, &ar.ReservedBy, &ar.Remarks, &ar.CreatedAt); err != nil {
		return domain.AdminReservation{}, err
	}
	ar.Extent = domain.Extent{Start: domain.Day(start), End: domain.Day(end), Slot: domain.Slot(slot).Norm()}
	return ar, nil
}
