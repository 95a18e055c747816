package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// HoldRepository persists the short-lived exclusive claims. Expired
// rows are left in place until a sweep; every reader filters them out.
type HoldRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
}

func NewHoldRepository(pool *pgxpool.Pool, catalog *CatalogRepository) *HoldRepository {
	return &HoldRepository{pool: pool, catalog: catalog}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	return r.catalog.GetResource(ctx, id)
}

func (r *HoldRepository) CreateHold(ctx context.Context, h domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, resource_id, booking_id, claimant_id, start_date, end_date, slot, expires_at, created_at)
VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9)`

	var start, end *time.Time
	var slot *string
	if h.Extent != nil {
		s, e := h.Extent.Start, h.Extent.End
		start, end = &s, &e
		sl := string(h.Extent.Slot)
		slot = &sl
	}

	_, err := exec(ctx, r.pool, stmt, h.ID, h.ResourceID, h.BookingID, h.ClaimantID, start, end, slot, h.ExpiresAt, h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

// DeleteHoldsByClaimantExtent removes the claimant's prior hold for the
// identical extent, implementing replace-not-extend semantics. A nil
// extent matches only legacy whole-resource holds.
func (r *HoldRepository) DeleteHoldsByClaimantExtent(ctx context.Context, resourceID, claimantID string, extent *domain.Extent) (int64, error) {
	if extent == nil {
		const stmt = `
DELETE FROM holds
WHERE resource_id = $1 AND claimant_id = $2 AND start_date IS NULL`
		tag, err := exec(ctx, r.pool, stmt, resourceID, claimantID)
		if err != nil {
			if isInvalidUUID(err) {
				return 0, domain.ErrInvalidID
			}
			return 0, fmt.Errorf("delete legacy holds: %w", err)
		}
		return tag.RowsAffected(), nil
	}

	const stmt = `
DELETE FROM holds
WHERE resource_id = $1 AND claimant_id = $2
  AND start_date = $3 AND end_date = $4 AND slot = $5`
	tag, err := exec(ctx, r.pool, stmt, resourceID, claimantID, extent.Start, extent.End, string(extent.Slot.Norm()))
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("delete holds by extent: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) DeleteHoldsByBooking(ctx context.Context, bookingID string) (int64, error) {
	const stmt = `DELETE FROM holds WHERE booking_id = $1`
	tag, err := exec(ctx, r.pool, stmt, bookingID)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("delete holds by booking: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HoldRepository) DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `DELETE FROM holds WHERE expires_at <= $1`
	tag, err := exec(ctx, r.pool, stmt, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired holds: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CancelLapsedBookings cancels unconfirmed bookings whose every hold
// has lapsed, voids their pending vouchers and releases their atoms.
// This is hygiene: readers already ignore these bookings because only
// confirmed claims are conflict-checked.
func (r *HoldRepository) CancelLapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	const cancelStmt = `
UPDATE bookings b
SET cancelled = TRUE
WHERE b.confirmed = FALSE AND b.cancelled = FALSE
  AND NOT EXISTS (
	SELECT 1 FROM holds h WHERE h.booking_id = b.id AND h.expires_at > $1
  )
RETURNING b.id`

	rows, err := query(ctx, r.pool, cancelStmt, now)
	if err != nil {
		return 0, fmt.Errorf("cancel lapsed bookings: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan lapsed booking: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if rows.Err() != nil {
		return 0, fmt.Errorf("iterate lapsed bookings: %w", rows.Err())
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := exec(ctx, r.pool, `DELETE FROM claim_atoms WHERE claim_id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("release lapsed atoms: %w", err)
	}
	if _, err := exec(ctx, r.pool, `UPDATE vouchers SET state = 'CANCELLED' WHERE booking_id = ANY($1) AND state = 'PENDING'`, ids); err != nil {
		return 0, fmt.Errorf("void lapsed vouchers: %w", err)
	}
	return int64(len(ids)), nil
}
