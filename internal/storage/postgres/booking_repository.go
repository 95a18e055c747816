package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// BookingRepository persists bookings, their claimed units, and the
// vouchers tracked alongside them. Catalog reads are delegated so the
// computed resource flags stay in one place.
type BookingRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
}

func NewBookingRepository(pool *pgxpool.Pool, catalog *CatalogRepository) *BookingRepository {
	return &BookingRepository{pool: pool, catalog: catalog}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	return r.catalog.GetResource(ctx, id)
}

func (r *BookingRepository) ListUnitsByType(ctx context.Context, kind domain.ResourceKind, typeCode string) ([]domain.Resource, error) {
	return r.catalog.ListUnitsByType(ctx, kind, typeCode)
}

func (r *BookingRepository) GetMember(ctx context.Context, id string) (domain.Member, error) {
	return r.catalog.GetMember(ctx, id)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (id, resource_kind, claimant_id, pricing, start_date, end_date, slot, guests, units, price, payment_state, confirmed, cancelled, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := exec(ctx, r.pool, stmt,
		b.ID,
		string(b.ResourceKind),
		b.ClaimantID,
		string(b.Pricing),
		b.Extent.Start,
		b.Extent.End,
		string(b.Extent.Slot),
		b.Guests,
		b.Units,
		b.Price.String(),
		string(b.PaymentState),
		b.Confirmed,
		b.Cancelled,
		b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrMemberNotFound
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) AddBookingUnit(ctx context.Context, bookingID, resourceID string) error {
	const stmt = `INSERT INTO booking_units (booking_id, resource_id) VALUES ($1, $2)`
	if _, err := exec(ctx, r.pool, stmt, bookingID, resourceID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("add booking unit: %w", err)
	}
	return nil
}

func (r *BookingRepository) InsertClaimAtoms(ctx context.Context, resourceID string, kind domain.ClaimKind, claimID string, atoms []domain.Atom) error {
	return insertClaimAtoms(ctx, r.pool, resourceID, kind, claimID, atoms)
}

func (r *BookingRepository) DeleteClaimAtoms(ctx context.Context, claimID string) error {
	return deleteClaimAtoms(ctx, r.pool, claimID)
}

func (r *BookingRepository) CreateVoucher(ctx context.Context, v domain.Voucher) error {
	const stmt = `
INSERT INTO vouchers (id, booking_id, claimant_id, amount, state, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt, v.ID, v.BookingID, v.ClaimantID, v.Amount.String(), string(v.State), v.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create voucher: %w", err)
	}
	return nil
}

const bookingColumns = `
id, resource_kind, claimant_id, pricing, start_date, end_date, slot, guests, units,
price::text, payment_state, confirmed, cancelled, created_at`

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	q := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)
	return r.getBooking(ctx, q, id)
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	q := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 FOR UPDATE`, bookingColumns)
	return r.getBooking(ctx, q, id)
}

func (r *BookingRepository) getBooking(ctx context.Context, q, id string) (domain.Booking, error) {
	var b domain.Booking
	var kind, pricing, slot, price, paymentState string
	var start, end time.Time
	err := queryRow(ctx, r.pool, q, id).Scan(
		&b.ID, &kind, &b.ClaimantID, &pricing, &start, &end, &slot,
		&b.Guests, &b.Units, &price, &paymentState, &b.Confirmed, &b.Cancelled, &b.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	b.ResourceKind = domain.ResourceKind(kind)
	b.Pricing = domain.PricingType(pricing)
	b.PaymentState = domain.PaymentState(paymentState)
	b.Extent = domain.Extent{Start: domain.Day(start), End: domain.Day(end), Slot: domain.Slot(slot).Norm()}
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Booking{}, fmt.Errorf("booking price: %w", err)
	}

	const unitsQuery = `
SELECT bu.resource_id
FROM booking_units bu
JOIN resources res ON res.id = bu.resource_id
WHERE bu.booking_id = $1
ORDER BY res.unit_no ASC, res.name ASC`
	rows, err := query(ctx, r.pool, unitsQuery, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var unitID string
		if err := rows.Scan(&unitID); err != nil {
			return domain.Booking{}, fmt.Errorf("scan booking unit: %w", err)
		}
		b.UnitIDs = append(b.UnitIDs, unitID)
	}
	if rows.Err() != nil {
		return domain.Booking{}, fmt.Errorf("iterate booking units: %w", rows.Err())
	}
	return b, nil
}

func (r *BookingRepository) MarkBookingConfirmed(ctx context.Context, id string) error {
	const stmt = `UPDATE bookings SET confirmed = TRUE, payment_state = 'PAID' WHERE id = $1`
	tag, err := exec(ctx, r.pool, stmt, id)
	if err != nil {
		return fmt.Errorf("mark booking confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) MarkBookingCancelled(ctx context.Context, id string) error {
	const stmt = `UPDATE bookings SET cancelled = TRUE WHERE id = $1`
	tag, err := exec(ctx, r.pool, stmt, id)
	if err != nil {
		return fmt.Errorf("mark booking cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) HasLiveHolds(ctx context.Context, bookingID string, now time.Time) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM holds WHERE booking_id = $1 AND expires_at > $2)`
	var live bool
	if err := queryRow(ctx, r.pool, q, bookingID, now).Scan(&live); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check live holds: %w", err)
	}
	return live, nil
}

func (r *BookingRepository) GetVoucherByBooking(ctx context.Context, bookingID string) (domain.Voucher, error) {
	const q = `
SELECT id, booking_id, claimant_id, amount::text, state, created_at, confirmed_at
FROM vouchers
WHERE booking_id = $1`

	var v domain.Voucher
	var amount, state string
	err := queryRow(ctx, r.pool, q, bookingID).Scan(&v.ID, &v.BookingID, &v.ClaimantID, &amount, &state, &v.CreatedAt, &v.ConfirmedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Voucher{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Voucher{}, domain.ErrBookingNotFound
		}
		return domain.Voucher{}, fmt.Errorf("get voucher: %w", err)
	}
	v.State = domain.VoucherState(state)
	if v.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.Voucher{}, fmt.Errorf("voucher amount: %w", err)
	}
	return v, nil
}

// AdvanceVoucher moves the voucher between states only when it is in
// the expected one; the false return makes duplicate payment callbacks
// detectable without a separate dedup key.
func (r *BookingRepository) AdvanceVoucher(ctx context.Context, bookingID string, from, to domain.VoucherState, at time.Time) (bool, error) {
	const stmt = `
UPDATE vouchers
SET state = $3,
    confirmed_at = CASE WHEN $3 = 'CONFIRMED' THEN $4 ELSE confirmed_at END
WHERE booking_id = $1 AND state = $2`

	tag, err := exec(ctx, r.pool, stmt, bookingID, string(from), string(to), at)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("advance voucher: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
