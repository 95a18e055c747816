package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// CatalogRepository reads resources and members. The reserved and
// blacked-out flags are computed from the claim tables per read, so
// they can never drift from the canonical rows.
type CatalogRepository struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func NewCatalogRepository(pool *pgxpool.Pool, clk clock.Clock) *CatalogRepository {
	return &CatalogRepository{pool: pool, clock: clk}
}

const resourceColumns = `
r.id, r.kind, r.type_code, r.name, r.unit_no, r.capacity_min, r.capacity_max,
r.member_rate::text, r.guest_rate::text, r.active, r.created_at,
EXISTS (
	SELECT 1 FROM admin_reservations ar
	WHERE ar.resource_id = r.id AND ar.end_date >= $1
) AS reserved,
EXISTS (
	SELECT 1 FROM blackouts b
	WHERE b.resource_id = r.id AND b.start_date <= $1 AND b.end_date >= $1
) AS blacked_out`

func (r *CatalogRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	q := fmt.Sprintf(`SELECT %s FROM resources r WHERE r.id = $2`, resourceColumns)
	res, err := scanResource(queryRow(ctx, r.pool, q, domain.Day(r.clock.Now()), id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Resource{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Resource{}, domain.ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

func (r *CatalogRepository) ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error) {
	q := fmt.Sprintf(`
SELECT %s FROM resources r
WHERE ($2 = '' OR r.kind = $2)
ORDER BY r.kind, r.type_code, r.unit_no, r.name`, resourceColumns)

	rows, err := query(ctx, r.pool, q, domain.Day(r.clock.Now()), string(kind))
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate resources: %w", rows.Err())
	}
	return resources, nil
}

// ListUnitsByType returns every unit of a lodging type, ordered by unit
// number so multi-unit selection is deterministic.
func (r *CatalogRepository) ListUnitsByType(ctx context.Context, kind domain.ResourceKind, typeCode string) ([]domain.Resource, error) {
	q := fmt.Sprintf(`
SELECT %s FROM resources r
WHERE r.kind = $2 AND r.type_code = $3
ORDER BY r.unit_no ASC`, resourceColumns)

	rows, err := query(ctx, r.pool, q, domain.Day(r.clock.Now()), string(kind), typeCode)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate units: %w", rows.Err())
	}
	return units, nil
}

func (r *CatalogRepository) GetMember(ctx context.Context, id string) (domain.Member, error) {
	const q = `SELECT id, name, standing, created_at FROM members WHERE id = $1`

	var m domain.Member
	var standing string
	err := queryRow(ctx, r.pool, q, id).Scan(&m.ID, &m.Name, &standing, &m.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Member{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	m.Standing = domain.MemberStanding(standing)
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (domain.Resource, error) {
	var res domain.Resource
	var kind, memberRate, guestRate string
	var createdAt time.Time
	if err := row.Scan(
		&res.ID, &kind, &res.TypeCode, &res.Name, &res.UnitNo,
		&res.CapacityMin, &res.CapacityMax, &memberRate, &guestRate,
		&res.Active, &createdAt, &res.Reserved, &res.BlackedOut,
	); err != nil {
		return domain.Resource{}, err
	}
	res.Kind = domain.ResourceKind(kind)
	res.CreatedAt = createdAt

	var err error
	if res.MemberRate, err = decimal.NewFromString(memberRate); err != nil {
		return domain.Resource{}, fmt.Errorf("member rate: %w", err)
	}
	if res.GuestRate, err = decimal.NewFromString(guestRate); err != nil {
		return domain.Resource{}, fmt.Errorf("guest rate: %w", err)
	}
	return res, nil
}
