package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// ReservationRepository persists administrative reservations.
type ReservationRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
}

func NewReservationRepository(pool *pgxpool.Pool, catalog *CatalogRepository) *ReservationRepository {
	return &ReservationRepository{pool: pool, catalog: catalog}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	return r.catalog.GetResource(ctx, id)
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, ar domain.AdminReservation) error {
	const stmt = `
INSERT INTO admin_reservations (id, resource_id, start_date, end_date, slot, reserved_by, remarks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := exec(ctx, r.pool, stmt,
		ar.ID,
		ar.ResourceID,
		ar.Extent.Start,
		ar.Extent.End,
		string(ar.Extent.Slot.Norm()),
		ar.ReservedBy,
		ar.Remarks,
		ar.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// DeleteExactReservations removes reservations matching the extent and
// slot exactly, with their atoms, and reports how many rows went away.
func (r *ReservationRepository) DeleteExactReservations(ctx context.Context, resourceIDs []string, extent domain.Extent) (int64, error) {
	const stmt = `
DELETE FROM admin_reservations
WHERE resource_id = ANY($1)
  AND start_date = $2 AND end_date = $3 AND slot = $4
RETURNING id`

	rows, err := query(ctx, r.pool, stmt, resourceIDs, extent.Start, extent.End, string(extent.Slot.Norm()))
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("delete exact reservations: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan deleted reservation: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if rows.Err() != nil {
		return 0, fmt.Errorf("iterate deleted reservations: %w", rows.Err())
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if _, err := exec(ctx, r.pool, `DELETE FROM claim_atoms WHERE claim_id = ANY($1)`, ids); err != nil {
		return 0, fmt.Errorf("release reservation atoms: %w", err)
	}
	return int64(len(ids)), nil
}

func (r *ReservationRepository) InsertClaimAtoms(ctx context.Context, resourceID string, kind domain.ClaimKind, claimID string, atoms []domain.Atom) error {
	return insertClaimAtoms(ctx, r.pool, resourceID, kind, claimID, atoms)
}
