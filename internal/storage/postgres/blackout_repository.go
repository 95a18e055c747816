package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// BlackoutRepository persists maintenance periods.
type BlackoutRepository struct {
	pool    *pgxpool.Pool
	catalog *CatalogRepository
}

func NewBlackoutRepository(pool *pgxpool.Pool, catalog *CatalogRepository) *BlackoutRepository {
	return &BlackoutRepository{pool: pool, catalog: catalog}
}

func (r *BlackoutRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BlackoutRepository) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	return r.catalog.GetResource(ctx, id)
}

func (r *BlackoutRepository) CreateBlackout(ctx context.Context, b domain.Blackout) error {
	const stmt = `
INSERT INTO blackouts (id, resource_id, start_date, end_date, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := exec(ctx, r.pool, stmt, b.ID, b.ResourceID, b.Start, b.End, b.Reason, b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("create blackout: %w", err)
	}
	return nil
}

func (r *BlackoutRepository) DeleteBlackout(ctx context.Context, id string) error {
	const stmt = `DELETE FROM blackouts WHERE id = $1`
	tag, err := exec(ctx, r.pool, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete blackout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBlackoutNotFound
	}
	return nil
}
