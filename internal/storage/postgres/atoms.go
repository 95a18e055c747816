package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// insertClaimAtoms records one row per occupied (day, slot) atom. The
// primary key on (resource_id, day, slot) is the backstop that turns a
// lost race between two conflict-checked writers into a unique
// violation instead of a double booking.
func insertClaimAtoms(ctx context.Context, pool *pgxpool.Pool, resourceID string, kind domain.ClaimKind, claimID string, atoms []domain.Atom) error {
	const stmt = `
INSERT INTO claim_atoms (resource_id, day, slot, claim_kind, claim_id)
VALUES ($1, $2, $3, $4, $5)`

	for _, atom := range atoms {
		if _, err := exec(ctx, pool, stmt, resourceID, atom.Day, string(atom.Slot.Norm()), string(kind), claimID); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrExtentTaken
			}
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("insert claim atom: %w", err)
		}
	}
	return nil
}

func deleteClaimAtoms(ctx context.Context, pool *pgxpool.Pool, claimID string) error {
	const stmt = `DELETE FROM claim_atoms WHERE claim_id = $1`
	if _, err := exec(ctx, pool, stmt, claimID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete claim atoms: %w", err)
	}
	return nil
}
