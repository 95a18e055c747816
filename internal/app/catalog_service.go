package app

import (
	"context"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type CatalogRepository interface {
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error)
}

// CatalogService is the read surface over the resource catalog. The
// reserved/blacked-out flags on returned resources are computed from
// the claim tables by the repository, never stored.
type CatalogService struct {
	repo CatalogRepository
}

func NewCatalogService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) GetResource(ctx context.Context, id string) (domain.Resource, error) {
	return s.repo.GetResource(ctx, id)
}

// ListResources returns all resources, optionally filtered by kind.
func (s *CatalogService) ListResources(ctx context.Context, kind domain.ResourceKind) ([]domain.Resource, error) {
	return s.repo.ListResources(ctx, kind)
}
