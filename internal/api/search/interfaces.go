package search

import (
	"context"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

type SearchUsecase interface {
	FederatedAsk(ctx context.Context, req *entity.FederatedSearchRequest) (*entity.FederatedResult, error)
	CategorizedSearch(ctx context.Context, req *entity.CategorizedSearchRequest) (*entity.CategorizedResults, error)
}

type AccessPolicy interface {
	AccessibleBoxes(role entity.Role, region entity.Region) []string
}
