package search

import (
	"context"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

// VendorConnector is the part of the RAG vendor API the search flow needs.
type VendorConnector interface {
	Search(ctx context.Context, kbID, query string) (*entity.SearchResponse, error)
	Ask(ctx context.Context, kbID, query string) (*entity.AskResult, error)
}

// AccessPolicy resolves which knowledge boxes a principal may query.
type AccessPolicy interface {
	AccessibleBoxes(role entity.Role, region entity.Region) []string
}
